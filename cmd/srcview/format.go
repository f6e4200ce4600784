package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIUnit is a JSON-friendly indexed unit.
type CLIUnit struct {
	Path    string `json:"path"`
	Package string `json:"package"`
	Page    string `json:"page"`
}

// CLIDeclaration is a JSON-friendly declaration with its link.
type CLIDeclaration struct {
	Anchor  string `json:"anchor"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Display string `json:"display"`
	Path    string `json:"path"`
	Href    string `json:"href"`
}

// CLILocation is where an anchor is rendered.
type CLILocation struct {
	Path   string `json:"path"`
	Anchor string `json:"anchor"`
	Href   string `json:"href"`
}

// outputResult writes result to w in the selected format.
func outputResult(w io.Writer, format string, result CLIResult) error {
	if format == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes err as a JSON envelope in JSON mode and returns it so
// RunE propagates it. Text mode leaves the reporting to main.
func outputError(w io.Writer, format, command string, err error) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	}
	return err
}

// outputResultText dispatches to the text formatter of the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIUnit:
		formatUnitsText(w, v)
	case []CLIDeclaration:
		formatDeclarationsText(w, v)
	case *CLILocation:
		if v != nil {
			fmt.Fprintf(w, "%s\t%s\n", v.Path, v.Href)
		}
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		count := *result.TotalCount
		if shown := resultLen(result.Results); shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

func resultLen(v any) int {
	switch r := v.(type) {
	case []CLIUnit:
		return len(r)
	case []CLIDeclaration:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

func formatUnitsText(w io.Writer, units []CLIUnit) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tPACKAGE\tPAGE")
	for _, u := range units {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Path, u.Package, u.Page)
	}
	tw.Flush()
}

func formatDeclarationsText(w io.Writer, decls []CLIDeclaration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tDECLARATION\tHREF")
	for _, d := range decls {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Kind, d.Display, d.Href)
	}
	tw.Flush()
}
