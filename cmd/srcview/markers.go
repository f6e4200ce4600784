package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"unicode/utf16"

	"github.com/spf13/cobra"

	"github.com/jward/srcview"
)

// CLIMarker is a JSON-friendly marker.
type CLIMarker struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
	Href   string `json:"href,omitempty"`
	Class  string `json:"class"`
	Anchor string `json:"anchor,omitempty"`
	Title  string `json:"title,omitempty"`
}

// CLIInspection is the JSON envelope of the markers command.
type CLIInspection struct {
	File      string      `json:"file"`
	Types     []string    `json:"types"`
	Callables []string    `json:"callables"`
	Markers   []CLIMarker `json:"markers"`
}

func newMarkersCmd() *cobra.Command {
	var format string
	var titles bool
	cmd := &cobra.Command{
		Use:   "markers <file.java>",
		Short: "Print the tables and markers of one unit",
		Long:  "Renders a single unit on its own, without links to other units, and prints its interned tables and markers. Offsets count UTF-16 code units.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkers(cmd, args[0], format, titles)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: json|text")
	cmd.Flags().BoolVar(&titles, "titles", false, "add the target's signature to reference markers")
	return cmd
}

func runMarkers(cmd *cobra.Command, file, format string, titles bool) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	engine, err := srcview.New("", srcview.WithTitles(titles))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	in, err := engine.Inspect(context.Background(), filepath.ToSlash(file), src)
	if err != nil {
		return err
	}
	result := inspectionToCLI(in, src)

	w := cmd.OutOrStdout()
	if format == "text" {
		formatInspectionText(w, result)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func inspectionToCLI(in *srcview.Inspection, src []byte) CLIInspection {
	text := utf16Slicer(src)
	out := CLIInspection{
		File:      in.Path,
		Types:     nonNilStrings(in.Types),
		Callables: nonNilStrings(in.Callables),
		Markers:   make([]CLIMarker, len(in.Markers)),
	}
	for i, m := range in.Markers {
		out.Markers[i] = CLIMarker{
			Start:  m.Start,
			End:    m.End,
			Text:   text(m.Start, m.End),
			Href:   m.Href,
			Class:  m.Class,
			Anchor: m.AnchorID,
			Title:  m.Title,
		}
	}
	return out
}

// utf16Slicer returns a function cutting src between UTF-16 offsets.
func utf16Slicer(src []byte) func(start, end int) string {
	units := utf16.Encode([]rune(string(src)))
	return func(start, end int) string {
		start, end = min(start, len(units)), min(end, len(units))
		return string(utf16.Decode(units[start:end]))
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatInspectionText prints the tables, then the markers as aligned
// columns.
func formatInspectionText(w io.Writer, in CLIInspection) {
	fmt.Fprintf(w, "File: %s\n\n", in.File)

	fmt.Fprintln(w, "Types:")
	for i, t := range in.Types {
		fmt.Fprintf(w, "  %d  %s\n", i, t)
	}
	fmt.Fprintln(w, "Callables:")
	for i, c := range in.Callables {
		fmt.Fprintf(w, "  %d  %s\n", i, c)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tTEXT\tCLASS\tHREF\tANCHOR")
	for _, m := range in.Markers {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			m.Start, m.End, m.Text, m.Class, m.Href, m.Anchor)
	}
	tw.Flush()
}
