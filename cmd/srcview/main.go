package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

// prettyEnv is read once at startup and is the default of --pretty.
const prettyEnv = "SRCVIEW_PRETTY"

func main() {
	if err := newRootCmd(envBool(os.Getenv(prettyEnv))).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(prettyDefault bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "srcview",
		Short:         "Render Java sources as hyperlinked artifacts",
		Long:          "Srcview parses Java sources with tree-sitter and writes, for every unit, a script of markers linking each reference to its declaration.",
		SilenceErrors: true,
		SilenceUsage:  true,
		// No Run: prints help by default.
	}
	root.AddCommand(newRenderCmd(prettyDefault))
	root.AddCommand(newMarkersCmd())
	root.AddCommand(newQueryCmd())
	return root
}

// envBool parses a boolean environment value; unset or malformed is false.
func envBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// resolveTargetDir returns the absolute path of the directory to render.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// absPath resolves a flag path against the working directory.
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", p, err)
	}
	return abs, nil
}
