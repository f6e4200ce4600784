package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/srcview"
	"github.com/jward/srcview/internal/config"
	"github.com/jward/srcview/internal/links"
)

type queryFlags struct {
	db     string
	format string
	limit  int
	offset int
}

func newQueryCmd() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a persistent declaration index",
		Long: "Run queries against the index kept by 'srcview render --db'. The index is taken from --db, or from the db setting of " +
			config.FileName + " in the working directory.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(f.format)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.db, "db", "", "declaration index to query")
	pf.StringVar(&f.format, "format", "text", "output format: json|text")
	pf.IntVar(&f.limit, "limit", 50, "pagination limit (max 500)")
	pf.IntVar(&f.offset, "offset", 0, "pagination offset")

	cmd.AddCommand(newQueryUnitsCmd(f))
	cmd.AddCommand(newQueryDeclsCmd(f))
	cmd.AddCommand(newQueryLookupCmd(f))
	cmd.AddCommand(newQuerySearchCmd(f))
	return cmd
}

// openIndex opens the engine over an existing index. It never creates one.
func openIndex(f *queryFlags) (*srcview.Engine, error) {
	db := f.db
	if db == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting cwd: %w", err)
		}
		cfg, err := config.Discover(cwd)
		if err != nil {
			return nil, err
		}
		if db = cfg.DBPath(cwd); db == "" {
			return nil, fmt.Errorf("no index: pass --db or set db in %s", config.FileName)
		}
	}
	if _, err := os.Stat(db); err != nil {
		return nil, fmt.Errorf("index not found: %s (run 'srcview render --db %s' first)", db, db)
	}
	return srcview.New(db)
}

// withQuery runs fn on a QueryBuilder and writes its result.
func withQuery(cmd *cobra.Command, f *queryFlags, name string, fn func(*srcview.QueryBuilder) (CLIResult, error)) error {
	w := cmd.OutOrStdout()
	engine, err := openIndex(f)
	if err != nil {
		return outputError(w, f.format, name, err)
	}
	defer engine.Close()

	result, err := fn(engine.Query())
	if err != nil {
		return outputError(w, f.format, name, err)
	}
	result.Command = name
	return outputResult(w, f.format, result)
}

func newQueryUnitsCmd(f *queryFlags) *cobra.Command {
	var pkg string
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List indexed units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuery(cmd, f, "units", func(q *srcview.QueryBuilder) (CLIResult, error) {
				var units []*srcview.Unit
				var err error
				if cmd.Flags().Changed("package") {
					units, err = q.PackageUnits(pkg)
				} else {
					units, err = q.Units()
				}
				if err != nil {
					return CLIResult{}, err
				}
				out := make([]CLIUnit, len(units))
				for i, u := range units {
					out[i] = CLIUnit{Path: u.Path, Package: u.Package, Page: links.PagePath(u.Path)}
				}
				return CLIResult{Results: out}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "", "only units of this package (\"\" is the default package)")
	return cmd
}

func newQueryDeclsCmd(f *queryFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "decls <unit>",
		Short: "List the declarations of one unit",
		Long:  "Lists the anchored declarations of a unit, given by its path relative to the rendered root.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuery(cmd, f, "decls", func(q *srcview.QueryBuilder) (CLIResult, error) {
				path := args[0]
				decls, err := q.Declarations(path)
				if err != nil {
					return CLIResult{}, err
				}
				if decls == nil {
					return CLIResult{}, fmt.Errorf("unit not indexed: %s", path)
				}
				out := make([]CLIDeclaration, len(decls))
				for i, d := range decls {
					out[i] = declarationToCLI(*d, path)
				}
				return CLIResult{Results: out}, nil
			})
		},
	}
}

func newQueryLookupCmd(f *queryFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <anchor>",
		Short: "Print the unit and link of an anchor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuery(cmd, f, "lookup", func(q *srcview.QueryBuilder) (CLIResult, error) {
				loc, err := q.Lookup(args[0])
				if err != nil {
					return CLIResult{}, err
				}
				if loc == nil {
					return CLIResult{}, fmt.Errorf("anchor not found: %s", args[0])
				}
				return CLIResult{Results: &CLILocation{Path: loc.Path, Anchor: loc.Anchor, Href: loc.Href}}, nil
			})
		},
	}
}

func newQuerySearchCmd(f *queryFlags) *cobra.Command {
	var kinds []string
	var pkg string
	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search declarations by name",
		Long:  "Searches declaration names. '*' matches any run of characters; every other character matches itself.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuery(cmd, f, "search", func(q *srcview.QueryBuilder) (CLIResult, error) {
				filter := srcview.DeclarationFilter{Kinds: kinds}
				if cmd.Flags().Changed("package") {
					filter.Package = &pkg
				}
				page, err := q.Search(args[0], filter, srcview.Pagination{Offset: f.offset, Limit: f.limit})
				if err != nil {
					return CLIResult{}, err
				}
				out := make([]CLIDeclaration, len(page.Items))
				for i, r := range page.Items {
					out[i] = declarationToCLI(r.Declaration, r.Path)
					out[i].Href = r.Href
				}
				total := page.TotalCount
				return CLIResult{Results: out, TotalCount: &total}, nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only these kinds (class, method, field, ...)")
	cmd.Flags().StringVar(&pkg, "package", "", "only declarations of units in this package")
	return cmd
}

func declarationToCLI(d srcview.Declaration, path string) CLIDeclaration {
	return CLIDeclaration{
		Anchor:  d.Anchor,
		Name:    d.Name,
		Kind:    d.Kind,
		Display: d.Display,
		Path:    path,
		Href:    links.PagePath(path) + "#" + d.Anchor,
	}
}
