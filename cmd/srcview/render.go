package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/srcview"
	"github.com/jward/srcview/internal/config"
)

type renderFlags struct {
	out        string
	pretty     bool
	workers    int
	titles     bool
	linkScript string
	check      bool
	db         string
	configPath string
	project    string
	exclude    []string
}

func newRenderCmd(prettyDefault bool) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Render every Java unit under a directory",
		Long: "Discovers the .java units under dir (default \".\"), links references across them and writes one artifact per unit plus " +
			srcview.ProjectFile + ". Settings come from " + config.FileName + " in dir; flags override it.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.out, "out", "", "output directory (default: "+config.DefaultOut+" under dir)")
	fl.BoolVar(&f.pretty, "pretty", prettyDefault, "indent artifacts (default from $"+prettyEnv+")")
	fl.IntVar(&f.workers, "workers", 0, "units rendered concurrently (default: number of CPUs)")
	fl.BoolVar(&f.titles, "titles", false, "add the target's signature to reference markers")
	fl.StringVar(&f.linkScript, "link-script", "", "Risor script naming declaration anchors")
	fl.BoolVar(&f.check, "check", false, "report stale artifacts without writing; exit 1 when any are stale")
	fl.StringVar(&f.db, "db", "", "keep the declaration index in this database between runs")
	fl.StringVar(&f.configPath, "config", "", "config file (default: dir/"+config.FileName+")")
	fl.StringVar(&f.project, "project", "", "project name in the descriptor (default: dir's base name)")
	fl.StringSliceVar(&f.exclude, "exclude", nil, "gitignore-style patterns of sources to skip")
	return cmd
}

// settings is the merged configuration of one render run.
type settings struct {
	root, out, db string
	opts          []srcview.Option
}

// resolveSettings merges the config file with the flags; a flag set on the
// command line wins over the file.
func resolveSettings(cmd *cobra.Command, root string, f *renderFlags) (*settings, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.Discover(root)
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	s := &settings{root: root, out: cfg.OutDir(root), db: cfg.DBPath(root)}
	if changed("out") {
		if s.out, err = absPath(f.out); err != nil {
			return nil, err
		}
	}
	if changed("db") {
		if s.db, err = absPath(f.db); err != nil {
			return nil, err
		}
	}

	pretty := f.pretty || cfg.Pretty
	if changed("pretty") {
		pretty = f.pretty
	}
	titles := f.titles || cfg.Titles
	if changed("titles") {
		titles = f.titles
	}
	workers := cfg.Workers
	if changed("workers") {
		workers = f.workers
	}
	linkScript := cfg.LinkScriptPath(root)
	if changed("link-script") {
		if linkScript, err = absPath(f.linkScript); err != nil {
			return nil, err
		}
	}

	s.opts = []srcview.Option{
		srcview.WithPretty(pretty),
		srcview.WithTitles(titles),
		srcview.WithWorkers(workers),
		srcview.WithCheck(f.check),
		srcview.WithProjectName(cfg.ProjectName(root)),
		srcview.WithExclude(cfg.Exclude...),
		srcview.WithExclude(f.exclude...),
		srcview.WithLog(cmd.ErrOrStderr()),
	}
	if f.project != "" {
		s.opts = append(s.opts, srcview.WithProjectName(f.project))
	}
	if linkScript != "" {
		s.opts = append(s.opts, srcview.WithLinkScript(linkScript))
	}
	return s, nil
}

func runRender(cmd *cobra.Command, args []string, f *renderFlags) error {
	start := time.Now()

	root, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, root, f)
	if err != nil {
		return err
	}

	engine, err := srcview.New(s.db, s.opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	report, renderErr := engine.RenderDirectory(context.Background(), root, s.out)
	if report == nil {
		return fmt.Errorf("rendering: %w", renderErr)
	}

	stderr := cmd.ErrOrStderr()
	for _, u := range report.Failed() {
		fmt.Fprintf(stderr, "  failed %s: %v\n", u.Path, u.Err)
	}

	if f.check {
		stdout := cmd.OutOrStdout()
		stale := 0
		for _, u := range report.Drifted() {
			fmt.Fprint(stdout, u.Drift)
			stale++
		}
		if report.ProjectDrift != "" {
			fmt.Fprint(stdout, report.ProjectDrift)
			stale++
		}
		fmt.Fprintf(stderr, "Checked %d unit(s) against %s in %s\n",
			len(report.Units), s.out, time.Since(start).Round(time.Millisecond))
		if renderErr != nil {
			return renderErr
		}
		if stale > 0 {
			return fmt.Errorf("%d artifact(s) out of date", stale)
		}
		return nil
	}

	fmt.Fprintf(stderr, "Rendered %d unit(s) into %s in %s\n",
		len(report.Units)-len(report.Failed()), s.out, time.Since(start).Round(time.Millisecond))
	return renderErr
}
