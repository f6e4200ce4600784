package srcview

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/jward/srcview/internal/discover"
	"github.com/jward/srcview/internal/javasrc"
	"github.com/jward/srcview/internal/links"
	srcviewrt "github.com/jward/srcview/internal/runtime"
	"github.com/jward/srcview/internal/store"
	"github.com/jward/srcview/internal/symbol"
)

// Engine orchestrates the srcview pipeline: unit discovery, parsing,
// declaration and linking across units, the declaration index, and
// rendering of each unit's artifact.
type Engine struct {
	store *store.Store
	// scratchDir holds the index when no database path was given; it is
	// removed by Close.
	scratchDir string

	runtime *srcviewrt.Runtime
	policy  links.Policy

	pretty      bool
	titles      bool
	check       bool
	workers     int
	projectName string
	exclude     []string
	linkScript  string
	scriptsFS   fs.FS
	log         io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithPretty selects indented artifacts. The setting is fixed for the
// Engine's lifetime.
func WithPretty(pretty bool) Option {
	return func(e *Engine) {
		e.pretty = pretty
	}
}

// WithWorkers sets the number of units parsed and rendered concurrently.
// Values below 1 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithTitles adds the target's signature to every reference marker.
func WithTitles(titles bool) Option {
	return func(e *Engine) {
		e.titles = titles
	}
}

// WithLinkScript names anchors with the Risor script at path instead of
// the default policy. Scripts may import sibling .risor modules.
func WithLinkScript(path string) Option {
	return func(e *Engine) {
		e.linkScript = path
	}
}

// WithScriptsFS loads the link script and its imports from fsys instead
// of from disk. This enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithCheck renders without writing: each artifact is compared with the
// existing one and the difference reported as drift.
func WithCheck(check bool) Option {
	return func(e *Engine) {
		e.check = check
	}
}

// WithProjectName names the project in the descriptor. The default is the
// base name of the rendered root.
func WithProjectName(name string) Option {
	return func(e *Engine) {
		e.projectName = name
	}
}

// WithExclude skips sources matching the gitignore-style patterns during
// directory discovery.
func WithExclude(patterns ...string) Option {
	return func(e *Engine) {
		e.exclude = append(e.exclude, patterns...)
	}
}

// WithLog receives per-unit warnings and the output of script log calls.
func WithLog(w io.Writer) Option {
	return func(e *Engine) {
		e.log = w
	}
}

// New creates an Engine whose declaration index lives in the SQLite
// database at dbPath. An empty dbPath uses a scratch database that Close
// removes; a named one keeps the index between runs, so rendering a
// subset of units still links into units rendered earlier.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{log: io.Discard}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = goruntime.NumCPU()
	}

	if dbPath == "" {
		dir, err := os.MkdirTemp("", "srcview-*")
		if err != nil {
			return nil, fmt.Errorf("srcview: scratch dir: %w", err)
		}
		e.scratchDir = dir
		dbPath = filepath.Join(dir, "index.db")
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		e.removeScratch()
		return nil, fmt.Errorf("srcview: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		e.removeScratch()
		return nil, fmt.Errorf("srcview: migrate: %w", err)
	}
	e.store = s

	if err := e.buildPolicy(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// buildPolicy creates the Runtime and loads the link script, if any.
func (e *Engine) buildPolicy() error {
	rtOpts := []srcviewrt.RuntimeOption{srcviewrt.WithLogWriter(e.log)}
	scriptsDir, scriptPath := "", e.linkScript
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, srcviewrt.WithRuntimeFS(e.scriptsFS))
	} else if e.linkScript != "" {
		scriptsDir, scriptPath = filepath.Dir(e.linkScript), filepath.Base(e.linkScript)
	}
	e.runtime = srcviewrt.NewRuntime(scriptsDir, rtOpts...)

	if e.linkScript == "" {
		e.policy = links.DefaultPolicy{}
		return nil
	}
	script, err := e.runtime.Load(scriptPath)
	if err != nil {
		return fmt.Errorf("srcview: link script: %w", err)
	}
	e.policy = links.NewScriptPolicy(script)
	return nil
}

// Close releases the Engine's database resources and removes a scratch index.
func (e *Engine) Close() error {
	err := e.store.Close()
	e.removeScratch()
	return err
}

func (e *Engine) removeScratch() {
	if e.scratchDir != "" {
		os.RemoveAll(e.scratchDir)
		e.scratchDir = ""
	}
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a new QueryBuilder over the declaration index.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// RenderDirectory discovers the Java units under root and renders them
// into out. Units indexed by an earlier run that no longer exist are
// dropped from the index.
func (e *Engine) RenderDirectory(ctx context.Context, root, out string) (*Report, error) {
	paths, err := discover.Files(root, discover.WithExclude(e.exclude...))
	if err != nil {
		return nil, fmt.Errorf("srcview: discover: %w", err)
	}
	pruned, err := e.store.PruneUnits(paths)
	if err != nil {
		return nil, fmt.Errorf("srcview: %w", err)
	}
	if pruned > 0 {
		fmt.Fprintf(e.log, "srcview: dropped %d unit(s) no longer present\n", pruned)
	}
	return e.RenderFiles(ctx, root, paths, out)
}

// RenderUnit renders one self-contained unit to w. References to types
// outside the unit are not linked.
func (e *Engine) RenderUnit(ctx context.Context, path string, src []byte, w io.Writer) (*UnitResult, error) {
	res := &UnitResult{Path: path}
	u, universe, err := standalone(ctx, path, src)
	if err != nil {
		res.Err = err
		return res, fmt.Errorf("render %s: %w", path, err)
	}
	defer u.Close()

	artifact, err := e.renderArtifact(ctx, universe, u, nil, res)
	if err != nil {
		res.Err = err
		return res, fmt.Errorf("render %s: %w", path, err)
	}
	if _, err := w.Write(artifact); err != nil {
		res.Err = err
		return res, fmt.Errorf("render %s: write: %w", path, err)
	}
	return res, nil
}

// Inspection is one self-contained unit's rendering before encoding.
type Inspection struct {
	Path string
	// Types and Callables hold the display names of the interned tables,
	// indexed by id.
	Types     []string
	Callables []string
	Markers   []Marker
}

// Inspect builds the markers of one self-contained unit, as RenderUnit
// would encode them.
func (e *Engine) Inspect(ctx context.Context, path string, src []byte) (*Inspection, error) {
	u, universe, err := standalone(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	defer u.Close()

	built, err := e.build(ctx, universe, u, nil)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	in := &Inspection{Path: path, Markers: built.Markers}
	for _, t := range built.Interner.Types().Symbols() {
		in.Types = append(in.Types, symbol.Display(t))
	}
	for _, c := range built.Interner.Callables().Symbols() {
		in.Callables = append(in.Callables, symbol.Display(c))
	}
	return in, nil
}

// standalone parses one unit into a universe of its own.
func standalone(ctx context.Context, path string, src []byte) (*javasrc.Unit, *javasrc.Universe, error) {
	u, err := javasrc.Parse(ctx, path, src)
	if err != nil {
		return nil, nil, err
	}
	universe := javasrc.NewUniverse()
	universe.Declare(u)
	universe.Link(u)
	return u, universe, nil
}
