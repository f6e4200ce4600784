// Package runtime embeds a Risor VM for the user scripts that customize
// rendering, such as anchor naming.
package runtime

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// Runtime evaluates Risor scripts with the standard srcview globals.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logOut     io.Writer
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. The Risor importer resolves imports from the same FS.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogWriter sends the output of the script log global to w.
func WithLogWriter(w io.Writer) RuntimeOption {
	return func(r *Runtime) {
		r.logOut = w
	}
}

// NewRuntime creates a Runtime that loads scripts relative to scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logOut:     os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Script is a loaded script ready to be evaluated many times.
type Script struct {
	rt     *Runtime
	label  string
	source string
}

// Load reads a script once for repeated evaluation.
func (r *Runtime) Load(path string) (*Script, error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return &Script{rt: r, label: path, source: src}, nil
}

// Inline wraps script source held in memory.
func (r *Runtime) Inline(source string) *Script {
	return &Script{rt: r, label: "<inline>", source: source}
}

// Eval runs the script with the standard globals plus extra and returns
// the value of its last expression.
func (s *Script) Eval(ctx context.Context, extra map[string]any) (object.Object, error) {
	return s.rt.eval(ctx, s.source, s.label, extra)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	if errObj, ok := result.(*object.Error); ok {
		return nil, fmt.Errorf("runtime: script %s: %s", label, errObj.Message().Value())
	}
	return result, nil
}

// buildImporter returns a Risor importer over the Runtime's script source,
// or nil when neither an fs.FS nor a scripts directory is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file. With an fs.FS configured the path is
// relative to the FS root; otherwise relative paths are joined to the
// scripts directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the globals exposed to every script.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log":  mustProxy(&logObject{prefix: "srcview", out: r.logOut}),
		"slug": makeSlugFn(),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
