// Package discover finds the Java compilation units under a project root.
package discover

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// SourceExt is the extension of the files discovery returns.
const SourceExt = ".java"

// skipDirs are directories never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"build":        true,
	"target":       true,
	"out":          true,
}

// Option configures discovery.
type Option func(*finder)

// WithExclude skips files matching any of the gitignore-style patterns,
// evaluated against paths relative to the root.
func WithExclude(patterns ...string) Option {
	return func(f *finder) {
		f.exclude = append(f.exclude, patterns...)
	}
}

// WithoutGit forces the filesystem walk even inside a git work tree.
func WithoutGit() Option {
	return func(f *finder) {
		f.noGit = true
	}
}

type finder struct {
	root    string
	exclude []string
	noGit   bool
}

// Files returns the Java sources under root as slash-separated paths
// relative to root, sorted. Inside a git work tree it lists tracked and
// untracked-but-not-ignored files via git ls-files; otherwise it walks the
// filesystem, skipping hidden and build directories and honoring a
// top-level .gitignore.
func Files(root string, opts ...Option) ([]string, error) {
	f := &finder{root: root}
	for _, opt := range opts {
		opt(f)
	}

	var paths []string
	var err error
	if !f.noGit {
		paths, err = f.gitListFiles()
	}
	if f.noGit || err != nil {
		paths, err = f.walkListFiles()
		if err != nil {
			return nil, err
		}
	}

	if len(f.exclude) > 0 {
		ex := ignore.CompileIgnoreLines(f.exclude...)
		kept := paths[:0]
		for _, p := range paths {
			if !ex.MatchesPath(p) {
				kept = append(kept, p)
			}
		}
		paths = kept
	}
	sort.Strings(paths)
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func (f *finder) gitListFiles() ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = f.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !IsSource(line) {
			continue
		}
		// Deleted but still tracked files are listed too.
		if _, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(line))); err != nil {
			continue
		}
		paths = append(paths, line)
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a fallback
// when git is not available.
func (f *finder) walkListFiles() ([]string, error) {
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(f.root, ".gitignore"))

	var paths []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == f.root {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirs[name] || (gi != nil && gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || strings.HasPrefix(name, ".") {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if IsSource(name) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// IsSource reports whether path names a Java source file.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SourceExt)
}
