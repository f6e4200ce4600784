package srcview

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/jward/srcview/internal/stream"
)

// emit writes artifact to target, or in check mode compares it with the
// existing file and returns their unified diff.
func (e *Engine) emit(target string, artifact []byte) (string, error) {
	if e.check {
		existing, err := os.ReadFile(target)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("check: %w", err)
		}
		return unifiedDiff(target, existing, artifact)
	}
	return "", writeAtomic(target, artifact)
}

// writeAtomic writes data to a temporary file next to target and renames it
// into place, so a failed write never leaves a partial artifact.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s: %w", target, err)
	}
	return nil
}

// unifiedDiff returns the diff turning onDisk into rendered, "" when equal.
func unifiedDiff(name string, onDisk, rendered []byte) (string, error) {
	if bytes.Equal(onDisk, rendered) {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(onDisk)),
		B:        difflib.SplitLines(string(rendered)),
		FromFile: name + " (on disk)",
		ToFile:   name + " (rendered)",
		Context:  2,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}
	return diff, nil
}

// ProjectID returns the stable identifier of a project name: a name-based
// SHA-1 UUID, so re-rendering a project keeps its id.
func ProjectID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("srcview:"+name)).String()
}

// writeProject writes the project descriptor listing every indexed unit by
// package, including units indexed by earlier runs of a persistent index.
func (e *Engine) writeProject(root, out string, report *Report) error {
	units, err := e.store.Units()
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	byPkg := make(map[string][]string)
	for _, u := range units {
		byPkg[u.Package] = append(byPkg[u.Package], u.Path)
	}
	names := make([]string, 0, len(byPkg))
	for p := range byPkg {
		names = append(names, p)
	}
	sort.Strings(names)
	packages := make([]stream.PackageEntry, len(names))
	for i, p := range names {
		packages[i] = stream.PackageEntry{Name: p, Units: byPkg[p]}
	}

	name := e.projectName
	if name == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		name = filepath.Base(abs)
	}

	var buf bytes.Buffer
	if err := stream.EncodeProject(&buf, name, ProjectID(name), packages, stream.WithPretty(e.pretty)); err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}
	target := filepath.Join(out, ProjectFile)
	drift, err := e.emit(target, buf.Bytes())
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	report.ProjectDrift = drift
	if !e.check {
		report.Project = target
	}
	return nil
}
