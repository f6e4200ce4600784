package srcview

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jward/srcview/internal/javasrc"
	"github.com/jward/srcview/internal/links"
	"github.com/jward/srcview/internal/marker"
	"github.com/jward/srcview/internal/store"
	"github.com/jward/srcview/internal/stream"
	"github.com/jward/srcview/internal/symbol"
)

// ArtifactExt is appended to a unit path to name its artifact.
const ArtifactExt = ".js"

// ProjectFile is the name of the project descriptor in the output directory.
const ProjectFile = "project.js"

// workItem holds one unit as it moves through the pipeline.
type workItem struct {
	res    *UnitResult
	unit   *javasrc.Unit
	unitID int64

	// contextOnly units were indexed by an earlier run; they are declared so
	// references into them bind, but not re-rendered.
	contextOnly bool
}

func (w *workItem) fail(err error) {
	if w.res.Err == nil {
		w.res.Err = err
	}
}

// RenderFiles renders the given units of root into out using a phased
// pipeline:
//
//	Phase A (parallel): read and parse each unit.
//	Phase B (serial):   declare every unit's symbols, then link signatures.
//	Phase C (parallel): name anchors into a batch, committed in one transaction.
//	Phase D (parallel): bind, build markers and write each artifact.
//
// Paths may be absolute or relative to root. Units indexed by an earlier
// run that still exist under root are parsed and declared as context, so a
// subset render links into them. Errors are unit scoped: a failed unit is
// reported and the others are still rendered. The returned error
// summarizes the failures; the Report is returned either way.
func (e *Engine) RenderFiles(ctx context.Context, root string, paths []string, out string) (*Report, error) {
	items, err := e.newItems(root, paths)
	if err != nil {
		return nil, err
	}
	extra, err := e.contextItems(root, items)
	if err != nil {
		return nil, err
	}
	all := append(append([]*workItem(nil), items...), extra...)
	defer func() {
		for _, it := range all {
			if it.unit != nil {
				it.unit.Close()
			}
		}
	}()

	// ---- Phase A: Parallel parse ----
	e.forEach(ctx, all, func(it *workItem) {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(it.res.Path)))
		if err != nil {
			it.fail(fmt.Errorf("read: %w", err))
			return
		}
		u, err := javasrc.Parse(ctx, it.res.Path, src)
		if err != nil {
			it.fail(err)
			return
		}
		it.unit = u
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ---- Phase B: Serial declare and link ----
	universe := javasrc.NewUniverse()
	parsed := make([]*workItem, 0, len(items))
	for _, it := range all {
		if it.unit == nil {
			if it.contextOnly {
				fmt.Fprintf(e.log, "srcview: context %s: %v\n", it.res.Path, it.res.Err)
			}
			continue
		}
		universe.Declare(it.unit)
		if !it.contextOnly {
			parsed = append(parsed, it)
		}
	}
	for _, it := range all {
		if it.unit != nil {
			universe.Link(it.unit)
		}
	}

	// ---- Phase C: Index ----
	if err := e.index(ctx, parsed); err != nil {
		return nil, err
	}

	// ---- Phase D: Parallel render ----
	e.forEach(ctx, parsed, func(it *workItem) {
		if it.res.Err != nil {
			return
		}
		artifact, err := e.renderArtifact(ctx, universe, it.unit, e.store, it.res)
		if err != nil {
			it.fail(err)
			return
		}
		target := filepath.Join(out, filepath.FromSlash(it.res.Path)+ArtifactExt)
		drift, err := e.emit(target, artifact)
		if err != nil {
			it.fail(err)
			return
		}
		it.res.Drift = drift
		if !e.check {
			it.res.Output = target
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Units: make([]UnitResult, len(items))}
	var errs []error
	for i, it := range items {
		report.Units[i] = *it.res
		if it.res.Err != nil {
			errs = append(errs, fmt.Errorf("render %s: %w", it.res.Path, it.res.Err))
			fmt.Fprintf(e.log, "srcview: render %s: %v\n", it.res.Path, it.res.Err)
		}
	}

	if err := e.writeProject(root, out, report); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("rendering had %d error(s): %w", len(errs), errs[0])
	}
	return report, nil
}

// newItems normalizes paths to slash-separated paths relative to root,
// dropping duplicates, in sorted order.
func (e *Engine) newItems(root string, paths []string) ([]*workItem, error) {
	seen := make(map[string]bool, len(paths))
	var rels []string
	for _, p := range paths {
		rel := p
		if filepath.IsAbs(p) {
			r, err := filepath.Rel(root, p)
			if err != nil {
				return nil, fmt.Errorf("srcview: %s is not under %s: %w", p, root, err)
			}
			rel = r
		}
		rel = filepath.ToSlash(filepath.Clean(rel))
		if seen[rel] {
			continue
		}
		seen[rel] = true
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	items := make([]*workItem, len(rels))
	for i, rel := range rels {
		items[i] = &workItem{res: &UnitResult{Path: rel}}
	}
	return items, nil
}

// contextItems returns the indexed units that are not being rendered but
// still exist under root.
func (e *Engine) contextItems(root string, items []*workItem) ([]*workItem, error) {
	units, err := e.store.Units()
	if err != nil {
		return nil, fmt.Errorf("srcview: %w", err)
	}
	rendering := make(map[string]bool, len(items))
	for _, it := range items {
		rendering[it.res.Path] = true
	}
	var extra []*workItem
	for _, u := range units {
		if rendering[u.Path] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(u.Path))); err != nil {
			continue
		}
		extra = append(extra, &workItem{res: &UnitResult{Path: u.Path}, unitID: u.ID, contextOnly: true})
	}
	return extra, nil
}

// forEach runs fn over items on the Engine's worker pool. Items are
// skipped once ctx is done.
func (e *Engine) forEach(ctx context.Context, items []*workItem, fn func(*workItem)) {
	numWorkers := min(e.workers, len(items))
	if numWorkers < 1 {
		return
	}

	workCh := make(chan *workItem, len(items))
	for _, it := range items {
		workCh <- it
	}
	close(workCh)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range workCh {
				if ctx.Err() != nil {
					continue
				}
				fn(it)
			}
		}()
	}
	wg.Wait()
}

// index records every parsed unit and names the anchors of its types,
// callables and fields. Naming runs on the worker pool into one batch that
// is committed in a single transaction.
func (e *Engine) index(ctx context.Context, items []*workItem) error {
	for _, it := range items {
		id, err := e.store.InsertUnit(&store.Unit{Path: it.res.Path, Package: it.unit.Package})
		if err != nil {
			return fmt.Errorf("srcview: index %s: %w", it.res.Path, err)
		}
		it.unitID = id
	}

	batch := store.NewBatchedStore()
	e.forEach(ctx, items, func(it *workItem) {
		for _, s := range it.unit.Declared() {
			anchor, err := e.policy.Anchor(ctx, s)
			if err != nil {
				it.fail(err)
				return
			}
			if anchor == "" {
				continue
			}
			if _, err := batch.InsertDeclaration(&store.Declaration{
				UnitID:  it.unitID,
				Anchor:  anchor,
				Name:    s.Name(),
				Kind:    s.Kind().String(),
				Display: symbol.Display(s),
			}); err != nil {
				it.fail(err)
				return
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	// Failed units are not rendered; nothing they buffered is committed.
	for _, it := range items {
		if it.res.Err != nil {
			batch.DropUnit(it.unitID)
		}
	}
	if err := e.store.CommitBatch(batch); err != nil {
		return fmt.Errorf("srcview: %w", err)
	}
	return nil
}

// renderArtifact binds u, builds its markers and encodes the artifact,
// filling the counts of res. A nil index links only within the unit.
func (e *Engine) renderArtifact(ctx context.Context, universe *javasrc.Universe, u *javasrc.Unit, index store.DataStore, res *UnitResult) ([]byte, error) {
	built, err := e.build(ctx, universe, u, index)
	if err != nil {
		return nil, err
	}
	su, err := built.Unit()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := stream.EncodeUnit(&buf, su, stream.WithPretty(e.pretty)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	res.Types = built.Interner.Types().Len()
	res.Callables = built.Interner.Callables().Len()
	res.Markers = len(built.Markers)
	return buf.Bytes(), nil
}

func (e *Engine) build(ctx context.Context, universe *javasrc.Universe, u *javasrc.Unit, index store.DataStore) (*marker.Result, error) {
	bindings := universe.Bind(u)
	resolver := links.NewResolver(ctx, e.policy, index, u.Path, u.Declared())
	builder := marker.NewBuilder(u.Positions, resolver, bindings, marker.WithTitles(e.titles))
	return builder.Build(u.Root())
}
