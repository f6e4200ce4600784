package srcview

import (
	"github.com/jward/srcview/internal/marker"
	"github.com/jward/srcview/internal/store"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder APIs.

type Store = store.Store
type Unit = store.Unit
type Declaration = store.Declaration
type Marker = marker.Marker

// UnitResult is the outcome of rendering one unit.
type UnitResult struct {
	// Path is the unit path, slash separated and relative to the root.
	Path string
	// Output is the artifact path, "" when nothing was written.
	Output    string
	Types     int
	Callables int
	Markers   int
	// Drift is the unified diff between the existing artifact and the
	// rendered one in check mode, "" when they agree.
	Drift string
	Err   error
}

// Report lists the units of one rendering run in path order.
type Report struct {
	Units []UnitResult
	// Project is the project descriptor path, "" when not written.
	Project string
	// ProjectDrift is the project descriptor's diff in check mode.
	ProjectDrift string
}

// Failed returns the units that could not be rendered.
func (r *Report) Failed() []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Err != nil {
			out = append(out, u)
		}
	}
	return out
}

// Drifted returns the units whose artifacts are stale in check mode.
func (r *Report) Drifted() []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Drift != "" {
			out = append(out, u)
		}
	}
	return out
}

// Clean reports whether every unit rendered and nothing drifted.
func (r *Report) Clean() bool {
	return len(r.Failed()) == 0 && len(r.Drifted()) == 0 && r.ProjectDrift == ""
}
