package stream

import "io"

// Record names of the unit artifact, in the order they are written.
const (
	RecordTypeTable   = "typeTable"
	RecordMethodTable = "methodTable"
	RecordMarkers     = "markers"
	RecordProject     = "project"
)

// Unit holds the serialized tables and marker list of one source unit.
type Unit struct {
	Types     Array
	Callables Array
	Markers   Array
}

// EncodeUnit writes u as three records: the type table, the callable table
// and the markers. Tables precede markers so a consumer has every id
// defined before it is referenced.
func EncodeUnit(w io.Writer, u Unit, opts ...Option) error {
	sw := NewWriter(w, opts...)
	sw.Call(RecordTypeTable, nonNil(u.Types))
	sw.Call(RecordMethodTable, nonNil(u.Callables))
	sw.Call(RecordMarkers, nonNil(u.Markers))
	return sw.Flush()
}

// PackageEntry lists the units rendered for one package.
type PackageEntry struct {
	Name  string
	Units []string
}

// EncodeProject writes the project descriptor record:
// project(["name","id",[["pkg",["unit",...]],...]]);
func EncodeProject(w io.Writer, name, id string, packages []PackageEntry, opts ...Option) error {
	pkgs := make(Array, 0, len(packages))
	for _, p := range packages {
		pkgs = append(pkgs, Array{String(p.Name), Strings(p.Units...)})
	}
	sw := NewWriter(w, opts...)
	sw.Call(RecordProject, Array{String(name), String(id), pkgs})
	return sw.Flush()
}

func nonNil(a Array) Array {
	if a == nil {
		return Array{}
	}
	return a
}
