package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/symbol"
)

// Universe is the registry of every type declared in a batch of units.
type Universe struct {
	types   map[string]*symbol.Type
	tparams map[*symbol.Type][]typeVar
}

// NewUniverse creates an empty Universe.
func NewUniverse() *Universe {
	return &Universe{
		types:   make(map[string]*symbol.Type),
		tparams: make(map[*symbol.Type][]typeVar),
	}
}

// Type returns the type with the given qualified name, or nil.
func (u *Universe) Type(qualified string) *symbol.Type { return u.types[qualified] }

// memberType finds a member type named name in t or its supertypes.
func memberType(t *symbol.Type, name string) *symbol.Type {
	var found *symbol.Type
	walkHierarchy(t, func(t *symbol.Type) bool {
		found = t.Nested(name)
		return found == nil
	})
	return found
}

// walkHierarchy visits t and its supertypes breadth first, each once, until
// visit returns false.
func walkHierarchy(t *symbol.Type, visit func(*symbol.Type) bool) {
	if t == nil {
		return
	}
	seen := map[*symbol.Type]bool{t: true}
	queue := []*symbol.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !visit(cur) {
			return
		}
		for _, s := range cur.Supertypes() {
			if !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
}

// env resolves type names at one point of a unit.
type env struct {
	universe *Universe
	unit     *Unit
	// chain holds the enclosing types, innermost last. Entries may be nil
	// for anonymous or undeclared bodies.
	chain []*symbol.Type
	// vars holds the type variables in scope, innermost last.
	vars []typeVar
	// erasing guards bound chains such as <T extends U, U extends T>.
	erasing map[string]bool
}

// typeVar is a type parameter and the leftmost type of its bound.
type typeVar struct {
	name  string
	bound *sitter.Node
}

// envFor builds the env inside type t, including its type parameters and
// those of its enclosing types.
func (u *Universe) envFor(unit *Unit, t *symbol.Type) *env {
	e := &env{universe: u, unit: unit}
	var chain []*symbol.Type
	for cur := t; cur != nil; cur = cur.Enclosing() {
		chain = append([]*symbol.Type{cur}, chain...)
		e.vars = append(e.vars, u.tparams[cur]...)
	}
	e.chain = chain
	return e
}

func (e *env) typeVar(name string) (typeVar, bool) {
	for i := len(e.vars) - 1; i >= 0; i-- {
		if e.vars[i].name == name {
			return e.vars[i], true
		}
	}
	return typeVar{}, false
}

// eraseVar erases a type variable to the erasure of its leftmost bound, or
// Object when it is unbounded.
func (e *env) eraseVar(v typeVar) symbol.Param {
	if v.bound == nil || e.erasing[v.name] {
		return symbol.Param{Text: "Object"}
	}
	if e.erasing == nil {
		e.erasing = make(map[string]bool)
	}
	e.erasing[v.name] = true
	defer delete(e.erasing, v.name)
	return e.erase(v.bound)
}

// lookup resolves a simple type name: enclosing types and their member
// types, single-type imports, the unit's package, on-demand imports and
// java.lang, in that order.
func (e *env) lookup(name string) *symbol.Type {
	for i := len(e.chain) - 1; i >= 0; i-- {
		t := e.chain[i]
		if t == nil {
			continue
		}
		if t.Name() == name {
			return t
		}
		if m := memberType(t, name); m != nil {
			return m
		}
	}
	if e.unit == nil {
		return nil
	}
	for _, im := range e.unit.Imports {
		if !im.OnDemand && im.Last() == name {
			if t := e.universe.absolute(im.Path); t != nil {
				return t
			}
		}
	}
	if t := e.universe.types[join(e.unit.Package, name)]; t != nil {
		return t
	}
	for _, im := range e.unit.Imports {
		if !im.OnDemand {
			continue
		}
		if t := e.universe.types[im.Path+"."+name]; t != nil {
			return t
		}
		if outer := e.universe.types[im.Path]; outer != nil {
			if m := memberType(outer, name); m != nil {
				return m
			}
		}
	}
	return e.universe.types["java.lang."+name]
}

// absolute resolves a fully qualified name, possibly naming a member type
// of a type that is itself fully qualified.
func (u *Universe) absolute(dotted string) *symbol.Type {
	if t := u.types[dotted]; t != nil {
		return t
	}
	segs := strings.Split(dotted, ".")
	for i := len(segs) - 1; i > 0; i-- {
		t := u.types[strings.Join(segs[:i], ".")]
		if t == nil {
			continue
		}
		for _, s := range segs[i:] {
			if t = memberType(t, s); t == nil {
				return nil
			}
		}
		return t
	}
	return nil
}

// qualified resolves a dotted name. The leading segments may be a package,
// a type reachable by simple name, or a qualified type.
func (e *env) qualified(dotted string) *symbol.Type {
	if t := e.universe.types[dotted]; t != nil {
		return t
	}
	segs := strings.Split(dotted, ".")
	if len(segs) == 1 {
		return e.lookup(dotted)
	}
	first := e.lookup(segs[0])
	if first == nil {
		return e.universe.absolute(dotted)
	}
	for _, s := range segs[1:] {
		if first = memberType(first, s); first == nil {
			return nil
		}
	}
	return first
}

// external names a type outside the batch by its import, if any.
func (e *env) external(name string) string {
	if e.unit == nil {
		return name
	}
	for _, im := range e.unit.Imports {
		if !im.OnDemand && !im.Static && im.Last() == name {
			return im.Path
		}
	}
	return name
}

// erase computes the erased form of a type node: generic arguments dropped,
// type variables erased to their leftmost bound, arrays and primitives kept
// as text.
func (e *env) erase(n *sitter.Node) symbol.Param {
	if n == nil {
		return symbol.Param{Text: "Object"}
	}
	src := e.unit.Src
	switch n.Type() {
	case "type_identifier", "identifier":
		name := n.Content(src)
		if v, ok := e.typeVar(name); ok {
			return e.eraseVar(v)
		}
		if t := e.lookup(name); t != nil {
			return symbol.Param{Type: t}
		}
		return symbol.Param{Text: e.external(name)}
	case "scoped_type_identifier", "scoped_identifier":
		dotted := dottedName(n, src)
		if t := e.qualified(dotted); t != nil {
			return symbol.Param{Type: t}
		}
		return symbol.Param{Text: dotted}
	case "generic_type":
		if base := firstNamed(n, "type_identifier", "scoped_type_identifier"); base != nil {
			return e.erase(base)
		}
	case "array_type":
		elem := e.erase(n.ChildByFieldName("element"))
		dims := 1
		if d := n.ChildByFieldName("dimensions"); d != nil {
			dims = strings.Count(d.Content(src), "[")
		}
		return symbol.Param{Text: elem.String() + strings.Repeat("[]", dims)}
	case "annotated_type":
		children := namedChildren(n)
		if len(children) > 0 {
			return e.erase(children[len(children)-1])
		}
	}
	return symbol.Param{Text: n.Content(src)}
}

// resolve returns the project type a type node denotes, or nil for
// primitives, arrays, unbounded type variables and external types. A
// bounded type variable resolves to its bound.
func (e *env) resolve(n *sitter.Node) *symbol.Type {
	if n == nil || n.Type() == "array_type" {
		return nil
	}
	return e.erase(n).Type
}

func join(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
