// Package symbol defines the resolved program entities that markers and
// symbol tables refer to. Symbols are compared by pointer identity.
package symbol

import "strings"

// Symbol is a named, resolved program entity.
type Symbol interface {
	Kind() Kind
	Name() string
	Modifiers() Modifiers
	Deprecated() bool
}

// Type is a nominal type: class, interface, enum or annotation type.
type Type struct {
	kind       Kind
	mods       Modifiers
	deprecated bool

	simple    string
	qualified string
	pkg       string
	enclosing *Type

	// Super and Interfaces are filled in once every unit of a batch has
	// been declared. Nil or empty when unknown or outside the project.
	Super      *Type
	Interfaces []*Type

	nested    map[string]*Type
	callables []*Callable
	fields    []*Field
}

var _ Symbol = (*Type)(nil)

// NewType creates a type named simple, nested in enclosing when non-nil,
// otherwise a top-level type of pkg ("" for the default package).
func NewType(kind Kind, pkg string, enclosing *Type, simple string, mods Modifiers, deprecated bool) *Type {
	t := &Type{
		kind:       kind,
		mods:       mods,
		deprecated: deprecated,
		simple:     simple,
		pkg:        pkg,
		enclosing:  enclosing,
	}
	switch {
	case enclosing != nil:
		t.qualified = enclosing.qualified + "." + simple
		t.pkg = enclosing.pkg
	case pkg != "":
		t.qualified = pkg + "." + simple
	default:
		t.qualified = simple
	}
	if enclosing != nil {
		if enclosing.nested == nil {
			enclosing.nested = make(map[string]*Type)
		}
		enclosing.nested[simple] = t
	}
	return t
}

func (t *Type) Kind() Kind            { return t.kind }
func (t *Type) Name() string          { return t.simple }
func (t *Type) Modifiers() Modifiers  { return t.mods }
func (t *Type) Deprecated() bool      { return t.deprecated }
func (t *Type) QualifiedName() string { return t.qualified }
func (t *Type) Package() string       { return t.pkg }
func (t *Type) Enclosing() *Type      { return t.enclosing }

// Nested returns the directly nested member type called name.
func (t *Type) Nested(name string) *Type { return t.nested[name] }

// Callables returns the declared constructors and methods in declaration order.
func (t *Type) Callables() []*Callable { return t.callables }

// Fields returns the declared fields and enum constants in declaration order.
func (t *Type) Fields() []*Field { return t.fields }

// Field returns the declared field called name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Supertypes returns Super followed by Interfaces, skipping nils.
func (t *Type) Supertypes() []*Type {
	var out []*Type
	if t.Super != nil {
		out = append(out, t.Super)
	}
	for _, it := range t.Interfaces {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Param is an erased parameter type: a project type when resolved,
// otherwise its source text (primitives, arrays, external types).
type Param struct {
	Type *Type
	Text string
}

func (p Param) String() string {
	if p.Type != nil {
		return p.Type.qualified
	}
	return p.Text
}

// Callable is a constructor or method.
type Callable struct {
	kind       Kind
	mods       Modifiers
	deprecated bool

	owner *Type
	name  string

	// Params is filled in when signatures are linked.
	Params  []Param
	Varargs bool
	// Returns is the declared result type when it is a project type.
	Returns *Type
}

var _ Symbol = (*Callable)(nil)

// NewCallable creates a callable and attaches it to owner.
func NewCallable(kind Kind, owner *Type, name string, mods Modifiers, deprecated bool) *Callable {
	c := &Callable{kind: kind, mods: mods, deprecated: deprecated, owner: owner, name: name}
	owner.callables = append(owner.callables, c)
	return c
}

func (c *Callable) Kind() Kind           { return c.kind }
func (c *Callable) Modifiers() Modifiers { return c.mods }
func (c *Callable) Deprecated() bool     { return c.deprecated }
func (c *Callable) Owner() *Type         { return c.owner }

// Name returns the simple name; constructors take their owner's name.
func (c *Callable) Name() string {
	if c.kind == KindConstructor {
		return c.owner.simple
	}
	return c.name
}

// Arity is the number of declared parameters.
func (c *Callable) Arity() int { return len(c.Params) }

// Accepts reports whether a call with n arguments can target c.
func (c *Callable) Accepts(n int) bool {
	if c.Varargs {
		return n >= len(c.Params)-1
	}
	return n == len(c.Params)
}

// ParamList renders the erased parameters as "(a,b)".
func (c *Callable) ParamList() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Field is a field or enum constant.
type Field struct {
	kind       Kind
	mods       Modifiers
	deprecated bool

	owner *Type
	name  string

	// Type is the field's declared type when it is a project type.
	Type *Type
}

var _ Symbol = (*Field)(nil)

// NewField creates a field (or enum constant) and attaches it to owner.
func NewField(kind Kind, owner *Type, name string, mods Modifiers, deprecated bool) *Field {
	f := &Field{kind: kind, mods: mods, deprecated: deprecated, owner: owner, name: name}
	owner.fields = append(owner.fields, f)
	return f
}

func (f *Field) Kind() Kind           { return f.kind }
func (f *Field) Name() string         { return f.name }
func (f *Field) Modifiers() Modifiers { return f.mods }
func (f *Field) Deprecated() bool     { return f.deprecated }
func (f *Field) Owner() *Type         { return f.owner }

// Variable is a local variable, parameter, exception parameter or type
// parameter. Variables never leave their unit.
type Variable struct {
	kind       Kind
	mods       Modifiers
	deprecated bool

	name string

	// Offset is the character offset of the declaring name, unique within
	// the unit.
	Offset int
	// Type is the declared type when it is a project type.
	Type *Type
}

var _ Symbol = (*Variable)(nil)

// NewVariable creates a variable declared at offset.
func NewVariable(kind Kind, name string, offset int, mods Modifiers, deprecated bool) *Variable {
	return &Variable{kind: kind, mods: mods, deprecated: deprecated, name: name, Offset: offset}
}

func (v *Variable) Kind() Kind           { return v.kind }
func (v *Variable) Name() string         { return v.name }
func (v *Variable) Modifiers() Modifiers { return v.mods }
func (v *Variable) Deprecated() bool     { return v.deprecated }

// Display renders a human-readable signature, used for marker titles.
func Display(s Symbol) string {
	switch v := s.(type) {
	case *Type:
		return v.qualified
	case *Callable:
		return v.owner.qualified + "." + v.Name() + v.ParamList()
	case *Field:
		return v.owner.qualified + "." + v.name
	}
	return s.Name()
}
