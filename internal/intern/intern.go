// Package intern assigns dense, zero-based ids to the symbols referenced by
// one source unit. Two tables are kept, types and callables, each in
// first-encounter order and keyed by symbol identity.
package intern

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jward/srcview/internal/stream"
	"github.com/jward/srcview/internal/symbol"
)

// ErrNilSymbol is returned when a nil symbol is registered.
var ErrNilSymbol = errors.New("intern: nil symbol")

// LookupError reports an id lookup for a symbol that was never registered.
// It means the caller skipped a registration; the unit must be abandoned.
type LookupError struct {
	Table  string
	Symbol symbol.Symbol
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("intern: no %s entry for %s", e.Table, symbol.Display(e.Symbol))
}

// Table is an append-only, insertion-ordered symbol table.
type Table[S comparable] struct {
	name string
	ids  *orderedmap.OrderedMap[S, int]
}

func newTable[S comparable](name string) *Table[S] {
	return &Table[S]{name: name, ids: orderedmap.New[S, int]()}
}

// add registers s if absent and returns its id.
func (t *Table[S]) add(s S) int {
	if id, ok := t.ids.Get(s); ok {
		return id
	}
	id := t.ids.Len()
	t.ids.Set(s, id)
	return id
}

// Len returns the number of registered symbols.
func (t *Table[S]) Len() int { return t.ids.Len() }

// Contains reports whether s has an id.
func (t *Table[S]) Contains(s S) bool {
	_, ok := t.ids.Get(s)
	return ok
}

// Symbols returns the registered symbols in id order.
func (t *Table[S]) Symbols() []S {
	out := make([]S, 0, t.ids.Len())
	for p := t.ids.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Interner owns the type and callable tables of one unit.
type Interner struct {
	types     *Table[*symbol.Type]
	callables *Table[*symbol.Callable]
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{
		types:     newTable[*symbol.Type]("type"),
		callables: newTable[*symbol.Callable]("callable"),
	}
}

// Types returns the type table.
func (in *Interner) Types() *Table[*symbol.Type] { return in.types }

// Callables returns the callable table.
func (in *Interner) Callables() *Table[*symbol.Callable] { return in.callables }

// Register adds s to the table matching its kind. Registering a callable
// first registers its owner and resolved parameter types. Fields and
// variables are not tabled and are accepted as a no-op.
func (in *Interner) Register(s symbol.Symbol) error {
	switch v := s.(type) {
	case nil:
		return ErrNilSymbol
	case *symbol.Type:
		return in.AddType(v)
	case *symbol.Callable:
		return in.AddCallable(v)
	case *symbol.Field:
		if v == nil {
			return ErrNilSymbol
		}
		return nil
	case *symbol.Variable:
		if v == nil {
			return ErrNilSymbol
		}
		return nil
	}
	return fmt.Errorf("intern: unsupported symbol %T", s)
}

// AddType registers a type. Idempotent.
func (in *Interner) AddType(t *symbol.Type) error {
	if t == nil {
		return ErrNilSymbol
	}
	in.types.add(t)
	return nil
}

// AddCallable registers c's owner and resolved parameter types, then c.
// Idempotent.
func (in *Interner) AddCallable(c *symbol.Callable) error {
	if c == nil {
		return ErrNilSymbol
	}
	if err := in.AddType(c.Owner()); err != nil {
		return fmt.Errorf("intern: owner of %s: %w", c.Name(), err)
	}
	for _, p := range c.Params {
		if p.Type != nil {
			in.types.add(p.Type)
		}
	}
	in.callables.add(c)
	return nil
}

// TypeID returns the id of a registered type.
func (in *Interner) TypeID(t *symbol.Type) (int, error) {
	if t == nil {
		return 0, ErrNilSymbol
	}
	id, ok := in.types.ids.Get(t)
	if !ok {
		return 0, &LookupError{Table: in.types.name, Symbol: t}
	}
	return id, nil
}

// CallableID returns the id of a registered callable.
func (in *Interner) CallableID(c *symbol.Callable) (int, error) {
	if c == nil {
		return 0, ErrNilSymbol
	}
	id, ok := in.callables.ids.Get(c)
	if !ok {
		return 0, &LookupError{Table: in.callables.name, Symbol: c}
	}
	return id, nil
}

// SerializeTypes renders the type table: one [qualifiedName, styleClass]
// row per type, in id order.
func (in *Interner) SerializeTypes() stream.Array {
	rows := make(stream.Array, 0, in.types.Len())
	for _, t := range in.types.Symbols() {
		rows = append(rows, stream.Strings(t.QualifiedName(), symbol.Classify(t)))
	}
	return rows
}

// SerializeCallables renders the callable table: one
// [ownerTypeId, name, [paramTypeIdOrText...], styleClass] row per callable.
func (in *Interner) SerializeCallables() (stream.Array, error) {
	rows := make(stream.Array, 0, in.callables.Len())
	for _, c := range in.callables.Symbols() {
		owner, err := in.TypeID(c.Owner())
		if err != nil {
			return nil, err
		}
		params := make(stream.Array, 0, len(c.Params))
		for _, p := range c.Params {
			if p.Type == nil {
				params = append(params, stream.String(p.Text))
				continue
			}
			id, err := in.TypeID(p.Type)
			if err != nil {
				return nil, err
			}
			params = append(params, stream.Int(id))
		}
		rows = append(rows, stream.Array{
			stream.Int(owner),
			stream.String(c.Name()),
			params,
			stream.String(symbol.Classify(c)),
		})
	}
	return rows, nil
}
