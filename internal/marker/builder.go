package marker

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/intern"
	"github.com/jward/srcview/internal/stream"
	"github.com/jward/srcview/internal/symbol"
)

// Option configures a Builder.
type Option func(*Builder)

// WithTitles sets reference marker titles to the target's signature.
func WithTitles(titles bool) Option {
	return func(b *Builder) {
		b.titles = titles
	}
}

// Builder produces the markers of one unit.
type Builder struct {
	pos    PositionTable
	links  LinkResolver
	binder Binder
	titles bool
}

// NewBuilder creates a Builder over a unit's position table, link resolver
// and bindings.
func NewBuilder(pos PositionTable, links LinkResolver, binder Binder, opts ...Option) *Builder {
	b := &Builder{pos: pos, links: links, binder: binder}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result is the output of one build: the unit's symbol tables and its
// markers in source order.
type Result struct {
	Interner *intern.Interner
	Markers  []Marker
}

// Unit serializes the result for the stream encoder.
func (r *Result) Unit() (stream.Unit, error) {
	callables, err := r.Interner.SerializeCallables()
	if err != nil {
		return stream.Unit{}, err
	}
	markers := make(stream.Array, len(r.Markers))
	for i, m := range r.Markers {
		markers[i] = m.Value()
	}
	return stream.Unit{
		Types:     r.Interner.SerializeTypes(),
		Callables: callables,
		Markers:   markers,
	}, nil
}

// buildContext is the mutable state threaded through one traversal.
type buildContext struct {
	interner *intern.Interner
	markers  []Marker
	anchors  map[string]struct{}
}

// Build walks the tree rooted at root once, depth first and left to right.
// Any error aborts the unit.
func (b *Builder) Build(root *sitter.Node) (*Result, error) {
	bc := &buildContext{
		interner: intern.New(),
		anchors:  make(map[string]struct{}),
	}

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	for {
		node := cursor.CurrentNode()
		for _, occ := range b.binder.Occurrences(node) {
			if occ.Node == nil && occ.Token == nil {
				occ.Node = node
			}
			if err := b.emit(bc, occ); err != nil {
				return nil, err
			}
		}

		if cursor.GoToFirstChild() {
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return &Result{Interner: bc.interner, Markers: bc.markers}, nil
			}
		}
	}
}

func (b *Builder) emit(bc *buildContext, occ Occurrence) error {
	if occ.Symbol == nil {
		return fmt.Errorf("marker: %s without symbol", occ.Role)
	}
	if !occ.Symbol.Kind().Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownKind, occ.Symbol.Name())
	}

	start, end, err := b.span(occ)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("%w: %s at [%d,%d)", ErrEmptySpan, symbol.Display(occ.Symbol), start, end)
	}
	if n := len(bc.markers); n > 0 {
		last := bc.markers[n-1]
		if start == last.Start && end == last.End {
			// The first occurrence at a span wins.
			return nil
		}
		if start < last.End {
			return fmt.Errorf("%w: %s at [%d,%d) after [%d,%d)",
				ErrOverlap, symbol.Display(occ.Symbol), start, end, last.Start, last.End)
		}
	}

	m := Marker{
		Start: start,
		End:   end,
		Class: symbol.Decorate(occ.Role.seed(), occ.Symbol),
	}

	href, err := b.links.Href(occ.Symbol)
	if err != nil {
		return fmt.Errorf("marker: link for %s: %w", symbol.Display(occ.Symbol), err)
	}
	switch occ.Role {
	case Declaration:
		id, err := anchorID(href)
		if err != nil {
			return fmt.Errorf("%w (declaration of %s)", err, symbol.Display(occ.Symbol))
		}
		if id != "" {
			if _, dup := bc.anchors[id]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateAnchor, id)
			}
			bc.anchors[id] = struct{}{}
			m.Href = href
			m.AnchorID = id
		}
	case Reference:
		m.Href = href
		if b.titles {
			m.Title = symbol.Display(occ.Symbol)
		}
	}

	if err := bc.interner.Register(occ.Symbol); err != nil {
		return err
	}
	bc.markers = append(bc.markers, m)
	return nil
}

func (b *Builder) span(occ Occurrence) (int, int, error) {
	if occ.Token != nil {
		start, err := b.pos.Offset(occ.Token.Line, occ.Token.Column)
		if err != nil {
			return 0, 0, fmt.Errorf("marker: token %q: %w", occ.Token.Text, err)
		}
		return start, start + occ.Token.Len(), nil
	}
	start, end := b.pos.NodeSpan(occ.Node)
	return start, end, nil
}

// anchorID strips the anchor prefix from a declaration's link target. An
// empty target means the declaration is not addressable.
func anchorID(href string) (string, error) {
	if href == "" {
		return "", nil
	}
	if href[0] != AnchorPrefix {
		return "", fmt.Errorf("%w: %q does not start with %q", ErrMalformedAnchor, href, AnchorPrefix)
	}
	return href[1:], nil
}
