// Package marker turns a resolved syntax tree into the flat list of
// character-range markers the viewer splices into raw source text.
//
// A Builder walks the tree once, in source order. At every node it asks a
// Binder which declarations and references the node carries, computes each
// occurrence's range, style class and link target, and registers the symbol
// in the unit's Interner.
package marker

import (
	"errors"
	"unicode/utf16"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/stream"
	"github.com/jward/srcview/internal/symbol"
)

// AnchorPrefix starts every in-unit link target.
const AnchorPrefix = '#'

var (
	ErrEmptySpan       = errors.New("marker: empty span")
	ErrOverlap         = errors.New("marker: overlapping span")
	ErrMalformedAnchor = errors.New("marker: malformed anchor")
	ErrDuplicateAnchor = errors.New("marker: duplicate anchor")
	ErrUnknownKind     = errors.New("marker: symbol has no style kind")
)

// Marker is one decorated span of source text. AnchorID and Title are
// empty when absent.
type Marker struct {
	Start    int
	End      int
	Href     string
	Class    string
	AnchorID string
	Title    string
}

// Value renders m as [start,end,href,class,anchorId,title].
func (m Marker) Value() stream.Array {
	return stream.Array{
		stream.Int(m.Start),
		stream.Int(m.End),
		stream.String(m.Href),
		stream.String(m.Class),
		stream.String(m.AnchorID),
		stream.String(m.Title),
	}
}

// Role tells declarations from references.
type Role uint8

const (
	Declaration Role = iota
	Reference
)

func (r Role) seed() string {
	if r == Declaration {
		return symbol.SeedDeclaration
	}
	return symbol.SeedReference
}

func (r Role) String() string {
	if r == Declaration {
		return "declaration"
	}
	return "reference"
}

// Token addresses a sub-span of a node by its 1-based line and character
// column plus its text.
type Token struct {
	Line   int
	Column int
	Text   string
}

// Len returns the token length in characters.
func (t Token) Len() int {
	n := 0
	for _, r := range t.Text {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Occurrence is a resolved use or declaration of a symbol. When Token is
// set the range comes from it; otherwise from Node, or from the visited node
// when Node is nil.
type Occurrence struct {
	Role   Role
	Symbol symbol.Symbol
	Node   *sitter.Node
	Token  *Token
}

// Binder reports the occurrences carried by a tree node. Occurrences of a
// node are returned in source order; unresolved uses are simply omitted.
type Binder interface {
	Occurrences(n *sitter.Node) []Occurrence
}

// PositionTable maps positions of the unit to absolute character offsets.
type PositionTable interface {
	Offset(line, col int) (int, error)
	NodeSpan(n *sitter.Node) (start, end int)
}

// LinkResolver names link targets. Href returns "" when the symbol has no
// navigable location, "#id" for an anchor in the current unit, or any other
// URL for a location elsewhere.
type LinkResolver interface {
	Href(s symbol.Symbol) (string, error)
}
