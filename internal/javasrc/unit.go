// Package javasrc is the Java front end: it parses compilation units with
// tree-sitter, declares their types and members in a project-wide Universe,
// links signatures across units and binds every name in a unit to the
// symbol it denotes.
//
// A batch is processed in three steps. Declare runs for every unit, then
// Link, then Bind. Declare and Link mutate the Universe and must not run
// concurrently; Bind only reads it and may run on many units at once.
package javasrc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/jward/srcview/internal/source"
	"github.com/jward/srcview/internal/symbol"
)

// Language returns the tree-sitter grammar for Java.
func Language() *sitter.Language { return java.GetLanguage() }

// Import is one import declaration.
type Import struct {
	// Path is the imported name without a trailing ".*".
	Path     string
	Static   bool
	OnDemand bool
}

// Last returns the final segment of the imported name.
func (im Import) Last() string {
	if i := strings.LastIndexByte(im.Path, '.'); i >= 0 {
		return im.Path[i+1:]
	}
	return im.Path
}

// Unit is one parsed compilation unit.
type Unit struct {
	Path      string
	Src       []byte
	Package   string
	Imports   []Import
	Positions *source.Positions

	tree *sitter.Tree

	// decls maps declaring name nodes to the symbols Declare created.
	decls    map[nodeKey]symbol.Symbol
	declared []symbol.Symbol
	types    []typeDecl
	members  []memberDecl
}

// Parse parses one Java source file. Syntax errors do not fail parsing: the
// damaged regions simply bind nothing.
func Parse(ctx context.Context, path string, src []byte) (*Unit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	u := &Unit{
		Path:      path,
		Src:       src,
		Positions: source.NewPositions(src),
		tree:      tree,
		decls:     make(map[nodeKey]symbol.Symbol),
	}
	u.readHeader()
	return u, nil
}

// Root returns the root node of the syntax tree.
func (u *Unit) Root() *sitter.Node { return u.tree.RootNode() }

// Close releases the syntax tree.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// Declared returns the types, callables and fields declared in the unit,
// in declaration order.
func (u *Unit) Declared() []symbol.Symbol { return u.declared }

func (u *Unit) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(u.Src)
}

// readHeader collects the package name and imports.
func (u *Unit) readHeader() {
	root := u.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := firstNamed(child, "scoped_identifier", "identifier"); name != nil {
				u.Package = u.text(name)
			}
		case "import_declaration":
			name := firstNamed(child, "scoped_identifier", "identifier")
			if name == nil {
				continue
			}
			im := Import{Path: u.text(name)}
			for j := 0; j < int(child.ChildCount()); j++ {
				switch child.Child(j).Type() {
				case "static":
					im.Static = true
				case "asterisk":
					im.OnDemand = true
				}
			}
			u.Imports = append(u.Imports, im)
		}
	}
}

// nodeKey identifies a node within one tree. Node values are not stable
// across cursor and child accessors, so bindings are keyed by range and type.
type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	if n == nil {
		return nodeKey{}
	}
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// firstNamed returns the first named child of n with one of the given types.
func firstNamed(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if isComment(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// dottedName joins the identifier segments of a possibly scoped, possibly
// generic name, dropping type arguments and annotations.
func dottedName(n *sitter.Node, src []byte) string {
	var parts []string
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier", "type_identifier":
			parts = append(parts, n.Content(src))
		case "scoped_identifier", "scoped_type_identifier", "generic_type":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				collect(n.NamedChild(i))
			}
		}
	}
	collect(n)
	return strings.Join(parts, ".")
}

// nameLeaves returns the identifier leaves of a scoped name in order.
func nameLeaves(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	if n == nil {
		return nil
	}
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier", "type_identifier":
			out = append(out, n)
		case "scoped_identifier", "scoped_type_identifier", "generic_type":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				collect(n.NamedChild(i))
			}
		}
	}
	collect(n)
	return out
}
