package javasrc

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/srcview/internal/marker"
	"github.com/jward/srcview/internal/symbol"
)

// docTag matches {@link ref}, {@linkplain ref} and @see ref, capturing the
// reference: an optional type name, then an optional #member with an
// optional argument list.
var docTag = regexp.MustCompile(`(?:\{@link(?:plain)?\s+|@see\s+)([\w.$]*(?:#[\w$]+(?:\([^)]*\))?)?)`)

// docRef is one reference in a doc comment. Offsets are bytes from the
// start of the comment.
type docRef struct {
	typeName   string
	typeOffset int
	member     string
	memberOff  int
	args       int // -1 when no argument list is given
}

func parseDocRefs(comment string) []docRef {
	var out []docRef
	for _, m := range docTag.FindAllStringSubmatchIndex(comment, -1) {
		start, end := m[2], m[3]
		if start == end {
			continue
		}
		ref := comment[start:end]
		r := docRef{typeOffset: start, args: -1}
		typeName, member, hasMember := strings.Cut(ref, "#")
		r.typeName = typeName
		if hasMember {
			r.memberOff = start + len(typeName) + 1
			name, args, hasArgs := strings.Cut(member, "(")
			r.member = name
			if hasArgs {
				r.args = countArgs(strings.TrimSuffix(args, ")"))
			}
		}
		out = append(out, r)
	}
	return out
}

func countArgs(list string) int {
	if strings.TrimSpace(list) == "" {
		return 0
	}
	return strings.Count(list, ",") + 1
}

// javadoc binds the references inside a doc comment. Members without a
// type name resolve against the documented type, or the enclosing one.
func (b *binder) javadoc(n *sitter.Node) {
	text := b.text(n)
	if !strings.HasPrefix(text, "/**") {
		return
	}
	documented := b.owner()
	for next := n.NextNamedSibling(); next != nil; next = next.NextNamedSibling() {
		if isComment(next) {
			continue
		}
		if t, ok := b.unit.decls[keyOf(next.ChildByFieldName("name"))].(*symbol.Type); ok {
			documented = t
		}
		break
	}

	base := int(n.StartByte())
	for _, ref := range parseDocRefs(text) {
		target := documented
		if ref.typeName != "" {
			target = b.env().qualified(ref.typeName)
			if target == nil {
				continue
			}
			b.token(n, base+ref.typeOffset, ref.typeName, target)
		}
		if ref.member == "" || target == nil {
			continue
		}
		if s := docMember(target, ref.member, ref.args); s != nil {
			b.token(n, base+ref.memberOff, ref.member, s)
		}
	}
}

func (b *binder) token(comment *sitter.Node, byteOff int, text string, s symbol.Symbol) {
	line, col := b.unit.Positions.Point(byteOff)
	b.out.addToken(comment, marker.Token{Line: line, Column: col, Text: text}, s)
}

// docMember resolves a #member reference: a constructor when it names the
// type, a method by arity when arguments are given, otherwise a field or
// the unique method of that name.
func docMember(t *symbol.Type, name string, args int) symbol.Symbol {
	if name == t.Name() {
		if c := findConstructor(t, args); c != nil {
			return c
		}
	}
	if args < 0 {
		if f := findField(t, name); f != nil {
			return f
		}
	}
	if m := findMethod(t, name, args); m != nil {
		return m
	}
	return nil
}
