package marker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/srcview/internal/source"
	"github.com/jward/srcview/internal/stream"
	"github.com/jward/srcview/internal/symbol"
)

// parseJava parses src with the Java grammar.
func parseJava(t *testing.T, src string) *sitter.Node {
	t.Helper()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

// byteBinder hands out occurrences by node type and start byte.
type byteBinder map[string][]Occurrence

func key(typ string, start uint32) string {
	return fmt.Sprintf("%s@%d", typ, start)
}

func (b byteBinder) on(typ string, start uint32, occ ...Occurrence) byteBinder {
	b[key(typ, start)] = append(b[key(typ, start)], occ...)
	return b
}

func (b byteBinder) Occurrences(n *sitter.Node) []Occurrence {
	return b[key(n.Type(), n.StartByte())]
}

// mapLinks resolves hrefs from a fixed table.
type mapLinks map[symbol.Symbol]string

func (m mapLinks) Href(s symbol.Symbol) (string, error) { return m[s], nil }

const sampleSource = "class A { static void m() { m(); } }"

func sampleSymbols() (*symbol.Type, *symbol.Callable) {
	a := symbol.NewType(symbol.KindClass, "", nil, "A", 0, false)
	m := symbol.NewCallable(symbol.KindMethod, a, "m", symbol.Static, true)
	return a, m
}

func encodeUnit(t *testing.T, res *Result) string {
	t.Helper()
	u, err := res.Unit()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, stream.EncodeUnit(&buf, u))
	return buf.String()
}

func TestBuild_DeclarationsAndReferences(t *testing.T) {
	t.Parallel()
	root := parseJava(t, sampleSource)
	a, m := sampleSymbols()

	binder := byteBinder{}.
		on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}).
		on("identifier", 22, Occurrence{Role: Declaration, Symbol: m}).
		on("identifier", 28, Occurrence{Role: Reference, Symbol: m})
	links := mapLinks{a: "#A", m: "#A~m()"}

	res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), links, binder).Build(root)
	require.NoError(t, err)

	assert.Equal(t, []Marker{
		{Start: 6, End: 7, Href: "#A", Class: "d cl", AnchorID: "A"},
		{Start: 22, End: 23, Href: "#A~m()", Class: "d st dp me", AnchorID: "A~m()"},
		{Start: 28, End: 29, Href: "#A~m()", Class: "r st dp me"},
	}, res.Markers)

	assert.Equal(t,
		`typeTable([["A","cl"]]);methodTable([[0,"m",[],"st dp me"]]);`+
			`markers([[6,7,"#A","d cl","A",""],[22,23,"#A~m()","d st dp me","A~m()",""],[28,29,"#A~m()","r st dp me","",""]]);`,
		encodeUnit(t, res))
}

func TestBuild_Titles(t *testing.T) {
	t.Parallel()
	root := parseJava(t, sampleSource)
	a, m := sampleSymbols()

	binder := byteBinder{}.
		on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}).
		on("identifier", 28, Occurrence{Role: Reference, Symbol: m})
	links := mapLinks{a: "#A", m: "#A~m()"}

	res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), links, binder, WithTitles(true)).Build(root)
	require.NoError(t, err)
	require.Len(t, res.Markers, 2)
	assert.Empty(t, res.Markers[0].Title, "declarations carry no title")
	assert.Equal(t, "A.m()", res.Markers[1].Title)
}

func TestBuild_UnresolvedUnit(t *testing.T) {
	t.Parallel()
	root := parseJava(t, sampleSource)

	res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), mapLinks{}, byteBinder{}).Build(root)
	require.NoError(t, err)
	assert.Empty(t, res.Markers)
	assert.Equal(t, `typeTable([]);methodTable([]);markers([]);`, encodeUnit(t, res))
}

func TestBuild_ExternalTargets(t *testing.T) {
	t.Parallel()
	root := parseJava(t, sampleSource)
	a, m := sampleSymbols()

	// A declaration without a target is still styled but not addressable.
	binder := byteBinder{}.
		on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}).
		on("identifier", 28, Occurrence{Role: Reference, Symbol: m})
	links := mapLinks{m: "other/A.html#A~m()"}

	res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), links, binder).Build(root)
	require.NoError(t, err)
	assert.Equal(t, []Marker{
		{Start: 6, End: 7, Class: "d cl"},
		{Start: 28, End: 29, Href: "other/A.html#A~m()", Class: "r st dp me"},
	}, res.Markers)
}

func TestBuild_TokenOccurrence(t *testing.T) {
	t.Parallel()
	src := "class A {}\n// see A\n"
	root := parseJava(t, src)
	a := symbol.NewType(symbol.KindClass, "", nil, "A", 0, false)

	binder := tokenBinder{
		decl:  Occurrence{Role: Declaration, Symbol: a},
		token: Occurrence{Role: Reference, Symbol: a, Token: &Token{Line: 2, Column: 8, Text: "A"}},
	}
	res, err := NewBuilder(source.NewPositions([]byte(src)), mapLinks{a: "#A"}, binder).Build(root)
	require.NoError(t, err)
	assert.Equal(t, []Marker{
		{Start: 6, End: 7, Href: "#A", Class: "d cl", AnchorID: "A"},
		{Start: 18, End: 19, Href: "#A", Class: "r cl"},
	}, res.Markers)
}

type tokenBinder struct {
	decl, token Occurrence
}

func (b tokenBinder) Occurrences(n *sitter.Node) []Occurrence {
	switch {
	case n.Type() == "identifier" && n.StartByte() == 6:
		return []Occurrence{b.decl}
	case strings.HasSuffix(n.Type(), "comment"):
		return []Occurrence{b.token}
	}
	return nil
}

func TestBuild_SameSpanKeepsFirst(t *testing.T) {
	t.Parallel()
	root := parseJava(t, sampleSource)
	a, m := sampleSymbols()

	binder := byteBinder{}.
		on("identifier", 28,
			Occurrence{Role: Reference, Symbol: m},
			Occurrence{Role: Reference, Symbol: a})
	res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), mapLinks{}, binder).Build(root)
	require.NoError(t, err)
	require.Len(t, res.Markers, 1)
	assert.Equal(t, "r st dp me", res.Markers[0].Class)
	assert.Equal(t, 1, res.Interner.Types().Len(), "only the owner of m is tabled")
	assert.Equal(t, 1, res.Interner.Callables().Len())
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	a, m := sampleSymbols()
	unknown := symbol.NewType(symbol.KindUnknown, "", nil, "U", 0, false)
	b := symbol.NewType(symbol.KindClass, "", nil, "B", 0, false)

	tests := []struct {
		name   string
		binder Binder
		links  mapLinks
		want   error
	}{
		{
			name:   "malformed anchor",
			binder: byteBinder{}.on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}),
			links:  mapLinks{a: "A.html#A"},
			want:   ErrMalformedAnchor,
		},
		{
			name: "duplicate anchor",
			binder: byteBinder{}.
				on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}).
				on("identifier", 22, Occurrence{Role: Declaration, Symbol: b}),
			links: mapLinks{a: "#A", b: "#A"},
			want:  ErrDuplicateAnchor,
		},
		{
			name: "overlap",
			binder: byteBinder{}.
				on("class_declaration", 0, Occurrence{Role: Reference, Symbol: a}).
				on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}),
			links: mapLinks{a: "#A"},
			want:  ErrOverlap,
		},
		{
			name: "empty span",
			binder: byteBinder{}.on("identifier", 28,
				Occurrence{Role: Reference, Symbol: m, Token: &Token{Line: 1, Column: 29}}),
			want: ErrEmptySpan,
		},
		{
			name:   "unknown kind",
			binder: byteBinder{}.on("identifier", 6, Occurrence{Role: Reference, Symbol: unknown}),
			want:   ErrUnknownKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := parseJava(t, sampleSource)
			_, err := NewBuilder(source.NewPositions([]byte(sampleSource)), tt.links, tt.binder).Build(root)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()
	a, m := sampleSymbols()
	binder := byteBinder{}.
		on("identifier", 6, Occurrence{Role: Declaration, Symbol: a}).
		on("identifier", 22, Occurrence{Role: Declaration, Symbol: m}).
		on("identifier", 28, Occurrence{Role: Reference, Symbol: m})
	links := mapLinks{a: "#A", m: "#A~m()"}

	var outputs []string
	for i := 0; i < 3; i++ {
		res, err := NewBuilder(source.NewPositions([]byte(sampleSource)), links, binder).Build(parseJava(t, sampleSource))
		require.NoError(t, err)
		outputs = append(outputs, encodeUnit(t, res))
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestMarkerValue(t *testing.T) {
	t.Parallel()
	m := Marker{Start: 1, End: 4, Href: "#x", Class: "d fi", AnchorID: "x"}
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	w.Value(m.Value())
	require.NoError(t, w.Flush())
	assert.Equal(t, `[1,4,"#x","d fi","x",""]`, buf.String())
}

func TestTokenLen(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, Token{}.Len())
	assert.Equal(t, 3, Token{Text: "abc"}.Len())
	assert.Equal(t, 3, Token{Text: "é𝄞"}.Len())
}
