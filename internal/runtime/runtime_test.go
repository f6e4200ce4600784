package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/srcview/internal/symbol"
)

func evalString(t *testing.T, s *Script, globals map[string]any) string {
	t.Helper()
	res, err := s.Eval(context.Background(), globals)
	require.NoError(t, err)
	str, ok := res.(*object.String)
	require.True(t, ok, "expected string result, got %s", res.Type())
	return str.Value()
}

func sampleSymbols() (*symbol.Type, *symbol.Callable, *symbol.Field) {
	outer := symbol.NewType(symbol.KindClass, "com.acme", nil, "Greeter", symbol.Public, false)
	m := symbol.NewCallable(symbol.KindMethod, outer, "greet", symbol.Public|symbol.Static, true)
	m.Params = []symbol.Param{{Type: outer}, {Text: "int"}}
	f := symbol.NewField(symbol.KindField, outer, "count", symbol.Private, false)
	return outer, m, f
}

// --- Evaluation tests ---

func TestEval_ReturnsLastExpression(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	got := evalString(t, rt.Inline(`
x := "a" + "b"
x + "c"
`), nil)
	assert.Equal(t, "abc", got)
}

func TestEval_ExtraGlobals(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	got := evalString(t, rt.Inline(`prefix + "!"`), map[string]any{
		"prefix": object.NewString("hi"),
	})
	assert.Equal(t, "hi!", got)
}

func TestEval_ScriptError(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	_, err := rt.Inline(`error("bad anchor")`).Eval(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<inline>")
}

func TestEval_CompileError(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	_, err := rt.Inline(`func (`).Eval(context.Background(), nil)
	require.Error(t, err)
}

func TestEval_ScriptIsReusable(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	s := rt.Inline(`n * 2`)
	for i := int64(1); i <= 3; i++ {
		res, err := s.Eval(context.Background(), map[string]any{"n": object.NewInt(i)})
		require.NoError(t, err)
		assert.Equal(t, object.NewInt(i*2), res)
	}
}

// --- Host function tests ---

func TestSymbolObject_Type(t *testing.T) {
	t.Parallel()

	typ, _, _ := sampleSymbols()
	nested := symbol.NewType(symbol.KindEnum, "", typ, "Mode", symbol.Static, false)

	obj := SymbolObject(nested)
	assert.Equal(t, object.NewString("enum"), obj.Get("kind"))
	assert.Equal(t, object.NewString("en"), obj.Get("code"))
	assert.Equal(t, object.NewString("Mode"), obj.Get("name"))
	assert.Equal(t, object.NewString("com.acme.Greeter.Mode"), obj.Get("qualified_name"))
	assert.Equal(t, object.NewString("com.acme.Greeter"), obj.Get("owner"))
	assert.Equal(t, object.True, obj.Get("static"))
	assert.Equal(t, object.False, obj.Get("deprecated"))
}

func TestSymbolObject_Callable(t *testing.T) {
	t.Parallel()

	_, m, _ := sampleSymbols()
	rt := NewRuntime("")
	got := evalString(t, rt.Inline(`
s := symbol
s["owner"] + "~" + s["name"] + "(" + strings.join(s["params"], ",") + ")"
`), map[string]any{"symbol": SymbolObject(m)})
	assert.Equal(t, "com.acme.Greeter~greet(com.acme.Greeter,int)", got)
}

func TestSymbolObject_Field(t *testing.T) {
	t.Parallel()

	_, _, f := sampleSymbols()
	obj := SymbolObject(f)
	assert.Equal(t, object.NewString("com.acme.Greeter.count"), obj.Get("qualified_name"))
	assert.Equal(t, object.NewString("fi"), obj.Get("code"))
	assert.Equal(t, object.False, obj.Get("static"))
}

func TestSymbolObject_Variable(t *testing.T) {
	t.Parallel()

	v := symbol.NewVariable(symbol.KindLocalVariable, "total", 42, 0, false)
	obj := SymbolObject(v)
	assert.Equal(t, object.NewString("lv"), obj.Get("code"))
	assert.Equal(t, object.NewInt(42), obj.Get("offset"))
}

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"com.acme.A~m(int)", "com.acme.A~m(int)"},
		{"plain", "plain"},
		{"a b/c#d", "a_b_c_d"},
		{"Outer$Inner", "Outer$Inner"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slug(tt.in))
		})
	}
}

func TestSlug_HostFunction(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("")
	got := evalString(t, rt.Inline(`slug("a b")`), nil)
	assert.Equal(t, "a_b", got)

	_, err := rt.Inline(`slug(1)`).Eval(context.Background(), nil)
	require.Error(t, err)
}

func TestLog_WritesToConfiguredWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rt := NewRuntime("", WithLogWriter(&buf))
	_, err := rt.Inline(`
log.Info("one")
log.Warn("two")
log.Error("three")
`).Eval(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "[srcview] INFO: one\n[srcview] WARN: two\n[srcview] ERROR: three\n", buf.String())
}

// --- Script loading tests ---

func TestLoadScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anchors.risor"), []byte(`"x"`), 0644))

	rt := NewRuntime(dir)
	src, err := rt.LoadScript("anchors.risor")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, src)

	abs, err := rt.LoadScript(filepath.Join(dir, "anchors.risor"))
	require.NoError(t, err)
	assert.Equal(t, src, abs)
}

func TestLoadScript_MissingFile(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(t.TempDir())
	_, err := rt.Load("nope.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading script")
}

func TestLoadScript_FromFS(t *testing.T) {
	t.Parallel()

	mapFS := fstest.MapFS{
		"links/anchors.risor": &fstest.MapFile{Data: []byte(`symbol["name"]`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	s, err := rt.Load("/links/anchors.risor")
	require.NoError(t, err)
	_, m, _ := sampleSymbols()
	assert.Equal(t, "greet", evalString(t, s, map[string]any{"symbol": SymbolObject(m)}))

	_, err = rt.Load("links/missing.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

// --- Importer wiring tests ---

func TestImport_FSImporter(t *testing.T) {
	t.Parallel()

	// FSImporter resolves "naming" by trying name + ".risor".
	mapFS := fstest.MapFS{
		"naming.risor": &fstest.MapFile{Data: []byte(`
func member(owner, name) {
	return owner + "~" + name
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got := evalString(t, rt.Inline(`
import naming
naming.member("A", "m")
`), nil)
	assert.Equal(t, "A~m", got)
}

func TestImport_LocalImporter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "naming.risor"), []byte(`
func wrap(x) {
	return "[" + x + "]"
}
`), 0644))

	rt := NewRuntime(dir)
	got := evalString(t, rt.Inline(`
import naming
naming.wrap("a")
`), nil)
	assert.Equal(t, "[a]", got)
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	t.Parallel()

	// Imported modules compile against the host globals, so slug must resolve.
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func clean(x) {
	return slug(x)
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got := evalString(t, rt.Inline(`
import helper
helper.clean("a b")
`), nil)
	assert.Equal(t, "a_b", got)
}

func TestNewRuntime_Defaults(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("/some/dir")
	require.NotNil(t, rt)
	assert.Nil(t, rt.fsys)
	assert.Equal(t, "/some/dir", rt.scriptsDir)
	assert.Equal(t, os.Stderr, rt.logOut)
}
