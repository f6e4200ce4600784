package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/srcview/internal/symbol"
)

// SymbolObject converts a symbol into the map scripts receive:
//
//	kind, code, name, qualified_name, owner, params, static, deprecated
//
// owner is the qualified name of the declaring type ("" for types) and
// params lists the erased parameter names of a callable.
func SymbolObject(s symbol.Symbol) *object.Map {
	m := map[string]object.Object{
		"kind":           object.NewString(s.Kind().String()),
		"code":           object.NewString(s.Kind().Code()),
		"name":           object.NewString(s.Name()),
		"qualified_name": object.NewString(s.Name()),
		"owner":          object.NewString(""),
		"params":         object.NewList(nil),
		"static":         object.NewBool(s.Modifiers().Has(symbol.Static)),
		"deprecated":     object.NewBool(s.Deprecated()),
	}
	switch v := s.(type) {
	case *symbol.Type:
		m["qualified_name"] = object.NewString(v.QualifiedName())
		if v.Enclosing() != nil {
			m["owner"] = object.NewString(v.Enclosing().QualifiedName())
		}
	case *symbol.Callable:
		m["owner"] = object.NewString(v.Owner().QualifiedName())
		m["qualified_name"] = object.NewString(v.Owner().QualifiedName() + "." + v.Name())
		params := make([]object.Object, len(v.Params))
		for i, p := range v.Params {
			params[i] = object.NewString(p.String())
		}
		m["params"] = object.NewList(params)
	case *symbol.Field:
		m["owner"] = object.NewString(v.Owner().QualifiedName())
		m["qualified_name"] = object.NewString(v.Owner().QualifiedName() + "." + v.Name())
	case *symbol.Variable:
		m["offset"] = object.NewInt(int64(v.Offset))
	}
	return object.NewMap(m)
}

// makeSlugFn creates the "slug" host function.
//
// slug(text) → text with every character outside [A-Za-z0-9._~$()-]
// replaced by '_', safe to use inside a URL fragment.
func makeSlugFn() *object.Builtin {
	return object.NewBuiltin("slug", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("slug", 1, len(args))
		}
		s, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("slug: argument must be a string, got %s", args[0].Type())
		}
		return object.NewString(slug(s.Value()))
	})
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("._~$()-", r):
			return r
		}
		return '_'
	}, s)
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	prefix string
	out    io.Writer
}

func (l *logObject) Info(msg string) {
	fmt.Fprintf(l.out, "[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Fprintf(l.out, "[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Fprintf(l.out, "[%s] ERROR: %s\n", l.prefix, msg)
}
