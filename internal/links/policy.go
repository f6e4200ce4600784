// Package links decides where markers point: the anchor a symbol is
// declared under, and the href a reference to it carries from a given unit.
package links

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/risor-io/risor/object"

	"github.com/jward/srcview/internal/runtime"
	"github.com/jward/srcview/internal/symbol"
)

// ErrNoAnchor is returned by a script policy whose result is not a
// non-empty string.
var ErrNoAnchor = errors.New("anchor script returned no anchor")

// Policy names the anchor of a symbol. Anchors of types, callables and
// fields must be unique across the project; variable anchors only within
// their unit.
type Policy interface {
	Anchor(ctx context.Context, s symbol.Symbol) (string, error)
}

// DefaultPolicy names types by qualified name, members as Owner~name and
// callables with their erased parameter list, e.g. "com.acme.A~m(int)".
// Variables are named by their declaring offset, e.g. "count@120".
type DefaultPolicy struct{}

func (DefaultPolicy) Anchor(_ context.Context, s symbol.Symbol) (string, error) {
	return defaultAnchor(s), nil
}

func defaultAnchor(s symbol.Symbol) string {
	switch v := s.(type) {
	case *symbol.Type:
		return v.QualifiedName()
	case *symbol.Callable:
		return v.Owner().QualifiedName() + "~" + v.Name() + v.ParamList()
	case *symbol.Field:
		return v.Owner().QualifiedName() + "~" + v.Name()
	case *symbol.Variable:
		return v.Name() + "@" + strconv.Itoa(v.Offset)
	}
	return ""
}

// ScriptPolicy names anchors with a Risor script. The script sees the
// symbol as the "symbol" global (see runtime.SymbolObject) and the
// DefaultPolicy anchor as "default_anchor". It must evaluate to a
// non-empty string. Results are cached per symbol.
type ScriptPolicy struct {
	script *runtime.Script

	mu    sync.Mutex
	cache map[symbol.Symbol]string
}

// NewScriptPolicy wraps a loaded script.
func NewScriptPolicy(script *runtime.Script) *ScriptPolicy {
	return &ScriptPolicy{script: script, cache: make(map[symbol.Symbol]string)}
}

func (p *ScriptPolicy) Anchor(ctx context.Context, s symbol.Symbol) (string, error) {
	p.mu.Lock()
	anchor, ok := p.cache[s]
	p.mu.Unlock()
	if ok {
		return anchor, nil
	}

	res, err := p.script.Eval(ctx, map[string]any{
		"symbol":         runtime.SymbolObject(s),
		"default_anchor": object.NewString(defaultAnchor(s)),
	})
	if err != nil {
		return "", fmt.Errorf("links: anchor for %s: %w", symbol.Display(s), err)
	}
	str, ok := res.(*object.String)
	if !ok || strings.TrimSpace(str.Value()) == "" {
		return "", fmt.Errorf("links: anchor for %s: %w", symbol.Display(s), ErrNoAnchor)
	}
	anchor = str.Value()

	p.mu.Lock()
	p.cache[s] = anchor
	p.mu.Unlock()
	return anchor, nil
}
