package links

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jward/srcview/internal/marker"
	"github.com/jward/srcview/internal/store"
	"github.com/jward/srcview/internal/symbol"
)

// PageExt is the extension of the rendered page of a unit.
const PageExt = ".html"

// Resolver computes the hrefs of one unit. Symbols declared in the unit,
// and every variable, link to "#anchor"; symbols another indexed unit
// declares link to that unit's page; everything else is unlinked.
//
// A Resolver is used by a single goroutine.
type Resolver struct {
	// ctx bounds script evaluation; marker.LinkResolver carries no context.
	ctx      context.Context
	policy   Policy
	index    store.DataStore
	unitPath string
	local    map[symbol.Symbol]bool
	hrefs    map[symbol.Symbol]string
}

var _ marker.LinkResolver = (*Resolver)(nil)

// NewResolver creates the resolver of the unit at unitPath (slash
// separated, relative to the project root) declaring the given symbols.
// A nil index resolves only in-unit links.
func NewResolver(ctx context.Context, policy Policy, index store.DataStore, unitPath string, declared []symbol.Symbol) *Resolver {
	local := make(map[symbol.Symbol]bool, len(declared))
	for _, s := range declared {
		local[s] = true
	}
	return &Resolver{
		ctx:      ctx,
		policy:   policy,
		index:    index,
		unitPath: unitPath,
		local:    local,
		hrefs:    make(map[symbol.Symbol]string),
	}
}

// Href implements marker.LinkResolver.
func (r *Resolver) Href(s symbol.Symbol) (string, error) {
	if href, ok := r.hrefs[s]; ok {
		return href, nil
	}
	href, err := r.resolve(s)
	if err != nil {
		return "", err
	}
	r.hrefs[s] = href
	return href, nil
}

func (r *Resolver) resolve(s symbol.Symbol) (string, error) {
	anchor, err := r.policy.Anchor(r.ctx, s)
	if err != nil {
		return "", err
	}
	if anchor == "" {
		return "", nil
	}
	if _, isVar := s.(*symbol.Variable); isVar || r.local[s] {
		return string(marker.AnchorPrefix) + anchor, nil
	}
	if r.index == nil {
		return "", nil
	}
	u, err := r.index.UnitForAnchor(anchor)
	if err != nil {
		return "", fmt.Errorf("links: resolving %s: %w", anchor, err)
	}
	if u == nil {
		return "", nil
	}
	if u.Path == r.unitPath {
		return string(marker.AnchorPrefix) + anchor, nil
	}
	return RelativePage(r.unitPath, u.Path) + string(marker.AnchorPrefix) + anchor, nil
}

// PagePath returns the page of the unit at unitPath, e.g.
// "com/acme/A.java" → "com/acme/A.html".
func PagePath(unitPath string) string {
	return strings.TrimSuffix(unitPath, path.Ext(unitPath)) + PageExt
}

// RelativePage returns the page of the unit at to, relative to the
// directory of the unit at from. Both paths are slash separated.
func RelativePage(from, to string) string {
	fromDir := strings.Split(path.Dir(from), "/")
	if fromDir[0] == "." {
		fromDir = nil
	}
	target := strings.Split(PagePath(to), "/")

	common := 0
	for common < len(fromDir) && common < len(target)-1 && fromDir[common] == target[common] {
		common++
	}
	parts := make([]string, 0, len(fromDir)-common+len(target)-common)
	for range fromDir[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)
	return strings.Join(parts, "/")
}
