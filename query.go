package srcview

import (
	"fmt"
	"strings"

	"github.com/jward/srcview/internal/links"
	"github.com/jward/srcview/internal/store"
)

// QueryBuilder answers questions about the declaration index: which units
// were rendered and where each anchor lives.
type QueryBuilder struct {
	store *store.Store
}

// Location is where an anchored declaration is rendered.
type Location struct {
	// Path is the declaring unit's path.
	Path string
	// Anchor is the declaration's anchor id.
	Anchor string
	// Href is the page-relative link to the declaration from the output
	// root, e.g. "com/acme/A.html#com.acme.A".
	Href string
}

// Pagination controls offset+limit paging on search results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// PagedResult wraps a page of results with the total count before paging.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int
}

// DeclarationResult is a declaration with the unit it renders in.
type DeclarationResult struct {
	store.Declaration
	Path string // declaring unit's path
	Href string // see Location.Href
}

// DeclarationFilter narrows a search.
type DeclarationFilter struct {
	Kinds   []string // match any of these kinds, e.g. "class", "method"
	Package *string  // exact package of the declaring unit
}

// Units returns every indexed unit ordered by path.
func (q *QueryBuilder) Units() ([]*Unit, error) {
	return q.store.Units()
}

// PackageUnits returns the indexed units of one package ordered by path.
// The default package is "".
func (q *QueryBuilder) PackageUnits(pkg string) ([]*Unit, error) {
	return q.store.UnitsByPackage(pkg)
}

// Declarations returns the declarations of the unit at path in source
// order, or nil when the unit is not indexed.
func (q *QueryBuilder) Declarations(path string) ([]*Declaration, error) {
	u, err := q.store.UnitByPath(path)
	if err != nil {
		return nil, fmt.Errorf("declarations: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return q.store.DeclarationsByUnit(u.ID)
}

// Lookup returns where anchor is declared, or nil when no unit declares it.
func (q *QueryBuilder) Lookup(anchor string) (*Location, error) {
	u, err := q.store.UnitForAnchor(anchor)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	loc := location(u.Path, anchor)
	return &loc, nil
}

// Search performs glob-style search on declaration names. '*' is the
// wildcard; an empty pattern matches everything. Results are ordered by
// anchor.
func (q *QueryBuilder) Search(pattern string, filter DeclarationFilter, page Pagination) (*PagedResult[DeclarationResult], error) {
	page = page.normalize()

	var where []string
	var args []any
	if pattern != "" && pattern != "*" {
		where = append(where, "d.name LIKE ? ESCAPE '\\'")
		args = append(args, strings.ReplaceAll(escapeLike(pattern), "*", "%"))
	}
	if len(filter.Kinds) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Kinds)-1) + "?"
		where = append(where, "d.kind IN ("+placeholders+")")
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}
	if filter.Package != nil {
		where = append(where, "u.package = ?")
		args = append(args, *filter.Package)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	from := "FROM declarations d JOIN units u ON u.id = d.unit_id " + whereClause

	var total int
	if err := q.store.DB().QueryRow("SELECT COUNT(*) "+from, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("search: count: %w", err)
	}

	rows, err := q.store.DB().Query(
		"SELECT d.id, d.unit_id, d.anchor, d.name, d.kind, d.display, u.path "+from+
			" ORDER BY d.anchor LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	result := &PagedResult[DeclarationResult]{TotalCount: total}
	for rows.Next() {
		var r DeclarationResult
		if err := rows.Scan(&r.ID, &r.UnitID, &r.Anchor, &r.Name, &r.Kind, &r.Display, &r.Path); err != nil {
			return nil, fmt.Errorf("search: scan: %w", err)
		}
		r.Href = location(r.Path, r.Anchor).Href
		result.Items = append(result.Items, r)
	}
	return result, rows.Err()
}

func location(path, anchor string) Location {
	return Location{Path: path, Anchor: anchor, Href: links.PagePath(path) + "#" + anchor}
}

// escapeLike escapes SQL LIKE metacharacters so they match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
