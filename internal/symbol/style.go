package symbol

import "strings"

// Role seeds prepended to marker style classes.
const (
	SeedDeclaration = "d"
	SeedReference   = "r"
)

// StyleClass derives the style token for an element: an optional "st"
// (static), an optional "dp" (deprecated), then the kind code, joined by
// single spaces.
func StyleClass(kind Kind, mods Modifiers, deprecated bool) string {
	parts := make([]string, 0, 3)
	if mods.Has(Static) {
		parts = append(parts, "st")
	}
	if deprecated {
		parts = append(parts, "dp")
	}
	if code := kind.Code(); code != "" {
		parts = append(parts, code)
	}
	return strings.Join(parts, " ")
}

// Classify is StyleClass applied to a symbol.
func Classify(s Symbol) string {
	return StyleClass(s.Kind(), s.Modifiers(), s.Deprecated())
}

// Decorate prefixes the symbol's style class with a role seed.
func Decorate(seed string, s Symbol) string {
	return seed + " " + Classify(s)
}
