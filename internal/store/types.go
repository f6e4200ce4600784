package store

import "time"

// Unit is one indexed compilation unit.
type Unit struct {
	ID          int64
	Path        string
	Package     string
	LastIndexed time.Time
}

// Declaration is a linkable symbol declared in a unit, keyed by the anchor
// the link policy gave it.
type Declaration struct {
	ID     int64
	UnitID int64
	Anchor string
	Name   string
	Kind   string
	// Display is the human-readable signature shown in listings.
	Display string
}
