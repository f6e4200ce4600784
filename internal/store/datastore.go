package store

// DataStore is the declaration index as seen by the render phase. Store
// implements it; BatchedStore buffers InsertDeclaration for CommitBatch.
type DataStore interface {
	InsertDeclaration(d *Declaration) (int64, error)

	// UnitForAnchor answers which unit declares anchor, nil when none.
	UnitForAnchor(anchor string) (*Unit, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
