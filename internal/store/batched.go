package store

import "sync"

// BatchedStore buffers declaration inserts in memory using fake (negative)
// IDs, so parallel workers can name anchors without contending for the
// database. CommitBatch writes the buffer in one transaction.
//
// Thread safety: the mutex protects fake ID allocation and the buffer.
type BatchedStore struct {
	mu sync.Mutex

	Declarations []Declaration

	nextFakeID int64 // starts at -1, decrements
}

// NewBatchedStore creates an empty BatchedStore.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{nextFakeID: -1}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertDeclaration(d *Declaration) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	d.ID = fakeID
	b.Declarations = append(b.Declarations, *d)
	return fakeID, nil
}

// Len returns the number of buffered declarations.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Declarations)
}

// DropUnit discards the buffered declarations of one unit and returns how
// many were dropped.
func (b *BatchedStore) DropUnit(unitID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.Declarations[:0]
	for _, d := range b.Declarations {
		if d.UnitID != unitID {
			kept = append(kept, d)
		}
	}
	dropped := len(b.Declarations) - len(kept)
	b.Declarations = kept
	return dropped
}
