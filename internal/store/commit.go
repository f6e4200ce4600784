package store

import "fmt"

// CommitBatch inserts all buffered declarations into SQLite within a single
// transaction, replacing their fake IDs with the real ones. Insert order is
// buffer order, so a later declaration of the same anchor wins.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for i := range batch.Declarations {
		d := &batch.Declarations[i]
		if d.UnitID <= 0 {
			return fmt.Errorf("commit batch: declaration %q has no unit", d.Anchor)
		}
		if _, err := insertDeclaration(tx, d); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}

	batch.Declarations = nil
	batch.nextFakeID = -1
	return nil
}
