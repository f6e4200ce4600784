// Package store is the SQLite declaration index: which unit declares
// each anchor, so a unit can link into the others.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the units and declarations tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS units (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  package         TEXT NOT NULL DEFAULT '',
  last_indexed    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS declarations (
  id              INTEGER PRIMARY KEY,
  unit_id         INTEGER NOT NULL REFERENCES units(id),
  anchor          TEXT NOT NULL UNIQUE,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  display         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_units_package ON units(package);
CREATE INDEX IF NOT EXISTS idx_declarations_unit ON declarations(unit_id);
CREATE INDEX IF NOT EXISTS idx_declarations_name ON declarations(name);
`

// DeleteUnitData transactionally removes a unit and its declarations.
func (s *Store) DeleteUnitData(unitID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM declarations WHERE unit_id = ?", unitID); err != nil {
		return fmt.Errorf("delete declarations: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM units WHERE id = ?", unitID); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return tx.Commit()
}

// PruneUnits removes every unit whose path is not in keep, with its
// declarations, and returns the number of units removed.
func (s *Store) PruneUnits(keep []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("prune units: begin: %w", err)
	}
	defer tx.Rollback()

	where := "1 = 1"
	args := stringsToArgs(keep)
	if len(keep) > 0 {
		where = "path NOT IN (" + placeholderList(len(keep)) + ")"
	}
	if _, err := tx.Exec(
		"DELETE FROM declarations WHERE unit_id IN (SELECT id FROM units WHERE "+where+")", args...,
	); err != nil {
		return 0, fmt.Errorf("prune units: declarations: %w", err)
	}
	res, err := tx.Exec("DELETE FROM units WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("prune units: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune units: rows affected: %w", err)
	}
	return int(n), tx.Commit()
}
