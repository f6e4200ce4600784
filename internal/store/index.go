package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Unit operations ---

// InsertUnit records u, or refreshes the existing row for u.Path. A
// refreshed unit loses the declarations of its previous indexing.
func (s *Store) InsertUnit(u *Unit) (int64, error) {
	if u.LastIndexed.IsZero() {
		u.LastIndexed = time.Now().UTC().Truncate(time.Second)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("insert unit: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO units (path, package, last_indexed) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET package = excluded.package, last_indexed = excluded.last_indexed`,
		u.Path, u.Package, u.LastIndexed,
	); err != nil {
		return 0, fmt.Errorf("insert unit: %w", err)
	}
	var id int64
	if err := tx.QueryRow("SELECT id FROM units WHERE path = ?", u.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert unit: read id: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM declarations WHERE unit_id = ?", id); err != nil {
		return 0, fmt.Errorf("insert unit: clear declarations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert unit: commit: %w", err)
	}
	u.ID = id
	return id, nil
}

const unitCols = "id, path, package, last_indexed"

func scanUnit(sc scanner) (*Unit, error) {
	u := &Unit{}
	if err := sc.Scan(&u.ID, &u.Path, &u.Package, &u.LastIndexed); err != nil {
		return nil, err
	}
	return u, nil
}

// UnitByPath returns the unit indexed at path, or nil.
func (s *Store) UnitByPath(path string) (*Unit, error) {
	u, err := scanUnit(s.db.QueryRow("SELECT "+unitCols+" FROM units WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unit by path: %w", err)
	}
	return u, nil
}

// Units returns every indexed unit ordered by path.
func (s *Store) Units() ([]*Unit, error) {
	return s.queryUnits("SELECT " + unitCols + " FROM units ORDER BY path")
}

// UnitsByPackage returns the units of one package ordered by path.
func (s *Store) UnitsByPackage(pkg string) ([]*Unit, error) {
	return s.queryUnits("SELECT "+unitCols+" FROM units WHERE package = ? ORDER BY path", pkg)
}

func (s *Store) queryUnits(query string, args ...any) ([]*Unit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()
	var units []*Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// --- Declaration operations ---

// InsertDeclaration records d. An anchor already held by another unit
// moves to d's unit.
func (s *Store) InsertDeclaration(d *Declaration) (int64, error) {
	return insertDeclaration(s.db, d)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func insertDeclaration(ex execer, d *Declaration) (int64, error) {
	if _, err := ex.Exec(
		`INSERT INTO declarations (unit_id, anchor, name, kind, display) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(anchor) DO UPDATE SET unit_id = excluded.unit_id, name = excluded.name,
		   kind = excluded.kind, display = excluded.display`,
		d.UnitID, d.Anchor, d.Name, d.Kind, d.Display,
	); err != nil {
		return 0, fmt.Errorf("insert declaration %q: %w", d.Anchor, err)
	}
	var id int64
	if err := ex.QueryRow("SELECT id FROM declarations WHERE anchor = ?", d.Anchor).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert declaration %q: read id: %w", d.Anchor, err)
	}
	d.ID = id
	return id, nil
}

const declCols = "id, unit_id, anchor, name, kind, display"

func scanDeclaration(sc scanner) (*Declaration, error) {
	d := &Declaration{}
	if err := sc.Scan(&d.ID, &d.UnitID, &d.Anchor, &d.Name, &d.Kind, &d.Display); err != nil {
		return nil, err
	}
	return d, nil
}

// DeclarationsByUnit returns a unit's declarations in insertion order.
func (s *Store) DeclarationsByUnit(unitID int64) ([]*Declaration, error) {
	return s.queryDeclarations("SELECT "+declCols+" FROM declarations WHERE unit_id = ? ORDER BY id", unitID)
}

func (s *Store) queryDeclarations(query string, args ...any) ([]*Declaration, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()
	var decls []*Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

// UnitForAnchor returns the unit that declares anchor, or nil.
func (s *Store) UnitForAnchor(anchor string) (*Unit, error) {
	u, err := scanUnit(s.db.QueryRow(
		`SELECT u.id, u.path, u.package, u.last_indexed
		 FROM declarations d JOIN units u ON u.id = d.unit_id
		 WHERE d.anchor = ?`, anchor,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unit for anchor %q: %w", anchor, err)
	}
	return u, nil
}
