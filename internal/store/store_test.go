package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// insertTestUnit is a helper that inserts a unit and returns it with ID set.
func insertTestUnit(t *testing.T, s *Store, path, pkg string) *Unit {
	t.Helper()
	u := &Unit{Path: path, Package: pkg}
	id, err := s.InsertUnit(u)
	require.NoError(t, err)
	require.Positive(t, id)
	return u
}

func insertTestDecl(t *testing.T, s *Store, unitID int64, anchor, name, kind string) *Declaration {
	t.Helper()
	d := &Declaration{UnitID: unitID, Anchor: anchor, Name: name, Kind: kind, Display: anchor}
	id, err := s.InsertDeclaration(d)
	require.NoError(t, err)
	require.Positive(t, id)
	return d
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"units", "declarations"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

// =============================================================================
// Unit operations
// =============================================================================

func TestUnit_InsertAndRetrieve(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	u := &Unit{Path: "com/acme/A.java", Package: "com.acme", LastIndexed: now}
	id, err := s.InsertUnit(u)
	require.NoError(t, err)

	got, err := s.UnitByPath("com/acme/A.java")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "com.acme", got.Package)
	assert.True(t, now.Equal(got.LastIndexed))
}

func TestUnit_ByPathNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	got, err := s.UnitByPath("missing.java")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnit_ReinsertKeepsIDAndClearsDeclarations(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	u := insertTestUnit(t, s, "A.java", "")
	insertTestDecl(t, s, u.ID, "A", "A", "class")

	again := &Unit{Path: "A.java", Package: "p"}
	id, err := s.InsertUnit(again)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	decls, err := s.DeclarationsByUnit(id)
	require.NoError(t, err)
	assert.Empty(t, decls)

	got, err := s.UnitByPath("A.java")
	require.NoError(t, err)
	assert.Equal(t, "p", got.Package)
}

func TestUnits_OrderedByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestUnit(t, s, "b/B.java", "b")
	insertTestUnit(t, s, "a/A.java", "a")
	insertTestUnit(t, s, "a/Z.java", "a")

	units, err := s.Units()
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "a/A.java", units[0].Path)
	assert.Equal(t, "a/Z.java", units[1].Path)
	assert.Equal(t, "b/B.java", units[2].Path)

	inA, err := s.UnitsByPackage("a")
	require.NoError(t, err)
	assert.Len(t, inA, 2)
}

// =============================================================================
// Declaration operations
// =============================================================================

func TestDeclaration_UnitForAnchor(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := insertTestUnit(t, s, "com/acme/A.java", "com.acme")
	b := insertTestUnit(t, s, "com/acme/B.java", "com.acme")
	insertTestDecl(t, s, a.ID, "com.acme.A", "A", "class")
	insertTestDecl(t, s, b.ID, "com.acme.B~run()", "run", "method")

	got, err := s.UnitForAnchor("com.acme.B~run()")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "com/acme/B.java", got.Path)

	none, err := s.UnitForAnchor("com.acme.C")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDeclaration_AnchorMovesToLatestUnit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := insertTestUnit(t, s, "A.java", "")
	b := insertTestUnit(t, s, "B.java", "")
	insertTestDecl(t, s, a.ID, "Shared", "Shared", "class")
	insertTestDecl(t, s, b.ID, "Shared", "Shared", "class")

	got, err := s.UnitForAnchor("Shared")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "B.java", got.Path)

	left, err := s.DeclarationsByUnit(a.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDeclarationsByUnit_InsertionOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	u := insertTestUnit(t, s, "A.java", "")
	insertTestDecl(t, s, u.ID, "A", "A", "class")
	insertTestDecl(t, s, u.ID, "A~m()", "m", "method")
	insertTestDecl(t, s, u.ID, "A~f", "f", "field")

	decls, err := s.DeclarationsByUnit(u.ID)
	require.NoError(t, err)
	require.Len(t, decls, 3)
	assert.Equal(t, []string{"A", "A~m()", "A~f"}, []string{decls[0].Anchor, decls[1].Anchor, decls[2].Anchor})
	assert.Equal(t, "method", decls[1].Kind)
}

func TestDeleteUnitData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	u := insertTestUnit(t, s, "A.java", "")
	insertTestDecl(t, s, u.ID, "A", "A", "class")

	require.NoError(t, s.DeleteUnitData(u.ID))

	got, err := s.UnitByPath("A.java")
	require.NoError(t, err)
	assert.Nil(t, got)
	owner, err := s.UnitForAnchor("A")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestPruneUnits(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := insertTestUnit(t, s, "A.java", "")
	b := insertTestUnit(t, s, "B.java", "")
	insertTestDecl(t, s, a.ID, "A", "A", "class")
	insertTestDecl(t, s, b.ID, "B", "B", "class")

	n, err := s.PruneUnits([]string{"A.java"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	units, err := s.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "A.java", units[0].Path)

	owner, err := s.UnitForAnchor("B")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestPruneUnits_EmptyKeepRemovesAll(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestUnit(t, s, "A.java", "")

	n, err := s.PruneUnits(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	units, err := s.Units()
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestPlaceholderList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", placeholderList(0))
	assert.Equal(t, "?", placeholderList(1))
	assert.Equal(t, "?,?,?", placeholderList(3))
}
