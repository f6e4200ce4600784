package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchedStore_FakeIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	u := insertTestUnit(t, s, "A.java", "")

	batch := NewBatchedStore()
	id1, err := batch.InsertDeclaration(&Declaration{UnitID: u.ID, Anchor: "A", Name: "A", Kind: "class"})
	require.NoError(t, err)
	id2, err := batch.InsertDeclaration(&Declaration{UnitID: u.ID, Anchor: "A~m()", Name: "m", Kind: "method"})
	require.NoError(t, err)

	assert.Equal(t, int64(-1), id1)
	assert.Equal(t, int64(-2), id2)
	assert.Equal(t, 2, batch.Len())

	// Nothing reaches SQLite before the commit.
	decls, err := s.DeclarationsByUnit(u.ID)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestBatchedStore_DropUnit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := insertTestUnit(t, s, "A.java", "")
	b := insertTestUnit(t, s, "B.java", "")

	batch := NewBatchedStore()
	for _, d := range []Declaration{
		{UnitID: a.ID, Anchor: "A", Name: "A", Kind: "class"},
		{UnitID: b.ID, Anchor: "B", Name: "B", Kind: "class"},
		{UnitID: a.ID, Anchor: "A~m()", Name: "m", Kind: "method"},
	} {
		_, err := batch.InsertDeclaration(&d)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, batch.DropUnit(a.ID))
	assert.Equal(t, 0, batch.DropUnit(a.ID))
	require.NoError(t, s.CommitBatch(batch))

	decls, err := s.DeclarationsByUnit(a.ID)
	require.NoError(t, err)
	assert.Empty(t, decls)
	owner, err := s.UnitForAnchor("B")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "B.java", owner.Path)
}

func TestCommitBatch_WritesAndResets(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	u := insertTestUnit(t, s, "A.java", "")

	batch := NewBatchedStore()
	for _, anchor := range []string{"A", "A~m()", "A~f"} {
		_, err := batch.InsertDeclaration(&Declaration{UnitID: u.ID, Anchor: anchor, Name: anchor, Kind: "class"})
		require.NoError(t, err)
	}
	require.NoError(t, s.CommitBatch(batch))
	assert.Equal(t, 0, batch.Len())

	decls, err := s.DeclarationsByUnit(u.ID)
	require.NoError(t, err)
	require.Len(t, decls, 3)
	for _, d := range decls {
		assert.Positive(t, d.ID, "committed declarations get real IDs")
	}

	id, err := batch.InsertDeclaration(&Declaration{UnitID: u.ID, Anchor: "A~g", Name: "g", Kind: "field"})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), id)
}

func TestCommitBatch_RejectsUnitlessDeclaration(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	u := insertTestUnit(t, s, "A.java", "")

	batch := NewBatchedStore()
	_, err := batch.InsertDeclaration(&Declaration{UnitID: u.ID, Anchor: "A", Name: "A", Kind: "class"})
	require.NoError(t, err)
	_, err = batch.InsertDeclaration(&Declaration{Anchor: "B", Name: "B", Kind: "class"})
	require.NoError(t, err)

	err = s.CommitBatch(batch)
	require.Error(t, err)

	// The transaction rolled back as a whole.
	decls, err := s.DeclarationsByUnit(u.ID)
	require.NoError(t, err)
	assert.Empty(t, decls)
}
