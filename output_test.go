package srcview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	diff, err := unifiedDiff("A.java.js", []byte("same\n"), []byte("same\n"))
	require.NoError(t, err)
	assert.Empty(t, diff)

	diff, err = unifiedDiff("A.java.js", []byte("one\ntwo\n"), []byte("one\nthree\n"))
	require.NoError(t, err)
	assert.Contains(t, diff, "--- A.java.js (on disk)")
	assert.Contains(t, diff, "+++ A.java.js (rendered)")
	assert.Contains(t, diff, "-two\n")
	assert.Contains(t, diff, "+three\n")
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "deep", "dir", "A.java.js")

	require.NoError(t, writeAtomic(target, []byte("first")))
	require.NoError(t, writeAtomic(target, []byte("second")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}
