package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset(t *testing.T) {
	t.Parallel()
	p := NewPositions([]byte("class A {\n  int x;\n}\n"))

	tests := []struct {
		line, col int
		want      int
	}{
		{1, 1, 0},
		{1, 7, 6},
		{2, 1, 10},
		{2, 7, 16},
		{3, 1, 19},
		{4, 1, 21},
	}
	for _, tt := range tests {
		got, err := p.Offset(tt.line, tt.col)
		require.NoError(t, err, "%d:%d", tt.line, tt.col)
		assert.Equal(t, tt.want, got, "%d:%d", tt.line, tt.col)
	}
	assert.Equal(t, 4, p.Lines())
}

func TestOffset_OutOfRange(t *testing.T) {
	t.Parallel()
	p := NewPositions([]byte("ab\ncd"))

	for _, pos := range [][2]int{{0, 1}, {1, 0}, {3, 1}, {1, 5}, {2, 4}} {
		_, err := p.Offset(pos[0], pos[1])
		assert.ErrorIs(t, err, ErrPosition, "%v", pos)
	}
	off, err := p.Offset(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, off)
}

func TestCharOffset_UTF16(t *testing.T) {
	t.Parallel()
	// "é" is 2 bytes / 1 char, "𝄞" is 4 bytes / 2 chars.
	src := []byte("é𝄞x\nyz")
	p := NewPositions(src)

	assert.Equal(t, 0, p.CharOffset(0))
	assert.Equal(t, 1, p.CharOffset(2))
	assert.Equal(t, 3, p.CharOffset(6))
	assert.Equal(t, 4, p.CharOffset(7))
	assert.Equal(t, 5, p.CharOffset(8))
	assert.Equal(t, 7, p.CharOffset(len(src)))
	assert.Equal(t, 7, p.Len())

	line, col := p.Point(6)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)

	line, col = p.Point(9)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	off, err := p.Offset(line, col)
	require.NoError(t, err)
	assert.Equal(t, p.CharOffset(9), off)
}
