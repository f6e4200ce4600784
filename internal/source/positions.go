// Package source converts positions in a source unit to absolute character
// offsets. Characters are UTF-16 code units, the unit the browser viewer
// uses to index the raw text; lines and columns are 1-based.
package source

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrPosition is returned for a line or column outside the unit.
var ErrPosition = errors.New("source: position out of range")

// Positions is the position table of one source unit.
type Positions struct {
	src        []byte
	lineBytes  []int // byte offset of each line start
	lineChars  []int // character offset of each line start
	totalChars int
}

// NewPositions indexes src. Lines are terminated by '\n'.
func NewPositions(src []byte) *Positions {
	p := &Positions{src: src, lineBytes: []int{0}, lineChars: []int{0}}
	chars := 0
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		i += size
		chars += charLen(r)
		if r == '\n' {
			p.lineBytes = append(p.lineBytes, i)
			p.lineChars = append(p.lineChars, chars)
		}
	}
	p.totalChars = chars
	return p
}

func charLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Lines returns the number of lines in the unit.
func (p *Positions) Lines() int { return len(p.lineBytes) }

// Len returns the length of the unit in characters.
func (p *Positions) Len() int { return p.totalChars }

// Offset converts a 1-based line and a 1-based character column to an
// absolute character offset. The column may point just past the last
// character of its line.
func (p *Positions) Offset(line, col int) (int, error) {
	if line < 1 || line > len(p.lineChars) || col < 1 {
		return 0, fmt.Errorf("%w: %d:%d", ErrPosition, line, col)
	}
	start := p.lineChars[line-1]
	end := p.totalChars
	if line < len(p.lineChars) {
		end = p.lineChars[line]
	}
	off := start + col - 1
	if off > end {
		return 0, fmt.Errorf("%w: %d:%d", ErrPosition, line, col)
	}
	return off, nil
}

// CharOffset converts a byte offset to a character offset. Offsets past the
// end clamp to the unit length.
func (p *Positions) CharOffset(byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(p.src) {
		return p.totalChars
	}
	line := p.lineIndex(byteOff)
	chars := p.lineChars[line]
	for i := p.lineBytes[line]; i < byteOff; {
		r, size := utf8.DecodeRune(p.src[i:])
		i += size
		chars += charLen(r)
	}
	return chars
}

// Point converts a byte offset to a 1-based line and character column.
func (p *Positions) Point(byteOff int) (line, col int) {
	if byteOff < 0 {
		byteOff = 0
	}
	idx := p.lineIndex(byteOff)
	return idx + 1, p.CharOffset(byteOff) - p.lineChars[idx] + 1
}

// NodeSpan returns the character range covered by n.
func (p *Positions) NodeSpan(n *sitter.Node) (start, end int) {
	return p.CharOffset(int(n.StartByte())), p.CharOffset(int(n.EndByte()))
}

// lineIndex returns the 0-based line containing byteOff.
func (p *Positions) lineIndex(byteOff int) int {
	return sort.Search(len(p.lineBytes), func(i int) bool {
		return p.lineBytes[i] > byteOff
	}) - 1
}
