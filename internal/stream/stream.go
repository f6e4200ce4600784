// Package stream writes the bracket-delimited array format consumed by the
// source viewer. Values are arrays, double-quoted strings (only '"' is
// escaped) and bare decimal integers; top-level records are call-like,
// e.g. typeTable([...]);
//
// Compact mode inserts no whitespace. Pretty mode puts one element per
// line, indented two spaces per nesting level. The mode never changes the
// values written.
package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Value is an encodable value.
type Value interface {
	writeTo(w *Writer)
}

// String is a quoted string value.
type String string

// Int is a bare integer value, used for offsets and symbol ids.
type Int int

// Array is an ordered list of values.
type Array []Value

func (s String) writeTo(w *Writer) {
	w.put(`"`)
	w.put(strings.ReplaceAll(string(s), `"`, `\"`))
	w.put(`"`)
}

func (n Int) writeTo(w *Writer) { w.put(strconv.Itoa(int(n))) }

func (a Array) writeTo(w *Writer) { w.list("[", "]", a) }

// Strings converts a string slice to an Array of String values.
func Strings(ss ...string) Array {
	out := make(Array, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

// Option configures a Writer.
type Option func(*Writer)

// WithPretty selects pretty (indented) output.
func WithPretty(pretty bool) Option {
	return func(w *Writer) {
		w.pretty = pretty
	}
}

// Writer encodes values to an underlying io.Writer. The first write error
// is retained and reported by Flush; later writes are dropped.
type Writer struct {
	bw     *bufio.Writer
	pretty bool
	depth  int
	err    error
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	sw := &Writer{bw: bufio.NewWriter(w)}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Pretty reports whether the writer indents its output.
func (w *Writer) Pretty() bool { return w.pretty }

// Value writes a single value.
func (w *Writer) Value(v Value) {
	v.writeTo(w)
}

// Call writes a call-like record: name(arg,...);
func (w *Writer) Call(name string, args ...Value) {
	w.put(name)
	w.list("(", ")", args)
	w.put(";")
	if w.pretty {
		w.put("\n")
	}
}

// Flush writes any buffered output and returns the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.bw.Flush()
	return w.err
}

func (w *Writer) list(open, close string, items []Value) {
	w.put(open)
	w.depth++
	for i, item := range items {
		if i > 0 {
			w.put(",")
		}
		w.newline()
		item.writeTo(w)
	}
	w.depth--
	if len(items) > 0 {
		w.newline()
	}
	w.put(close)
}

func (w *Writer) newline() {
	if !w.pretty {
		return
	}
	w.put("\n")
	w.put(strings.Repeat("  ", w.depth))
}

func (w *Writer) put(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.bw.WriteString(s)
}
