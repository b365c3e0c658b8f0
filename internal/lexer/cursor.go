package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"flowtrace/internal/source"
)

// Cursor is a byte position inside one source file.
type Cursor struct {
	File *source.File
	Off  uint32
}

// NewCursor creates a cursor at the start of f.
func NewCursor(f *source.File) Cursor {
	if _, err := safecast.Conv[uint32](len(f.Content)); err != nil {
		panic(fmt.Errorf("file content overflow: %w", err))
	}
	return Cursor{File: f}
}

// EOF reports whether the cursor is past the last byte.
func (c *Cursor) EOF() bool {
	return int(c.Off) >= len(c.File.Content)
}

// Peek returns the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// PeekAt returns the byte n positions ahead, or 0 past EOF.
func (c *Cursor) PeekAt(n uint32) byte {
	if int(c.Off+n) >= len(c.File.Content) {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Bump advances past the current byte.
func (c *Cursor) Bump() {
	if !c.EOF() {
		c.Off++
	}
}

// Text returns the raw source text from start to the current offset.
func (c *Cursor) Text(start uint32) string {
	return string(c.File.Content[start:c.Off])
}

// SpanFrom builds a span from start to the current offset.
func (c *Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.File.ID, Start: start, End: c.Off}
}

// SpanHere builds an empty span at the current offset.
func (c *Cursor) SpanHere() source.Span {
	return source.Span{File: c.File.ID, Start: c.Off, End: c.Off}
}
