package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"cast/internal/source"
)

// Cursor is a byte position inside one file. It tracks the physical line
// so tokens can be stamped without a separate numbering pass.
type Cursor struct {
	File *source.File
	Off  uint32
	Line uint32 // 1-based
}

// NewCursor creates a cursor at the start of the file.
func NewCursor(f *source.File) Cursor {
	return Cursor{File: f, Off: 0, Line: 1}
}

func (c *Cursor) limit() uint32 {
	lim, err := safecast.Conv[uint32](len(c.File.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lim
}

// EOF reports whether the end of the file was reached.
func (c *Cursor) EOF() bool {
	return c.Off >= c.limit()
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
	if c.Off+n >= c.limit() {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Bump advances one byte, maintaining the line counter.
func (c *Cursor) Bump() {
	if c.EOF() {
		return
	}
	if c.File.Content[c.Off] == '\n' {
		c.Line++
	}
	c.Off++
}

// BumpN advances n bytes.
func (c *Cursor) BumpN(n uint32) {
	for range n {
		c.Bump()
	}
}

// Mark returns the current offset for later SpanFrom.
func (c *Cursor) Mark() uint32 {
	return c.Off
}

// SpanFrom builds a span from a mark to the current offset.
func (c *Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.File.ID, Start: start, End: c.Off}
}

// Rest returns the unread tail of the file.
func (c *Cursor) Rest() []byte {
	return c.File.Content[c.Off:]
}

// HasPrefix reports whether the unread input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	rest := c.Rest()
	if len(rest) < len(s) {
		return false
	}
	return string(rest[:len(s)]) == s
}
