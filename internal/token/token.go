package token

import (
	"cast/internal/diag"
	"cast/internal/source"
)

// TokenError is a lexical diagnostic attached to an Invalid token
// instead of being reported at scan time. Tokens inside skipped
// conditional branches are never reported; the preprocessor surfaces
// the error only when the token reaches live context.
type TokenError struct {
	Code diag.Code
	Msg  string
}

// Token is one node of the preprocessor's singly linked token stream.
// Each token owns the pointer to its successor for the duration of one
// preprocessing pass. Tokens produced by macro expansion are fresh copies
// that keep a non-owning Origin back-reference for diagnostics.
type Token struct {
	Kind Kind
	Next *Token

	// Location. File is a non-owning reference into the instance's FileSet.
	File *source.File
	Pos  uint32 // byte offset into File.Content
	Len  uint32
	Line uint32 // 1-based physical line, before #line remapping

	// #line bookkeeping captured when the token passes the preprocessor.
	LineDelta   int32
	DisplayName string

	// AtBOL is set on the first token of a logical line.
	AtBOL bool
	// HasSpace is set when whitespace or a comment precedes the token.
	HasSpace bool

	// Text is the verbatim spelling.
	Text string

	// Err holds the deferred lexical diagnostic of an Invalid token.
	Err *TokenError

	// Hideset is the set of macro names that must not re-expand this token.
	Hideset *Hideset
	// Origin is the invocation token this one was expanded from, or nil.
	Origin *Token

	// Literal values. Num: Val or FVal per IsFloat. Str: decoded body in
	// StrVal including the terminating NUL, with element type StrTy.
	Val     int64
	FVal    float64
	IsFloat bool
	IsUns   bool
	StrVal  []byte
	StrTy   StrKind
}

// Equal reports whether the token spells s.
func (t *Token) Equal(s string) bool {
	return t.Text == s
}

// IsIdent reports whether the token is the identifier s.
func (t *Token) IsIdent(s string) bool {
	return t.Kind == Ident && t.Text == s
}

// IsHash reports whether the token starts a directive line.
func (t *Token) IsHash() bool {
	return t.AtBOL && t.Kind == Punct && t.Text == "#"
}

// Span returns the byte span of the token within its file.
func (t *Token) Span() source.Span {
	return source.Span{File: t.File.ID, Start: t.Pos, End: t.Pos + t.Len}
}

// Copy returns a detached shallow copy of the token.
func (t *Token) Copy() *Token {
	c := *t
	c.Next = nil
	return &c
}

// NewEOF returns an EOF token carrying tmpl's location.
func NewEOF(tmpl *Token) *Token {
	c := tmpl.Copy()
	c.Kind = EOF
	c.Text = ""
	c.Len = 0
	return c
}

// ExpansionRoot follows Origin links to the token the user actually wrote.
func (t *Token) ExpansionRoot() *Token {
	for t.Origin != nil {
		t = t.Origin
	}
	return t
}

// FileName returns the display name for diagnostics, honoring #line.
func (t *Token) FileName() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.File.Name()
}

// LineNo returns the reported line number, honoring #line deltas.
func (t *Token) LineNo() int32 {
	return int32(t.Line) + t.LineDelta
}
