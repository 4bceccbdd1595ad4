package lexer

import (
	"cast/internal/diag"
	"cast/internal/source"
	"cast/internal/token"
)

// Lexer converts one file's bytes into a linked token sequence.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options

	atBOL    bool
	hasSpace bool

	// err is the pending diagnostic of the token being scanned; make
	// folds it into the token and clears it.
	err      *token.TokenError
	errStart uint32
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		atBOL:  true,
	}
}

// Tokenize converts a file into a linked token sequence terminated by an
// EOF token. Tokenization never fails: a malformed literal yields an
// Invalid token carrying its diagnostic, and scanning continues at the
// next sane boundary.
func Tokenize(file *source.File, opts Options) *token.Token {
	lx := New(file, opts)
	var head token.Token
	cur := &head
	for {
		tok := lx.next()
		cur.Next = tok
		cur = cur.Next
		if tok.Kind == token.EOF {
			return head.Next
		}
	}
}

// next scans one significant token, folding preceding whitespace and
// comments into the AtBOL/HasSpace flags.
func (lx *Lexer) next() *token.Token {
	lx.skipTrivia()

	if lx.cursor.EOF() {
		// An unterminated block comment surfaces here, as an Invalid
		// token spanning from the comment opener.
		if lx.err != nil {
			return lx.make(token.Invalid, lx.errStart)
		}
		return lx.make(token.EOF, lx.cursor.Mark())
	}

	start := lx.cursor.Mark()
	ch := lx.cursor.Peek()

	if isDec(ch) || (ch == '.' && isDec(lx.cursor.PeekAt(1))) {
		return lx.scanPPNumber(start)
	}
	if ch == '"' {
		return lx.scanString(start, token.StrNone)
	}
	if ch == '\'' {
		return lx.scanChar(start, token.StrNone)
	}
	if p := lx.literalPrefix(); p != nil {
		lx.cursor.BumpN(p.skip)
		if lx.cursor.Peek() == '"' {
			return lx.scanString(start, p.kind)
		}
		return lx.scanChar(start, p.kind)
	}
	if isIdentStartByte(ch) || ch >= runeSelf {
		return lx.scanIdent(start)
	}
	return lx.scanPunct(start)
}

type literalPrefix struct {
	text string
	kind token.StrKind
	skip uint32
}

var literalPrefixes = []literalPrefix{
	{`u8"`, token.StrUTF8, 2},
	{`u8'`, token.StrUTF8, 2},
	{`u"`, token.StrUTF16, 1},
	{`u'`, token.StrUTF16, 1},
	{`U"`, token.StrUTF32, 1},
	{`U'`, token.StrUTF32, 1},
	{`L"`, token.StrWide, 1},
	{`L'`, token.StrWide, 1},
}

// literalPrefix matches an encoding prefix immediately followed by a quote.
func (lx *Lexer) literalPrefix() *literalPrefix {
	for i := range literalPrefixes {
		if lx.cursor.HasPrefix(literalPrefixes[i].text) {
			return &literalPrefixes[i]
		}
	}
	return nil
}

// skipTrivia consumes whitespace and comments, updating the pending
// AtBOL/HasSpace flags exactly as if the skipped bytes were spaces.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()

		if ch == '\n' {
			lx.atBOL = true
			lx.hasSpace = false
			lx.cursor.Bump()
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f' || ch == '\r' {
			lx.hasSpace = true
			lx.cursor.Bump()
			continue
		}
		if ch == '/' && lx.cursor.PeekAt(1) == '/' {
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.hasSpace = true
			continue
		}
		if ch == '/' && lx.cursor.PeekAt(1) == '*' {
			start := lx.cursor.Mark()
			lx.cursor.BumpN(2)
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.BumpN(2)
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.errStart = start
				lx.deferErr(diag.LexUnterminatedBlockComment, "unclosed block comment")
				return
			}
			lx.hasSpace = true
			continue
		}
		return
	}
}

// make builds a token from start to the cursor and consumes the pending
// whitespace flags. A pending scan error forces the Invalid kind and
// rides along on the token.
func (lx *Lexer) make(kind token.Kind, start uint32) *token.Token {
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	tok := &token.Token{
		Kind:     kind,
		File:     lx.file,
		Pos:      sp.Start,
		Len:      sp.Len(),
		Line:     lx.lineAt(sp.Start),
		AtBOL:    lx.atBOL,
		HasSpace: lx.hasSpace,
		Text:     text,
	}
	if lx.err != nil {
		tok.Kind = token.Invalid
		tok.Err = lx.err
		lx.err = nil
	}
	lx.atBOL = false
	lx.hasSpace = false
	return tok
}

// lineAt returns the 1-based line of a byte offset. The cursor's line
// counter refers to the current offset; walking back from the cursor
// start is cheap because tokens rarely span newlines.
func (lx *Lexer) lineAt(start uint32) uint32 {
	line := lx.cursor.Line
	for off := start; off < lx.cursor.Off; off++ {
		if lx.file.Content[off] == '\n' {
			line--
		}
	}
	return line
}
