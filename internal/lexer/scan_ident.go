package lexer

import (
	"golang.org/x/text/unicode/norm"

	"cast/internal/diag"
	"cast/internal/token"
)

// scanIdent consumes an identifier. Non-ASCII code points are accepted
// per the extended identifier rules; the spelling is NFC-normalized so
// that visually identical macro names compare equal.
func (lx *Lexer) scanIdent(start uint32) *token.Token {
	ascii := true

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isIdentContinueByte(b) {
			lx.cursor.Bump()
			continue
		}
		if b < runeSelf {
			break
		}
		r, size := lx.peekRune()
		var accept bool
		if lx.cursor.Off == start {
			accept = isIdentStartRune(r)
		} else {
			accept = isIdentContinueRune(r)
		}
		if !accept {
			break
		}
		ascii = false
		lx.cursor.BumpN(uint32(size))
	}

	if lx.cursor.Off == start {
		// First rune was non-ASCII but not an identifier start.
		_, size := lx.peekRune()
		lx.cursor.BumpN(uint32(size))
		lx.deferErr(diag.LexUnknownChar, "invalid character in input")
		return lx.make(token.Invalid, start)
	}

	tok := lx.make(token.Ident, start)
	if !ascii {
		tok.Text = norm.NFC.String(tok.Text)
	}
	if lx.opts.Interner != nil {
		id := lx.opts.Interner.Intern(tok.Text)
		tok.Text = lx.opts.Interner.MustLookup(id)
	}
	return tok
}
