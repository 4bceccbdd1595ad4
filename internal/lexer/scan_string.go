package lexer

import (
	"unicode/utf8"

	"cast/internal/diag"
	"cast/internal/token"
)

// scanString consumes a string literal. The cursor sits on the opening
// quote; any encoding prefix has already been consumed. The token keeps
// the verbatim spelling in Text and the unescaped, NUL-terminated body in
// StrVal with the element type in StrTy.
func (lx *Lexer) scanString(start uint32, kind token.StrKind) *token.Token {
	lx.cursor.Bump() // opening '"'
	var body []byte

	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.deferErr(diag.LexUnterminatedString, "unterminated string literal")
			return lx.make(token.Invalid, start)
		}
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			break
		}
		if b == '\\' {
			lx.cursor.Bump()
			val, raw, ok := lx.readEscape()
			if !ok {
				// Error recorded; keep scanning to the closing quote so
				// the stream stays aligned.
				continue
			}
			if raw {
				body = append(body, byte(val&0xFF))
			} else {
				body = utf8.AppendRune(body, val)
			}
			continue
		}
		body = append(body, b)
		lx.cursor.Bump()
	}

	tok := lx.make(token.Str, start)
	if tok.Kind == token.Str {
		tok.StrVal = append(body, 0)
		tok.StrTy = kind
	}
	return tok
}

// scanChar consumes a character literal. Its value is that of the first
// (possibly escaped) character; the rest up to the closing quote is
// consumed but ignored, as for multi-character constants.
func (lx *Lexer) scanChar(start uint32, kind token.StrKind) *token.Token {
	lx.cursor.Bump() // opening '\''

	if lx.cursor.Peek() == '\'' {
		lx.cursor.Bump()
		lx.deferErr(diag.LexEmptyChar, "empty character constant")
		return lx.make(token.Invalid, start)
	}

	var val rune
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		lx.deferErr(diag.LexUnterminatedChar, "unterminated character constant")
		return lx.make(token.Invalid, start)
	}
	if lx.cursor.Peek() == '\\' {
		lx.cursor.Bump()
		v, _, ok := lx.readEscape()
		if !ok {
			v = 0
		}
		val = v
	} else {
		r, size := lx.peekRune()
		lx.cursor.BumpN(uint32(size))
		val = r
	}

	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.deferErr(diag.LexUnterminatedChar, "unterminated character constant")
			return lx.make(token.Invalid, start)
		}
		if lx.cursor.Peek() == '\'' {
			lx.cursor.Bump()
			break
		}
		if lx.cursor.Peek() == '\\' {
			lx.cursor.Bump()
		}
		lx.cursor.Bump()
	}

	tok := lx.make(token.Num, start)
	if tok.Kind != token.Num {
		return tok
	}
	if kind == token.StrNone {
		// Plain char constants are sign-extended from 8 bits, as usual
		// for a signed char target.
		tok.Val = int64(int8(val & 0xFF))
	} else {
		tok.Val = int64(val)
	}
	tok.StrTy = kind
	return tok
}

// readEscape decodes one escape sequence after the backslash. raw means
// the value is a byte to store verbatim (octal/hex escapes); otherwise it
// is a code point to encode as UTF-8. On a malformed escape the error is
// recorded on the lexer and ok is false.
func (lx *Lexer) readEscape() (val rune, raw bool, ok bool) {
	if lx.cursor.EOF() {
		lx.deferErr(diag.LexBadEscape, "incomplete escape sequence")
		return 0, false, false
	}

	b := lx.cursor.Peek()

	if isOct(b) {
		v := 0
		for n := 0; n < 3 && isOct(lx.cursor.Peek()); n++ {
			v = v*8 + int(lx.cursor.Peek()-'0')
			lx.cursor.Bump()
		}
		return rune(v), true, true
	}

	switch b {
	case 'x':
		lx.cursor.Bump()
		if !isHex(lx.cursor.Peek()) {
			lx.deferErr(diag.LexBadEscape, "\\x used with no following hex digits")
			return 0, false, false
		}
		v := 0
		for isHex(lx.cursor.Peek()) {
			v = v*16 + hexVal(lx.cursor.Peek())
			lx.cursor.Bump()
		}
		return rune(v), true, true

	case 'u', 'U':
		digits := 4
		if b == 'U' {
			digits = 8
		}
		lx.cursor.Bump()
		v := 0
		for range digits {
			if !isHex(lx.cursor.Peek()) {
				lx.deferErr(diag.LexBadUCN, "incomplete universal character name")
				return 0, false, false
			}
			v = v*16 + hexVal(lx.cursor.Peek())
			lx.cursor.Bump()
		}
		if !utf8.ValidRune(rune(v)) {
			lx.deferErr(diag.LexBadUCN, "invalid universal character name")
			return 0, false, false
		}
		return rune(v), false, true
	}

	lx.cursor.Bump()
	switch b {
	case 'a':
		return 7, true, true
	case 'b':
		return 8, true, true
	case 'f':
		return 12, true, true
	case 'n':
		return 10, true, true
	case 'r':
		return 13, true, true
	case 't':
		return 9, true, true
	case 'v':
		return 11, true, true
	// [GNU] \e for the ASCII escape character.
	case 'e':
		return 27, true, true
	case '\'', '"', '?', '\\':
		return rune(b), true, true
	}

	lx.deferErr(diag.LexBadEscape, "unknown escape sequence '\\"+string(b)+"'")
	return 0, false, false
}
