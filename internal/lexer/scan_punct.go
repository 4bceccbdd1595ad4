package lexer

import (
	"cast/internal/diag"
	"cast/internal/token"
)

// puncts is ordered longest first so that "<<=" wins over "<<" and "<".
var puncts = []string{
	"<<=", ">>=", "...",
	"==", "!=", "<=", ">=", "->", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "&&", "||", "<<", ">>", "++", "--", "##",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^", "~",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "?", "#", "@",
}

func (lx *Lexer) scanPunct(start uint32) *token.Token {
	for _, p := range puncts {
		if lx.cursor.HasPrefix(p) {
			lx.cursor.BumpN(uint32(len(p)))
			return lx.make(token.Punct, start)
		}
	}

	// Not a known punctuator: consume one rune and carry the error.
	_, size := lx.peekRune()
	if size == 0 {
		size = 1
	}
	lx.cursor.BumpN(uint32(size))
	lx.deferErr(diag.LexUnknownChar, "invalid character in input")
	return lx.make(token.Invalid, start)
}
