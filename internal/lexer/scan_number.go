package lexer

import (
	"cast/internal/token"
)

// scanPPNumber consumes a preprocessing number (C11 6.4.8). The shape is
// deliberately loose: "0x1p-3", "1e+10f", ".5", even "123abc" are all one
// pp-number; the concrete numeric value is resolved after preprocessing.
func (lx *Lexer) scanPPNumber(start uint32) *token.Token {
	// Leading digit or ".digit" was verified by the dispatcher.
	lx.cursor.Bump()

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		next := lx.cursor.PeekAt(1)

		// Exponent with sign: e+ e- E+ E- p+ p- P+ P-
		if (b == 'e' || b == 'E' || b == 'p' || b == 'P') && (next == '+' || next == '-') {
			lx.cursor.BumpN(2)
			continue
		}
		if isIdentContinueByte(b) || b == '.' {
			lx.cursor.Bump()
			continue
		}
		if b >= runeSelf {
			r, size := lx.peekRune()
			if isIdentContinueRune(r) {
				lx.cursor.BumpN(uint32(size))
				continue
			}
		}
		break
	}

	return lx.make(token.PPNum, start)
}
