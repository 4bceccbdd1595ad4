package cpp

import (
	"math"
	"strconv"
	"strings"

	"cast/internal/diag"
	"cast/internal/token"
)

// convertPPTokens turns pp-numbers into numeric tokens. Identifier
// spellings stay identifiers here; keyword classification belongs to the
// parser front door, after preprocessing, so macros over keyword names
// keep working.
func (p *Preprocessor) convertPPTokens(tok *token.Token) {
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		if t.Kind == token.PPNum {
			p.convertNumber(t)
		}
	}
}

func (p *Preprocessor) convertNumber(tok *token.Token) {
	if p.convertInt(tok) {
		return
	}

	// Not an integer spelling. strtod semantics: strip a float suffix
	// and let the platform parser decide, hex floats included.
	s := strings.TrimRight(tok.Text, "fFlL")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(tok, diag.LexBadNumber, "invalid numeric constant '%s'", tok.Text)
	}
	tok.Kind = token.Num
	tok.FVal = v
	tok.IsFloat = true
}

// convertInt tries to read tok.Text as an integer constant. It reports
// false when the spelling is not integral at all, letting the float path
// have it.
func (p *Preprocessor) convertInt(tok *token.Token) bool {
	text := tok.Text

	// Peel the suffix: any combination of u/U with up to two l/L.
	body := text
	hasU, numL := false, 0
	for len(body) > 0 {
		c := body[len(body)-1]
		if c == 'u' || c == 'U' {
			if hasU {
				return false
			}
			hasU = true
		} else if c == 'l' || c == 'L' {
			if numL == 2 {
				return false
			}
			numL++
		} else {
			break
		}
		body = body[:len(body)-1]
	}

	base := 10
	digits := body
	switch {
	case len(body) > 2 && (strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X")):
		base = 16
		digits = body[2:]
	case len(body) > 2 && (strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B")):
		base = 2
		digits = body[2:]
	case len(body) > 1 && body[0] == '0':
		base = 8
		digits = body[1:]
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if hasU || numL > 0 {
			p.fail(tok, diag.LexBadNumber, "invalid numeric constant '%s'", tok.Text)
		}
		return false
	}

	tok.Kind = token.Num
	tok.Val = int64(v)
	// A constant with no sign of its own that cannot fit a signed 64-bit
	// value reads as unsigned, as non-decimal constants do in C.
	tok.IsUns = hasU || (base != 10 && v > math.MaxInt64)
	return true
}

// joinAdjacentStringLiterals merges runs of neighboring string tokens
// into one literal, as translation phase 6 does. Encoding prefixes must
// agree; a plain literal takes the encoding of its prefixed neighbor.
func (p *Preprocessor) joinAdjacentStringLiterals(tok *token.Token) {
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		if t.Kind != token.Str || t.Next == nil || t.Next.Kind != token.Str {
			continue
		}

		kind := t.StrTy
		var text strings.Builder
		text.WriteString(t.Text)
		body := t.StrVal[:len(t.StrVal)-1]

		n := t.Next
		for n != nil && n.Kind == token.Str {
			if n.StrTy != token.StrNone {
				if kind != token.StrNone && kind != n.StrTy {
					p.fail(n, diag.PreMixedStrings,
						"concatenation of string literals with different encodings")
				}
				kind = n.StrTy
			}
			text.WriteByte(' ')
			text.WriteString(n.Text)
			body = append(body, n.StrVal[:len(n.StrVal)-1]...)
			n = n.Next
		}

		t.Text = text.String()
		t.StrVal = append(body, 0)
		t.StrTy = kind
		t.Next = n
	}
}
