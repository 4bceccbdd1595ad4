package cpp

import (
	"cast/internal/diag"
	"cast/internal/token"
)

type condInclCtx int

const (
	inThen condInclCtx = iota
	inElif
	inElse
)

// condIncl is one frame of the #if stack. included records whether any
// branch of this group has been taken yet.
type condIncl struct {
	next     *condIncl
	ctx      condInclCtx
	tok      *token.Token
	included bool
}

func (p *Preprocessor) pushCondIncl(tok *token.Token, included bool) {
	p.condIncl = &condIncl{next: p.condIncl, ctx: inThen, tok: tok, included: included}
}

// skipCondIncl drops the tokens of a non-live branch. Only directive
// structure is honored there; the text itself may be malformed. It stops
// at the #elif/#else/#endif of the current group, leaving tok on the '#'.
func (p *Preprocessor) skipCondIncl(tok *token.Token) *token.Token {
	for tok.Kind != token.EOF {
		if tok.IsHash() && tok.AtBOL {
			d := tok.Next
			if d.IsIdent("if") || d.IsIdent("ifdef") || d.IsIdent("ifndef") {
				tok = p.skipCondIncl2(d.Next)
				continue
			}
			if d.IsIdent("elif") || d.IsIdent("elifdef") || d.IsIdent("elifndef") ||
				d.IsIdent("else") || d.IsIdent("endif") {
				return tok
			}
		}
		tok = tok.Next
	}
	return tok
}

// skipCondIncl2 skips a whole nested group through its matching #endif.
func (p *Preprocessor) skipCondIncl2(tok *token.Token) *token.Token {
	for tok.Kind != token.EOF {
		if tok.IsHash() && tok.AtBOL {
			d := tok.Next
			if d.IsIdent("if") || d.IsIdent("ifdef") || d.IsIdent("ifndef") {
				tok = p.skipCondIncl2(d.Next)
				continue
			}
			if d.IsIdent("endif") {
				return d.Next
			}
		}
		tok = tok.Next
	}
	return tok
}

// readDefined handles the `defined` operator: `defined NAME` and
// `defined(NAME)` become 1 or 0 before any macro expansion happens.
func (p *Preprocessor) readDefined(tok *token.Token) (rest, out *token.Token) {
	start := tok
	tok = tok.Next // skip "defined"

	paren := false
	if tok.Equal("(") {
		paren = true
		tok = tok.Next
	}
	if tok.Kind != token.Ident {
		p.fail(start, diag.CondBadExpression, "macro name must be an identifier")
	}
	name := tok
	tok = tok.Next
	if paren {
		tok = p.skipPunct(tok, ")")
	}

	val := int64(0)
	if p.IsDefined(name.Text) {
		val = 1
	}
	return tok, p.newNumToken(val, start)
}

// readConstExpr prepares the operand line of #if/#elif: `defined` is
// resolved first, then macros expand, then any identifier left over
// evaluates to zero.
func (p *Preprocessor) readConstExpr(tok *token.Token) *token.Token {
	var head token.Token
	cur := &head
	for tok.Kind != token.EOF {
		if tok.IsIdent("defined") {
			var out *token.Token
			tok, out = p.readDefined(tok)
			cur.Next = out
			cur = cur.Next
			continue
		}
		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}
	cur.Next = tok
	return head.Next
}

// evalConstExpr evaluates the controlling expression of #if or #elif.
// tok is the first operand token; start anchors diagnostics for an
// empty operand.
func (p *Preprocessor) evalConstExpr(start, tok *token.Token) int64 {
	_, line := copyLine(tok)
	if line.Kind == token.EOF {
		p.fail(start, diag.CondNoExpression, "no expression for conditional directive")
	}

	line = p.readConstExpr(line)
	line = p.expandAll(line)

	// Identifiers that survive expansion (undefined macros, keywords)
	// evaluate to zero.
	for t := line; t.Kind != token.EOF; t = t.Next {
		if t.Kind == token.Invalid && t.Err != nil {
			p.fail(t, t.Err.Code, "%s", t.Err.Msg)
		}
		if t.Kind == token.Ident {
			next := t.Next
			zero := p.newNumToken(0, t)
			zero.AtBOL = t.AtBOL
			zero.HasSpace = t.HasSpace
			*t = *zero
			t.Next = next
		}
	}

	p.convertPPTokens(line)

	val, rest := p.evalExpr(line)
	if rest.Kind != token.EOF {
		p.fail(rest, diag.CondBadExpression, "extra token in conditional expression")
	}
	return val
}

// tryEvalConstExpr evaluates a controlling expression, catching the
// diagnostic a malformed expression throws. The caller keeps its
// conditional frame either way and treats a failed condition as false.
func (p *Preprocessor) tryEvalConstExpr(start, tok *token.Token) (val int64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			pe, isPP := r.(*ppError)
			if !isPP {
				panic(r)
			}
			p.report(pe)
		}
	}()
	return p.evalConstExpr(start, tok), true
}
