package cpp

import (
	"cast/internal/diag"
	"cast/internal/token"
)

// ppInt is a value in the controlling expression of #if. Per C11
// 6.10.1p4 operands are intmax_t or uintmax_t; one unsigned operand
// makes the operation unsigned.
type ppInt struct {
	v   int64
	uns bool
}

func boolInt(b bool) ppInt {
	if b {
		return ppInt{v: 1}
	}
	return ppInt{v: 0}
}

// evalExpr parses and evaluates a conditional-expression over converted
// numeric tokens. It returns the value and the first unconsumed token.
func (p *Preprocessor) evalExpr(tok *token.Token) (int64, *token.Token) {
	val, rest := p.evalTernary(tok)
	return val.v, rest
}

// evalDead parses an operand whose value cannot affect the result, as
// on the right of "0 &&". The operand is still checked for syntax, but
// value-dependent errors like division by zero are suppressed, so
// "#if 0 && 1/0" is a valid conditional.
func (p *Preprocessor) evalDead(eval func(*token.Token) (ppInt, *token.Token), tok *token.Token) (ppInt, *token.Token) {
	p.condDead++
	defer func() { p.condDead-- }()
	return eval(tok)
}

func (p *Preprocessor) evalTernary(tok *token.Token) (ppInt, *token.Token) {
	cond, tok := p.evalLogOr(tok)
	if !tok.Equal("?") {
		return cond, tok
	}
	live := cond.v != 0
	thenVal, tok := p.evalArm(tok.Next, live)
	tok = p.skipPunct(tok, ":")
	elseVal, tok := p.evalArm(tok, !live)
	if live {
		return thenVal, tok
	}
	return elseVal, tok
}

func (p *Preprocessor) evalArm(tok *token.Token, live bool) (ppInt, *token.Token) {
	if live {
		return p.evalTernary(tok)
	}
	return p.evalDead(p.evalTernary, tok)
}

func (p *Preprocessor) evalLogOr(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalLogAnd(tok)
	for tok.Equal("||") {
		var rhs ppInt
		if lhs.v != 0 {
			rhs, tok = p.evalDead(p.evalLogAnd, tok.Next)
		} else {
			rhs, tok = p.evalLogAnd(tok.Next)
		}
		lhs = boolInt(lhs.v != 0 || rhs.v != 0)
	}
	return lhs, tok
}

func (p *Preprocessor) evalLogAnd(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalBitOr(tok)
	for tok.Equal("&&") {
		var rhs ppInt
		if lhs.v == 0 {
			rhs, tok = p.evalDead(p.evalBitOr, tok.Next)
		} else {
			rhs, tok = p.evalBitOr(tok.Next)
		}
		lhs = boolInt(lhs.v != 0 && rhs.v != 0)
	}
	return lhs, tok
}

func (p *Preprocessor) evalBitOr(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalBitXor(tok)
	for tok.Equal("|") {
		var rhs ppInt
		rhs, tok = p.evalBitXor(tok.Next)
		lhs = ppInt{v: lhs.v | rhs.v, uns: lhs.uns || rhs.uns}
	}
	return lhs, tok
}

func (p *Preprocessor) evalBitXor(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalBitAnd(tok)
	for tok.Equal("^") {
		var rhs ppInt
		rhs, tok = p.evalBitAnd(tok.Next)
		lhs = ppInt{v: lhs.v ^ rhs.v, uns: lhs.uns || rhs.uns}
	}
	return lhs, tok
}

func (p *Preprocessor) evalBitAnd(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalEquality(tok)
	for tok.Equal("&") {
		var rhs ppInt
		rhs, tok = p.evalEquality(tok.Next)
		lhs = ppInt{v: lhs.v & rhs.v, uns: lhs.uns || rhs.uns}
	}
	return lhs, tok
}

func (p *Preprocessor) evalEquality(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalRelational(tok)
	for {
		switch {
		case tok.Equal("=="):
			var rhs ppInt
			rhs, tok = p.evalRelational(tok.Next)
			lhs = boolInt(lhs.v == rhs.v)
		case tok.Equal("!="):
			var rhs ppInt
			rhs, tok = p.evalRelational(tok.Next)
			lhs = boolInt(lhs.v != rhs.v)
		default:
			return lhs, tok
		}
	}
}

func lessThan(a, b ppInt) bool {
	if a.uns || b.uns {
		return uint64(a.v) < uint64(b.v)
	}
	return a.v < b.v
}

func (p *Preprocessor) evalRelational(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalShift(tok)
	for {
		switch {
		case tok.Equal("<"):
			var rhs ppInt
			rhs, tok = p.evalShift(tok.Next)
			lhs = boolInt(lessThan(lhs, rhs))
		case tok.Equal("<="):
			var rhs ppInt
			rhs, tok = p.evalShift(tok.Next)
			lhs = boolInt(!lessThan(rhs, lhs))
		case tok.Equal(">"):
			var rhs ppInt
			rhs, tok = p.evalShift(tok.Next)
			lhs = boolInt(lessThan(rhs, lhs))
		case tok.Equal(">="):
			var rhs ppInt
			rhs, tok = p.evalShift(tok.Next)
			lhs = boolInt(!lessThan(lhs, rhs))
		default:
			return lhs, tok
		}
	}
}

func (p *Preprocessor) evalShift(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalAdd(tok)
	for {
		switch {
		case tok.Equal("<<"):
			var rhs ppInt
			rhs, tok = p.evalAdd(tok.Next)
			lhs = ppInt{v: lhs.v << (uint64(rhs.v) & 63), uns: lhs.uns}
		case tok.Equal(">>"):
			var rhs ppInt
			rhs, tok = p.evalAdd(tok.Next)
			sh := uint64(rhs.v) & 63
			if lhs.uns {
				lhs = ppInt{v: int64(uint64(lhs.v) >> sh), uns: true}
			} else {
				lhs = ppInt{v: lhs.v >> sh}
			}
		default:
			return lhs, tok
		}
	}
}

func (p *Preprocessor) evalAdd(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalMul(tok)
	for {
		switch {
		case tok.Equal("+"):
			var rhs ppInt
			rhs, tok = p.evalMul(tok.Next)
			lhs = ppInt{v: lhs.v + rhs.v, uns: lhs.uns || rhs.uns}
		case tok.Equal("-"):
			var rhs ppInt
			rhs, tok = p.evalMul(tok.Next)
			lhs = ppInt{v: lhs.v - rhs.v, uns: lhs.uns || rhs.uns}
		default:
			return lhs, tok
		}
	}
}

func (p *Preprocessor) evalMul(tok *token.Token) (ppInt, *token.Token) {
	lhs, tok := p.evalUnary(tok)
	for {
		switch {
		case tok.Equal("*"):
			var rhs ppInt
			rhs, tok = p.evalUnary(tok.Next)
			lhs = ppInt{v: lhs.v * rhs.v, uns: lhs.uns || rhs.uns}
		case tok.Equal("/"):
			op := tok
			var rhs ppInt
			rhs, tok = p.evalUnary(tok.Next)
			switch {
			case rhs.v == 0:
				if p.condDead == 0 {
					p.fail(op, diag.CondDivByZero, "division by zero in conditional expression")
				}
				lhs = ppInt{uns: lhs.uns || rhs.uns}
			case lhs.uns || rhs.uns:
				lhs = ppInt{v: int64(uint64(lhs.v) / uint64(rhs.v)), uns: true}
			default:
				lhs = ppInt{v: lhs.v / rhs.v}
			}
		case tok.Equal("%"):
			op := tok
			var rhs ppInt
			rhs, tok = p.evalUnary(tok.Next)
			switch {
			case rhs.v == 0:
				if p.condDead == 0 {
					p.fail(op, diag.CondDivByZero, "division by zero in conditional expression")
				}
				lhs = ppInt{uns: lhs.uns || rhs.uns}
			case lhs.uns || rhs.uns:
				lhs = ppInt{v: int64(uint64(lhs.v) % uint64(rhs.v)), uns: true}
			default:
				lhs = ppInt{v: lhs.v % rhs.v}
			}
		default:
			return lhs, tok
		}
	}
}

func (p *Preprocessor) evalUnary(tok *token.Token) (ppInt, *token.Token) {
	switch {
	case tok.Equal("+"):
		return p.evalUnary(tok.Next)
	case tok.Equal("-"):
		v, rest := p.evalUnary(tok.Next)
		return ppInt{v: -v.v, uns: v.uns}, rest
	case tok.Equal("!"):
		v, rest := p.evalUnary(tok.Next)
		return boolInt(v.v == 0), rest
	case tok.Equal("~"):
		v, rest := p.evalUnary(tok.Next)
		return ppInt{v: ^v.v, uns: v.uns}, rest
	}
	return p.evalPrimary(tok)
}

func (p *Preprocessor) evalPrimary(tok *token.Token) (ppInt, *token.Token) {
	if tok.Equal("(") {
		v, rest := p.evalTernary(tok.Next)
		rest = p.skipPunct(rest, ")")
		return v, rest
	}
	if tok.Kind != token.Num || tok.IsFloat {
		p.fail(tok, diag.CondBadExpression, "token is not a valid operand of a conditional expression")
	}
	return ppInt{v: tok.Val, uns: tok.IsUns}, tok.Next
}
