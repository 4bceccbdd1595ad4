package cpp

import (
	"cast/internal/diag"
	"cast/internal/token"
)

// preprocess is the main loop: expand macros, execute directives, and
// emit the surviving tokens. A diagnostic thrown while handling a token
// is reported and the rest of its physical line is skipped, so one bad
// line yields one error.
func (p *Preprocessor) preprocess(tok *token.Token) *token.Token {
	var head token.Token
	cur := &head
	for tok.Kind != token.EOF {
		tok = p.processOne(tok, &cur)
	}
	cur.Next = tok
	return head.Next
}

func (p *Preprocessor) processOne(tok *token.Token, cur **token.Token) (rest *token.Token) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ppError)
			if !ok {
				panic(r)
			}
			p.report(pe)
			rest = skipRestOfLine(tok)
		}
	}()

	// A malformed literal surfaces only here, once its token reaches
	// live context; inside a skipped branch it stays silent.
	if tok.Kind == token.Invalid && tok.Err != nil {
		p.fail(tok, tok.Err.Code, "%s", tok.Err.Msg)
	}

	// Ordinary macro expansion.
	if tok.Kind == token.Ident {
		if rest, ok := p.expandMacro(tok); ok {
			return rest
		}
	}

	// A '#' at the beginning of a line starts a directive.
	if !tok.IsHash() || !tok.AtBOL {
		tok.LineDelta = tok.File.LineDelta
		tok.DisplayName = tok.File.Name()
		(*cur).Next = tok
		*cur = tok
		return tok.Next
	}

	start := tok
	tok = tok.Next

	// The null directive.
	if tok.AtBOL || tok.Kind == token.EOF {
		return tok
	}

	// [GNU] `# <num> "file" flags...` line markers.
	if tok.Kind == token.PPNum {
		return p.readLineMarker(start, tok)
	}

	switch tok.Text {
	case "include":
		return p.doInclude(start, tok.Next, false)

	case "include_next":
		return p.doInclude(start, tok.Next, true)

	case "embed":
		return p.doEmbed(start, tok.Next)

	case "define":
		return p.readMacroDefinition(tok.Next)

	case "undef":
		tok = tok.Next
		if tok.Kind != token.Ident {
			p.fail(tok, diag.PreMacroName, "macro name must be an identifier")
		}
		p.UndefMacro(tok.Text)
		return p.skipLineExtra(tok.Next)

	case "if":
		// The frame goes up before the condition is evaluated, so the
		// matching #endif is never stray even when the condition is
		// malformed. A condition that fails to evaluate reads as false.
		p.pushCondIncl(start, false)
		val, ok := p.tryEvalConstExpr(start, tok.Next)
		tok = skipRestOfLine(tok)
		if ok && val != 0 {
			p.condIncl.included = true
			return tok
		}
		return p.skipCondIncl(tok)

	case "ifdef":
		return p.doIfdef(start, tok.Next, false)

	case "ifndef":
		return p.doIfdef(start, tok.Next, true)

	case "elif":
		if p.condIncl == nil || p.condIncl.ctx == inElse {
			p.fail(start, diag.CondStrayElif, "stray #elif")
		}
		p.condIncl.ctx = inElif
		val := int64(0)
		if !p.condIncl.included {
			val, _ = p.tryEvalConstExpr(start, tok.Next)
		}
		tok = skipRestOfLine(tok)
		if !p.condIncl.included && val != 0 {
			p.condIncl.included = true
			return tok
		}
		return p.skipCondIncl(tok)

	case "elifdef", "elifndef":
		if p.condIncl == nil || p.condIncl.ctx == inElse {
			p.fail(start, diag.CondStrayElif, "stray #%s", tok.Text)
		}
		p.condIncl.ctx = inElif
		negate := tok.Text == "elifndef"
		name := tok.Next
		if name.Kind != token.Ident {
			p.fail(name, diag.PreMacroName, "macro name must be an identifier")
		}
		hit := p.IsDefined(name.Text) != negate
		tok = p.skipLineExtra(name.Next)
		if !p.condIncl.included && hit {
			p.condIncl.included = true
			return tok
		}
		return p.skipCondIncl(tok)

	case "else":
		if p.condIncl == nil || p.condIncl.ctx == inElse {
			p.fail(start, diag.CondStrayElse, "stray #else")
		}
		p.condIncl.ctx = inElse
		tok = p.skipLineExtra(tok.Next)
		if p.condIncl.included {
			return p.skipCondIncl(tok)
		}
		return tok

	case "endif":
		if p.condIncl == nil {
			p.fail(start, diag.CondStrayEndif, "stray #endif")
		}
		p.condIncl = p.condIncl.next
		return p.skipLineExtra(tok.Next)

	case "line":
		return p.readLineMarker(start, tok.Next)

	case "pragma":
		return p.doPragma(start, tok.Next)

	case "error":
		p.fail(start, diag.PreErrorDirective, "#error %s", joinTokens(tok.Next, nil))
		return nil // unreachable

	case "warning":
		p.warn(start, diag.PreWarningDirective, "#warning %s", joinTokens(tok.Next, nil))
		return skipRestOfLine(tok)
	}

	p.fail(tok, diag.PreBadDirective, "invalid preprocessor directive '#%s'", tok.Text)
	return nil // unreachable
}

func (p *Preprocessor) doIfdef(start, tok *token.Token, negate bool) *token.Token {
	if tok.Kind != token.Ident {
		p.fail(tok, diag.PreMacroName, "macro name must be an identifier")
	}
	hit := p.IsDefined(tok.Text) != negate
	p.pushCondIncl(start, hit)
	tok = p.skipLineExtra(tok.Next)
	if !hit {
		tok = p.skipCondIncl(tok)
	}
	return tok
}

// doPragma handles `#pragma once`; every other pragma is preserved for
// later phases by passing the whole line through.
func (p *Preprocessor) doPragma(start, tok *token.Token) *token.Token {
	if tok.IsIdent("once") {
		p.pragmaOnce[canonPath(start.File.Path)] = true
		return p.skipLineExtra(tok.Next)
	}
	return skipRestOfLine(tok)
}

// readLineMarker handles both `#line N "file"` and the GNU `# N "file"`
// form. The operand line is macro-expanded first. The override applies
// to every following token of the same file.
func (p *Preprocessor) readLineMarker(start, tok *token.Token) *token.Token {
	rest, line := copyLine(tok)
	line = p.expandAll(line)
	p.convertPPTokens(line)

	if line.Kind != token.Num || line.IsFloat {
		p.fail(line, diag.PreBadLineMarker, "invalid line marker")
	}
	start.File.LineDelta = int32(line.Val) - int32(start.Line) - 1

	line = line.Next
	if line.Kind == token.EOF {
		return rest
	}
	if line.Kind != token.Str {
		p.fail(line, diag.PreBadLineMarker, "filename expected")
	}
	name := string(line.StrVal)
	if n := len(name); n > 0 && name[n-1] == 0 {
		name = name[:n-1]
	}
	start.File.DisplayName = name
	// Trailing GNU flag digits are accepted and ignored.
	return rest
}

// skipLineExtra expects end of line; any extra tokens draw one warning.
func (p *Preprocessor) skipLineExtra(tok *token.Token) *token.Token {
	if tok.AtBOL || tok.Kind == token.EOF {
		return tok
	}
	p.warn(tok, diag.PreExtraToken, "extra token after directive")
	return skipRestOfLine(tok)
}

// skipRestOfLine drops tokens up to the next line start.
func skipRestOfLine(tok *token.Token) *token.Token {
	if tok.Kind == token.EOF {
		return tok
	}
	tok = tok.Next
	for tok.Kind != token.EOF && !tok.AtBOL {
		tok = tok.Next
	}
	return tok
}
