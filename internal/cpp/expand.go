package cpp

import (
	"strconv"
	"strings"

	"cast/internal/diag"
	"cast/internal/token"
)

// addHideset returns a copy of the list with hs unioned onto every
// token's hideset.
func addHideset(tok *token.Token, hs *token.Hideset) *token.Token {
	var head token.Token
	cur := &head
	for ; tok != nil; tok = tok.Next {
		t := tok.Copy()
		t.Hideset = t.Hideset.Union(hs)
		cur.Next = t
		cur = cur.Next
	}
	return head.Next
}

// appendTokens splices tok2 after the tokens of tok1, dropping tok1's
// EOF terminator.
func appendTokens(tok1, tok2 *token.Token) *token.Token {
	if tok1.Kind == token.EOF {
		return tok2
	}
	var head token.Token
	cur := &head
	for ; tok1.Kind != token.EOF; tok1 = tok1.Next {
		cur.Next = tok1.Copy()
		cur = cur.Next
	}
	cur.Next = tok2
	return head.Next
}

// joinTokens renders a token run as text with single-space separation
// wherever the source had whitespace.
func joinTokens(tok, end *token.Token) string {
	var sb strings.Builder
	for t := tok; t != end && t.Kind != token.EOF; t = t.Next {
		if t != tok && t.HasSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// quoteString renders str as a C string literal, escaping backslashes
// and double quotes.
func quoteString(str string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(str); i++ {
		if str[i] == '\\' || str[i] == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(str[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// newStrToken makes a string-literal token spelled from str, located at
// tmpl for diagnostics.
func (p *Preprocessor) newStrToken(str string, tmpl *token.Token) *token.Token {
	return p.tokenizeVirtual(tmpl.FileName(), []byte(quoteString(str)+"\n"))
}

// newNumToken makes a numeric token for the built-in dynamic macros.
func (p *Preprocessor) newNumToken(val int64, tmpl *token.Token) *token.Token {
	return p.tokenizeVirtual(tmpl.FileName(), []byte(strconv.FormatInt(val, 10)+"\n"))
}

// stringize implements the # operator: one string literal whose text is
// the argument's tokens with normalized single-space separation.
func (p *Preprocessor) stringize(hash, arg *token.Token) *token.Token {
	s := joinTokens(arg, nil)
	return p.newStrToken(s, hash)
}

// paste implements the ## operator: the concatenated spelling must
// re-lex as exactly one valid token.
func (p *Preprocessor) paste(lhs, rhs *token.Token) *token.Token {
	buf := lhs.Text + rhs.Text
	tok := p.tokenizeVirtual(lhs.FileName(), []byte(buf+"\n"))
	if tok.Kind == token.EOF || tok.Kind == token.Invalid || tok.Next.Kind != token.EOF {
		p.fail(lhs, diag.PreBadPaste, "pasting forms '%s', an invalid preprocessing token", buf)
	}
	return tok
}

// replaceWithPaste overwrites lhs in place with lhs##rhs, keeping lhs's
// placement flags so rendering stays on the original line.
func (p *Preprocessor) replaceWithPaste(lhs, rhs *token.Token) {
	atBOL, hasSpace := lhs.AtBOL, lhs.HasSpace
	pasted := p.paste(lhs, rhs)
	next := lhs.Next
	*lhs = *pasted
	lhs.Next = next
	lhs.AtBOL = atBOL
	lhs.HasSpace = hasSpace
}

// readMacroArgOne collects a single argument: tokens up to an unnested
// `)` or, unless readRest, an unnested `,`.
func (p *Preprocessor) readMacroArgOne(tok *token.Token, readRest bool) (rest *token.Token, arg *macroArg) {
	var head token.Token
	cur := &head
	level := 0

	for {
		if level == 0 && tok.Equal(")") {
			break
		}
		if level == 0 && !readRest && tok.Equal(",") {
			break
		}
		if tok.Kind == token.EOF {
			p.fail(tok, diag.PreUnterminatedArgs, "unterminated macro argument list")
		}

		switch {
		case tok.Equal("("):
			level++
		case tok.Equal(")"):
			level--
		}

		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}

	cur.Next = token.NewEOF(tok)
	return tok, &macroArg{tok: head.Next}
}

// readMacroArgs collects all arguments of an invocation. tok is the
// macro name; its Next is the opening paren. Returns rest pointing at
// the closing paren.
func (p *Preprocessor) readMacroArgs(tok *token.Token, m *Macro) (rest *token.Token, args []*macroArg) {
	start := tok
	tok = tok.Next.Next // skip name and '('

	for i, param := range m.Params {
		if i > 0 {
			tok = p.skipPunct(tok, ",")
		}
		var arg *macroArg
		tok, arg = p.readMacroArgOne(tok, false)
		arg.name = param
		args = append(args, arg)
	}

	if m.VaArgsName != "" {
		var arg *macroArg
		if tok.Equal(")") {
			// Zero variadic arguments bind an empty __VA_ARGS__.
			arg = &macroArg{tok: token.NewEOF(tok)}
		} else {
			if len(m.Params) > 0 {
				tok = p.skipPunct(tok, ",")
			}
			tok, arg = p.readMacroArgOne(tok, true)
		}
		arg.name = m.VaArgsName
		arg.isVaArgs = true
		args = append(args, arg)
	} else if len(m.Params) == 0 {
		// Object-style call of a zero-parameter function-like macro:
		// only `()` is acceptable.
		if !tok.Equal(")") {
			tok, _ = p.readMacroArgOne(tok, true)
			if tok.Kind != token.EOF {
				p.fail(start, diag.PreArity, "too many arguments to macro '%s'", m.Name)
			}
		}
	}

	if !tok.Equal(")") {
		p.fail(start, diag.PreArity, "too many arguments to macro '%s'", m.Name)
	}
	return tok, args
}

func findArg(args []*macroArg, tok *token.Token) *macroArg {
	if tok == nil || tok.Kind != token.Ident {
		return nil
	}
	for _, a := range args {
		if a.name == tok.Text {
			return a
		}
	}
	return nil
}

func hasVarargs(args []*macroArg) bool {
	for _, a := range args {
		if a.isVaArgs {
			return a.tok.Kind != token.EOF
		}
	}
	return false
}

// subst replaces parameters in a macro body with the collected
// arguments, applying # and ## before substituting anything else.
// Plain parameter occurrences receive their argument fully pre-expanded;
// operands of # and ## receive it verbatim.
func (p *Preprocessor) subst(tok *token.Token, args []*macroArg) *token.Token {
	var head token.Token
	cur := &head

	for tok.Kind != token.EOF {
		// "#" followed by a parameter becomes the stringized actual.
		if tok.Equal("#") {
			arg := findArg(args, tok.Next)
			if arg == nil {
				p.fail(tok, diag.PreStrayHashParam, "'#' is not followed by a macro parameter")
			}
			cur.Next = p.stringize(tok, arg.tok)
			cur = cur.Next
			tok = tok.Next.Next
			continue
		}

		// [GNU] `,##__VA_ARGS__` drops the comma when the variadic
		// bundle is empty.
		if tok.Equal(",") && tok.Next.Equal("##") {
			if arg := findArg(args, tok.Next.Next); arg != nil && arg.isVaArgs {
				if arg.tok.Kind == token.EOF {
					tok = tok.Next.Next.Next
				} else {
					cur.Next = tok.Copy()
					cur = cur.Next
					tok = tok.Next.Next
				}
				continue
			}
		}

		if tok.Equal("##") {
			if cur == &head {
				p.fail(tok, diag.PrePasteEdge, "'##' cannot appear at start of macro expansion")
			}
			if tok.Next.Kind == token.EOF {
				p.fail(tok, diag.PrePasteEdge, "'##' cannot appear at end of macro expansion")
			}

			if arg := findArg(args, tok.Next); arg != nil {
				if arg.tok.Kind != token.EOF {
					p.replaceWithPaste(cur, arg.tok)
					for t := arg.tok.Next; t.Kind != token.EOF; t = t.Next {
						cur.Next = t.Copy()
						cur = cur.Next
					}
				}
				tok = tok.Next.Next
				continue
			}

			p.replaceWithPaste(cur, tok.Next)
			tok = tok.Next.Next
			continue
		}

		arg := findArg(args, tok)

		// An argument on the left of ## is substituted unexpanded.
		if arg != nil && tok.Next.Equal("##") {
			rhs := tok.Next.Next

			if arg.tok.Kind == token.EOF {
				// Empty left operand: the right operand passes
				// through (substituted if it is a parameter too).
				if arg2 := findArg(args, rhs); arg2 != nil {
					for t := arg2.tok; t.Kind != token.EOF; t = t.Next {
						cur.Next = t.Copy()
						cur = cur.Next
					}
				} else {
					cur.Next = rhs.Copy()
					cur = cur.Next
				}
				tok = rhs.Next
				continue
			}

			for t := arg.tok; t.Kind != token.EOF; t = t.Next {
				cur.Next = t.Copy()
				cur = cur.Next
			}
			tok = tok.Next
			continue
		}

		// __VA_OPT__(x) keeps x only when variadic arguments exist.
		if tok.Equal("__VA_OPT__") && tok.Next.Equal("(") {
			var opt *macroArg
			tok, opt = p.readMacroArgOne(tok.Next.Next, true)
			if hasVarargs(args) {
				for t := opt.tok; t.Kind != token.EOF; t = t.Next {
					cur.Next = t.Copy()
					cur = cur.Next
				}
			}
			tok = p.skipPunct(tok, ")")
			continue
		}

		// A plain parameter is replaced by its argument, which is
		// fully macro-expanded before substitution.
		if arg != nil {
			t := p.expandAll(arg.tok)
			t.AtBOL = tok.AtBOL
			t.HasSpace = tok.HasSpace
			for ; t.Kind != token.EOF; t = t.Next {
				cur.Next = t.Copy()
				cur = cur.Next
			}
			tok = tok.Next
			continue
		}

		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}

	cur.Next = tok
	return head.Next
}

// expandMacro expands tok if it invokes a macro. It returns the stream
// to rescan and whether an expansion happened; a blocked or undefined
// identifier passes through unchanged.
func (p *Preprocessor) expandMacro(tok *token.Token) (rest *token.Token, expanded bool) {
	if tok.Hideset.Contains(tok.Text) {
		return tok, false
	}

	m := p.findMacro(tok)
	if m == nil {
		return tok, false
	}

	// Built-in dynamic macros resolve from the current location, not a
	// stored body.
	if m.handler != nil {
		out := m.handler(p, tok)
		out.Next = tok.Next
		out.AtBOL = tok.AtBOL
		out.HasSpace = tok.HasSpace
		return out, true
	}

	// Object-like: body tokens get the invocation's hideset plus the
	// macro's own name.
	if m.IsObjlike {
		hs := tok.Hideset.Union(token.NewHideset(m.Name))
		body := addHideset(m.Body, hs)
		for t := body; t.Kind != token.EOF; t = t.Next {
			t.Origin = tok
		}
		// An empty body makes rest the token after the invocation; that
		// token keeps its own layout flags.
		rest = appendTokens(body, tok.Next)
		if rest != tok.Next {
			rest.AtBOL = tok.AtBOL
			rest.HasSpace = tok.HasSpace
		}
		return rest, true
	}

	// A function-like macro name without an argument list is a plain
	// identifier.
	if !tok.Next.Equal("(") {
		return tok, false
	}

	// Function-like: the new hideset is the intersection of the macro
	// token's and the closing paren's, plus the macro name. Tokens of
	// one invocation can come from different expansions, and the
	// intersection is what keeps the guard correct for all of them.
	macroTok := tok
	rparen, args := p.readMacroArgs(tok, m)

	hs := macroTok.Hideset.Intersect(rparen.Hideset)
	hs = hs.Union(token.NewHideset(m.Name))

	body := p.subst(m.Body, args)
	body = addHideset(body, hs)
	for t := body; t.Kind != token.EOF; t = t.Next {
		t.Origin = macroTok
	}
	rest = appendTokens(body, rparen.Next)
	if rest != rparen.Next {
		rest.AtBOL = macroTok.AtBOL
		rest.HasSpace = macroTok.HasSpace
	}
	return rest, true
}

// expandAll fully macro-expands an EOF-terminated token list that
// contains no directives (macro arguments, #if conditions, #include
// operands).
func (p *Preprocessor) expandAll(tok *token.Token) *token.Token {
	var head token.Token
	cur := &head

	for tok.Kind != token.EOF {
		if tok.Kind == token.Ident {
			var ok bool
			tok, ok = p.expandMacro(tok)
			if ok {
				continue
			}
		}
		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}
	cur.Next = tok
	return head.Next
}
