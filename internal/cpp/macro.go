package cpp

import (
	"strings"

	"cast/internal/diag"
	"cast/internal/token"
)

// handlerFn resolves a built-in dynamic macro at its point of expansion.
type handlerFn func(p *Preprocessor, tmpl *token.Token) *token.Token

// Macro is one entry of the macro table.
type Macro struct {
	Name      string
	IsObjlike bool
	Params    []string
	// VaArgsName is the variadic binding name ("__VA_ARGS__" for
	// `...`, the parameter's own name for `name...`); empty for a
	// non-variadic macro.
	VaArgsName string
	Body       *token.Token
	handler    handlerFn
}

// macroArg is one collected argument of a function-like invocation.
type macroArg struct {
	name     string
	isVaArgs bool
	tok      *token.Token // EOF-terminated list
}

// findMacro returns the definition invoked by tok, or nil.
func (p *Preprocessor) findMacro(tok *token.Token) *Macro {
	if tok.Kind != token.Ident {
		return nil
	}
	return p.macros[tok.Text]
}

func (p *Preprocessor) addMacro(name string, isObjlike bool, body *token.Token) *Macro {
	m := &Macro{Name: name, IsObjlike: isObjlike, Body: body}
	p.macros[name] = m
	return m
}

// sameBody reports whether two replacement lists match token for token,
// including spacing, per the benign-redefinition rule.
func sameBody(a, b *token.Token) bool {
	for {
		aEnd := a == nil || a.Kind == token.EOF
		bEnd := b == nil || b.Kind == token.EOF
		if aEnd || bEnd {
			return aEnd == bEnd
		}
		if a.Text != b.Text || a.HasSpace != b.HasSpace {
			return false
		}
		a, b = a.Next, b.Next
	}
}

// readMacroParams parses a function-like parameter list. tok sits after
// the opening paren.
func (p *Preprocessor) readMacroParams(tok *token.Token) (rest *token.Token, params []string, vaArgs string) {
	for !tok.Equal(")") {
		if len(params) > 0 || vaArgs != "" {
			tok = p.skipPunct(tok, ",")
		}

		if tok.Equal("...") {
			vaArgs = "__VA_ARGS__"
			rest = p.skipPunct(tok.Next, ")")
			return rest, params, vaArgs
		}

		if tok.Kind != token.Ident {
			p.fail(tok, diag.PreMacroName, "expected an identifier")
		}

		// [GNU] `name...` names the variadic bundle.
		if tok.Next.Equal("...") {
			vaArgs = tok.Text
			rest = p.skipPunct(tok.Next.Next, ")")
			return rest, params, vaArgs
		}

		params = append(params, tok.Text)
		tok = tok.Next
	}
	return tok.Next, params, vaArgs
}

// readMacroDefinition handles the tail of a #define line.
func (p *Preprocessor) readMacroDefinition(tok *token.Token) (rest *token.Token) {
	if tok.Kind != token.Ident {
		p.fail(tok, diag.PreMacroName, "macro name must be an identifier")
	}
	name := tok.Text
	nameTok := tok
	tok = tok.Next

	prev := p.macros[name]

	var m *Macro
	if !tok.HasSpace && tok.Equal("(") {
		var params []string
		var vaArgs string
		tok, params, vaArgs = p.readMacroParams(tok.Next)
		var body *token.Token
		rest, body = copyLine(tok)
		m = p.addMacro(name, false, body)
		m.Params = params
		m.VaArgsName = vaArgs
	} else {
		var body *token.Token
		rest, body = copyLine(tok)
		m = p.addMacro(name, true, body)
	}

	if prev != nil && prev.handler == nil && !sameBody(prev.Body, m.Body) {
		p.warn(nameTok, diag.PreRedefined, "macro '%s' redefined", name)
	}
	return rest
}

// DefineMacro installs an object-like macro from a textual body, as used
// for predefined macros and -D seeds.
func (p *Preprocessor) DefineMacro(name, body string) {
	p.addMacro(name, true, p.tokenizeVirtual("<built-in>", []byte(body+"\n")))
}

// UndefMacro removes a macro; undefining an unknown name is a no-op.
func (p *Preprocessor) UndefMacro(name string) {
	delete(p.macros, name)
}

// IsDefined reports whether name is currently defined.
func (p *Preprocessor) IsDefined(name string) bool {
	_, ok := p.macros[name]
	return ok
}

// defineCmdline handles a -D seed: "NAME" defines it as 1, "NAME=value"
// as the given value.
func (p *Preprocessor) defineCmdline(def string) {
	if name, val, ok := strings.Cut(def, "="); ok {
		p.DefineMacro(name, val)
	} else {
		p.DefineMacro(def, "1")
	}
}

// skipPunct consumes tok if it spells s, otherwise throws.
func (p *Preprocessor) skipPunct(tok *token.Token, s string) *token.Token {
	if !tok.Equal(s) {
		p.fail(tok, diag.PreExtraToken, "expected '%s'", s)
	}
	return tok.Next
}

// copyLine copies tokens up to the next line start, terminating the copy
// with EOF. Used to detach directive arguments and macro bodies.
func copyLine(tok *token.Token) (rest *token.Token, line *token.Token) {
	var head token.Token
	cur := &head
	for !tok.AtBOL && tok.Kind != token.EOF {
		cur.Next = tok.Copy()
		cur = cur.Next
		tok = tok.Next
	}
	cur.Next = token.NewEOF(tok)
	return tok, head.Next
}
