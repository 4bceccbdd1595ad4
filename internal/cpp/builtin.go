package cpp

import (
	"os"
	"time"

	"cast/internal/token"
)

// addBuiltin installs a dynamic macro whose value is computed at each
// point of expansion.
func (p *Preprocessor) addBuiltin(name string, fn handlerFn) *Macro {
	m := p.addMacro(name, true, nil)
	m.handler = fn
	return m
}

func fileMacro(p *Preprocessor, tmpl *token.Token) *token.Token {
	root := tmpl.ExpansionRoot()
	return p.newStrToken(root.File.Name(), tmpl)
}

func lineMacro(p *Preprocessor, tmpl *token.Token) *token.Token {
	root := tmpl.ExpansionRoot()
	line := int64(root.Line) + int64(root.File.LineDelta)
	return p.newNumToken(line, tmpl)
}

// __COUNTER__ expands to serial values 0, 1, 2, ... per instance.
func counterMacro(p *Preprocessor, tmpl *token.Token) *token.Token {
	v := p.counter
	p.counter++
	return p.newNumToken(v, tmpl)
}

// __TIMESTAMP__ expands to the current file's modification time in
// asctime form, or a placeholder when the file cannot be stat'ed.
func timestampMacro(p *Preprocessor, tmpl *token.Token) *token.Token {
	st, err := os.Stat(tmpl.ExpansionRoot().File.Path)
	if err != nil {
		return p.newStrToken("??? ??? ?? ??:??:?? ????", tmpl)
	}
	return p.newStrToken(st.ModTime().Format("Mon Jan _2 15:04:05 2006"), tmpl)
}

func baseFileMacro(p *Preprocessor, tmpl *token.Token) *token.Token {
	return p.newStrToken(p.baseFile, tmpl)
}

// initMacros seeds the predefined macro set. __DATE__ and __TIME__ are
// fixed at instance creation so that one pass sees one value.
func (p *Preprocessor) initMacros() {
	p.DefineMacro("_LP64", "1")
	p.DefineMacro("__LP64__", "1")
	p.DefineMacro("__x86_64__", "1")
	p.DefineMacro("__amd64__", "1")
	p.DefineMacro("__linux__", "1")
	p.DefineMacro("__gnu_linux__", "1")
	p.DefineMacro("__unix__", "1")
	p.DefineMacro("__ELF__", "1")
	p.DefineMacro("__STDC__", "1")
	p.DefineMacro("__STDC_HOSTED__", "1")
	p.DefineMacro("__STDC_VERSION__", "202311L")
	p.DefineMacro("__STDC_UTF_16__", "1")
	p.DefineMacro("__STDC_UTF_32__", "1")
	p.DefineMacro("__STDC_NO_ATOMICS__", "1")
	p.DefineMacro("__STDC_NO_COMPLEX__", "1")
	p.DefineMacro("__STDC_NO_THREADS__", "1")
	p.DefineMacro("__STDC_NO_VLA__", "1")
	p.DefineMacro("__SIZEOF_POINTER__", "8")
	p.DefineMacro("__SIZEOF_LONG__", "8")
	p.DefineMacro("__SIZEOF_INT__", "4")
	p.DefineMacro("__CHAR_BIT__", "8")
	p.DefineMacro("__cast__", "1")

	now := time.Now()
	p.DefineMacro("__DATE__", quoteString(now.Format("Jan _2 2006")))
	p.DefineMacro("__TIME__", quoteString(now.Format("15:04:05")))

	p.addBuiltin("__FILE__", fileMacro)
	p.addBuiltin("__LINE__", lineMacro)
	p.addBuiltin("__COUNTER__", counterMacro)
	p.addBuiltin("__TIMESTAMP__", timestampMacro)
	p.addBuiltin("__BASE_FILE__", baseFileMacro)
}
