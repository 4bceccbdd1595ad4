package cpp

import (
	"os"
	"path/filepath"
	"strings"

	"cast/internal/diag"
	"cast/internal/source"
	"cast/internal/token"
)

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// canonPath is the identity of a file for #pragma once and
// include-guard bookkeeping. Relative and absolute spellings of the
// same disk file must produce the same key. Synthetic names (bundled
// headers, URLs) pass through untouched.
func canonPath(path string) string {
	if strings.Contains(path, "://") || strings.HasPrefix(path, "<") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return source.NormalizePath(path)
}

// readIncludeFilename parses the operand of #include or #embed. Three
// forms exist: a quoted literal, an angle-bracketed name, and a macro
// that expands to one of those.
func (p *Preprocessor) readIncludeFilename(start, tok *token.Token) (rest *token.Token, filename string, isQuote bool) {
	// Pattern 1: #include "foo.h". The spelling is taken verbatim;
	// escape sequences in an include name are not interpreted.
	if tok.Kind == token.Str {
		rest = p.skipLineExtra(tok.Next)
		return rest, tok.Text[1 : len(tok.Text)-1], true
	}

	// Pattern 2: #include <foo.h>. Everything up to ">" forms the name.
	if tok.Equal("<") {
		end := tok.Next
		for !end.Equal(">") {
			if end.AtBOL || end.Kind == token.EOF {
				p.fail(tok, diag.IncBadFilename, "expected '>'")
			}
			end = end.Next
		}
		rest = p.skipLineExtra(end.Next)
		return rest, joinTokens(tok.Next, end), false
	}

	// Pattern 3: #include FOO. The macro must expand to one of the
	// forms above.
	if tok.Kind == token.Ident {
		after, line := copyLine(tok)
		line = p.expandAll(line)
		rest, filename, isQuote = p.readIncludeFilename(start, line)
		return after, filename, isQuote
	}

	p.fail(tok, diag.IncBadFilename, "expected a filename")
	return nil, "", false
}

// searchDirs is the full ordered search list. Quote includes scan it
// from the top; angle includes start past the quote directories.
func (p *Preprocessor) searchDirs() []string {
	dirs := make([]string, 0, len(p.cfg.QuoteDirs)+len(p.cfg.SysDirs))
	dirs = append(dirs, p.cfg.QuoteDirs...)
	dirs = append(dirs, p.cfg.SysDirs...)
	return dirs
}

// searchIncludePaths probes the configured directories for filename and
// returns the first hit, or "". Hits are cached per (name, kind); the
// include_next cursor records where the hit came from.
func (p *Preprocessor) searchIncludePaths(filename string, isQuote bool) string {
	key := includeKey{name: filename, isSystem: !isQuote}
	if path, ok := p.inclCache[key]; ok {
		return path
	}

	dirs := p.searchDirs()
	from := 0
	if !isQuote {
		from = len(p.cfg.QuoteDirs)
	}
	for i := from; i < len(dirs); i++ {
		path := filepath.Join(dirs[i], filename)
		if fileExists(path) {
			p.inclCache[key] = path
			p.inclNext = i + 1
			return path
		}
	}
	return ""
}

// searchIncludeNext resumes the directory scan after the directory the
// current file came from. Never cached: the answer depends on the cursor.
func (p *Preprocessor) searchIncludeNext(filename string) string {
	dirs := p.searchDirs()
	for ; p.inclNext < len(dirs); p.inclNext++ {
		path := filepath.Join(dirs[p.inclNext], filename)
		if fileExists(path) {
			p.inclNext++
			return path
		}
	}
	return ""
}

// doInclude handles #include and #include_next. The included file's
// tokens are spliced in front of the remainder of the including file and
// flow through the same main loop.
func (p *Preprocessor) doInclude(start, tok *token.Token, next bool) *token.Token {
	fnameTok := tok
	rest, filename, isQuote := p.readIncludeFilename(start, tok)

	if isURL(filename) {
		return p.includeURL(fnameTok, filename, rest)
	}

	var path string
	switch {
	case filepath.IsAbs(filename):
		if fileExists(filename) {
			path = filename
		}
	case next:
		path = p.searchIncludeNext(filename)
	case isQuote:
		local := filepath.Join(filepath.Dir(start.File.Path), filename)
		if fileExists(local) {
			path = local
		} else {
			path = p.searchIncludePaths(filename, true)
		}
	default:
		path = p.searchIncludePaths(filename, false)
	}

	if path == "" && p.cfg.UseStdInc {
		if content, ok := stdHeader(filename); ok {
			return p.includeVirtual("<std>/"+filename, content, rest)
		}
	}
	if path == "" {
		p.fail(fnameTok, diag.IncNotFound, "'%s' file not found", filename)
	}
	return p.includeFile(fnameTok, path, rest)
}

// includeFile tokenizes path and splices its tokens ahead of rest,
// honoring #pragma once and the classic #ifndef include-guard pattern.
func (p *Preprocessor) includeFile(fnameTok *token.Token, path string, rest *token.Token) *token.Token {
	canon := canonPath(path)
	if p.pragmaOnce[canon] {
		return rest
	}
	if guard, ok := p.inclGuards[canon]; ok && p.IsDefined(guard) {
		return rest
	}

	tok2, err := p.tokenizeFile(path)
	if err != nil {
		p.fail(fnameTok, diag.IncNotFound, "%s: cannot open file", path)
	}
	if guard := detectIncludeGuard(tok2); guard != "" {
		p.inclGuards[canon] = guard
	}
	return appendTokens(tok2, rest)
}

// includeVirtual splices in-memory header content (bundled std headers,
// fetched URLs). The synthetic name doubles as the #pragma once key.
func (p *Preprocessor) includeVirtual(name string, content []byte, rest *token.Token) *token.Token {
	if p.pragmaOnce[canonPath(name)] {
		return rest
	}
	return appendTokens(p.tokenizeVirtual(name, content), rest)
}

// detectIncludeGuard recognizes the whole-file pattern
//
//	#ifndef NAME
//	...
//	#endif
//
// and returns NAME, or "" when the file is not shaped that way. A hit
// lets a later include of the same file be skipped without re-reading it
// when NAME is still defined.
func detectIncludeGuard(tok *token.Token) string {
	if !tok.IsHash() || !tok.Next.IsIdent("ifndef") {
		return ""
	}
	name := tok.Next.Next
	if name.Kind != token.Ident {
		return ""
	}
	guard := name.Text

	depth := 0
	for t := name.Next; t.Kind != token.EOF; t = t.Next {
		if !t.IsHash() || !t.AtBOL {
			continue
		}
		d := t.Next
		switch {
		case d.IsIdent("if") || d.IsIdent("ifdef") || d.IsIdent("ifndef"):
			depth++
		case d.IsIdent("endif"):
			if depth == 0 {
				// The guard only counts when nothing follows #endif.
				for u := d.Next; u.Kind != token.EOF; u = u.Next {
					if !u.AtBOL {
						continue
					}
					return ""
				}
				return guard
			}
			depth--
		}
	}
	return ""
}
