package cpp

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cast/internal/diag"
	"cast/internal/token"
)

// embedParams are the recognized #embed parameters. Token lists are
// EOF-terminated; nil means the parameter was absent.
type embedParams struct {
	limit    uint64
	hasLimit bool
	prefix   *token.Token
	suffix   *token.Token
	ifEmpty  *token.Token
}

// doEmbed handles #embed: the target resolves like #include but is read
// as a binary blob and spliced in as comma-separated integer tokens.
func (p *Preprocessor) doEmbed(start, tok *token.Token) *token.Token {
	rest, line := copyLine(tok)
	// A leading macro expands the whole directive line, parameters
	// included.
	if line.Kind == token.Ident {
		line = p.expandAll(line)
	}
	return p.doEmbedLine(start, line, rest)
}

func (p *Preprocessor) doEmbedLine(start, tok, rest *token.Token) *token.Token {
	fnameTok := tok

	var filename string
	var isQuote bool
	switch {
	case tok.Kind == token.Str:
		filename = tok.Text[1 : len(tok.Text)-1]
		isQuote = true
		tok = tok.Next
	case tok.Equal("<"):
		end := tok.Next
		for !end.Equal(">") {
			if end.Kind == token.EOF {
				p.fail(tok, diag.IncBadFilename, "expected '>'")
			}
			end = end.Next
		}
		filename = joinTokens(tok.Next, end)
		tok = end.Next
	default:
		p.fail(tok, diag.IncBadFilename, "expected a filename")
	}

	params := p.readEmbedParams(tok)

	path := p.resolveEmbedPath(start, filename, isQuote)
	if path == "" {
		p.fail(fnameTok, diag.IncEmbedNotFound, "'%s' file not found", filename)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- resolved from the directive operand
	if err != nil {
		p.fail(fnameTok, diag.IncEmbedNotFound, "%s: cannot read file", path)
	}

	if params.hasLimit && uint64(len(data)) > params.limit {
		data = data[:params.limit]
	}
	p.checkEmbedSize(fnameTok, path, uint64(len(data)))

	if len(data) == 0 {
		if params.ifEmpty != nil {
			return appendTokens(params.ifEmpty, rest)
		}
		return rest
	}

	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(b)))
	}
	sb.WriteByte('\n')
	nums := p.tokenizeVirtual("<embed>/"+filename, []byte(sb.String()))

	out := rest
	if params.suffix != nil {
		out = appendTokens(params.suffix, out)
	}
	out = appendTokens(nums, out)
	if params.prefix != nil {
		out = appendTokens(params.prefix, out)
	}
	return out
}

// readEmbedParams parses the parameter clauses after the filename:
// limit(expr), prefix(tokens), suffix(tokens), if_empty(tokens).
func (p *Preprocessor) readEmbedParams(tok *token.Token) embedParams {
	var params embedParams
	for tok.Kind != token.EOF {
		if tok.Kind != token.Ident || !tok.Next.Equal("(") {
			p.fail(tok, diag.IncEmbedBadParam, "expected an embed parameter")
		}
		name := tok.Text
		var arg *macroArg
		tok, arg = p.readMacroArgOne(tok.Next.Next, true)
		tok = p.skipPunct(tok, ")")

		switch name {
		case "limit":
			line := p.expandAll(arg.tok)
			p.convertPPTokens(line)
			val, rest := p.evalExpr(line)
			if rest.Kind != token.EOF || val < 0 {
				p.fail(line, diag.IncEmbedBadParam, "invalid limit() argument")
			}
			params.limit = uint64(val)
			params.hasLimit = true
		case "prefix":
			params.prefix = arg.tok
		case "suffix":
			params.suffix = arg.tok
		case "if_empty":
			params.ifEmpty = arg.tok
		default:
			p.fail(tok, diag.IncEmbedBadParam, "unknown embed parameter '%s'", name)
		}
	}
	return params
}

func (p *Preprocessor) resolveEmbedPath(start *token.Token, filename string, isQuote bool) string {
	if filepath.IsAbs(filename) {
		if fileExists(filename) {
			return filename
		}
		return ""
	}
	if isQuote {
		local := filepath.Join(filepath.Dir(start.File.Path), filename)
		if fileExists(local) {
			return local
		}
	}
	return p.searchIncludePaths(filename, isQuote)
}

// checkEmbedSize enforces the configured byte limits on the embedded
// count. Past the soft limit is a warning, or an error in hard-error
// mode; past the hard limit is always an error.
func (p *Preprocessor) checkEmbedSize(tok *token.Token, path string, n uint64) {
	lim := p.cfg.Embed
	if lim.Hard > 0 && n > lim.Hard {
		p.fail(tok, diag.IncEmbedTooBig, "%s: embed of %d bytes exceeds the hard limit of %d", path, n, lim.Hard)
	}
	if lim.Soft > 0 && n > lim.Soft {
		if lim.HardError {
			p.fail(tok, diag.IncEmbedTooBig, "%s: embed of %d bytes exceeds the limit of %d", path, n, lim.Soft)
		}
		p.warn(tok, diag.IncEmbedSoft, "%s: embed of %d bytes exceeds the soft limit of %d", path, n, lim.Soft)
	}
}
