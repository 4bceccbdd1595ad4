package lexer

import (
	"cast/internal/diag"
	"cast/internal/source"
	"cast/internal/token"
)

// Options configures one tokenization run.
type Options struct {
	// Interner, when set, deduplicates identifier spellings.
	Interner *source.Interner
}

// deferErr records a lexical error for the token being scanned. The
// token comes out Invalid with the diagnostic attached; reporting is
// the consumer's decision, so malformed text inside a skipped
// conditional branch stays silent. Only the first error per token is
// kept.
func (lx *Lexer) deferErr(code diag.Code, msg string) {
	if lx.err == nil {
		lx.err = &token.TokenError{Code: code, Msg: msg}
	}
}
