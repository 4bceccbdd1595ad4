// Package cpp implements the C preprocessor: macro expansion with
// hideset-based hygiene, conditional inclusion, and include resolution.
//
// The expansion algorithm follows Dave Prosser's description, the basis
// for the C standard's wording: every token carries a hideset of macro
// names that must not re-expand it, which guarantees termination while
// still allowing legitimate reuse across nested expansions.
package cpp

import (
	"errors"
	"fmt"

	"cast/internal/diag"
	"cast/internal/lexer"
	"cast/internal/source"
	"cast/internal/token"
)

var (
	// ErrAborted is returned when a fatal diagnostic ended the pass.
	ErrAborted = errors.New("preprocessing aborted")
	// ErrErrorLimit is returned when the pass stopped because the
	// configured error limit was reached.
	ErrErrorLimit = errors.New("pass aborted due to error limit")
)

// EmbedLimits bounds the size of #embed payloads. Exceeding Soft warns;
// exceeding Hard, or Soft with HardError set, fails the directive.
type EmbedLimits struct {
	Soft      uint64
	Hard      uint64
	HardError bool
}

// DefaultEmbedLimits mirrors the original tool: warn past 10MB, refuse
// past 50MB.
func DefaultEmbedLimits() EmbedLimits {
	return EmbedLimits{Soft: 10 << 20, Hard: 50 << 20}
}

// Config is the host-supplied setup for one preprocessor instance.
type Config struct {
	// QuoteDirs are searched for #include "..." after the including
	// file's directory; SysDirs for both quote and angle includes.
	QuoteDirs []string
	SysDirs   []string

	// Defines are -D style seeds: "NAME" or "NAME=value".
	// Undefines are applied after Defines.
	Defines   []string
	Undefines []string

	Embed EmbedLimits

	// UseStdInc serves the bundled standard headers for angle includes
	// that miss on disk.
	UseStdInc bool

	// URLCacheDir overrides the default location of the remote-include
	// cache ($XDG_CACHE_HOME/cast/urls).
	URLCacheDir string
}

type includeKey struct {
	name     string
	isSystem bool
}

// Preprocessor is one compiler instance's preprocessing state. Instances
// are independent; one instance must not be shared across goroutines.
type Preprocessor struct {
	fs       *source.FileSet
	bag      *diag.Bag
	reporter diag.Reporter
	interner *source.Interner
	cfg      Config

	macros     map[string]*Macro
	condIncl   *condIncl
	pragmaOnce map[string]bool
	inclGuards map[string]string
	inclCache  map[includeKey]string
	inclNext   int
	urlCache   *URLCache
	counter    int64
	baseFile   string
	condDead   int
	failed     bool
}

// New creates a preprocessor instance. Diagnostics go into bag; the
// macro table is seeded with the predefined macros and cfg's -D/-U set.
func New(fs *source.FileSet, bag *diag.Bag, cfg Config) *Preprocessor {
	p := &Preprocessor{
		fs:         fs,
		bag:        bag,
		reporter:   diag.BagReporter{Bag: bag},
		interner:   source.NewInterner(),
		cfg:        cfg,
		macros:     make(map[string]*Macro),
		pragmaOnce: make(map[string]bool),
		inclGuards: make(map[string]string),
		inclCache:  make(map[includeKey]string),
	}
	p.initMacros()
	for _, d := range cfg.Defines {
		p.defineCmdline(d)
	}
	for _, u := range cfg.Undefines {
		p.UndefMacro(u)
	}
	return p
}

// PreprocessFile tokenizes path and runs the full pass over it.
func (p *Preprocessor) PreprocessFile(path string) (*token.Token, error) {
	if p.failed {
		return nil, ErrAborted
	}
	p.baseFile = path
	tok, err := p.tokenizeFile(path)
	if err != nil {
		p.failed = true
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p.Preprocess(tok)
}

// PreprocessSource runs the full pass over in-memory content (stdin,
// tests).
func (p *Preprocessor) PreprocessSource(name string, content []byte) (*token.Token, error) {
	if p.failed {
		return nil, ErrAborted
	}
	p.baseFile = name
	return p.Preprocess(p.tokenizeVirtual(name, content))
}

// Preprocess runs macro expansion and directive handling over tok and
// returns the finished stream: pp-numbers resolved, adjacent string
// literals joined, terminated by EOF. After a fatal error the instance
// is terminal and every later call returns ErrAborted.
func (p *Preprocessor) Preprocess(tok *token.Token) (result *token.Token, err error) {
	if p.failed {
		return nil, ErrAborted
	}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.failed = true
			result = nil
			if p.bag.LimitReached() {
				err = ErrErrorLimit
			} else {
				err = ErrAborted
			}
		}
	}()

	out := p.preprocess(tok)
	if p.condIncl != nil {
		p.report(&ppError{tok: p.condIncl.tok, code: diag.CondUnterminated,
			msg: "unterminated conditional directive"})
	}
	p.convertPPTokens(out)
	p.joinAdjacentStringLiterals(out)
	// In collect mode the pass completes with the diagnostics it
	// gathered; the caller inspects the bag.
	return out, nil
}

// bailout unwinds to the Preprocess entry point on a fatal diagnostic.
// It never crosses the public API.
type bailout struct{}

// ppError is a pending diagnostic thrown from deep inside expansion and
// reported at the per-line recovery point.
type ppError struct {
	tok  *token.Token
	code diag.Code
	msg  string
}

// fail throws a fatal-to-this-line diagnostic.
func (p *Preprocessor) fail(tok *token.Token, code diag.Code, format string, args ...any) {
	panic(&ppError{tok: tok, code: code, msg: fmt.Sprintf(format, args...)})
}

// report records a thrown diagnostic. When the error limit is hit the
// whole pass unwinds.
func (p *Preprocessor) report(pe *ppError) {
	var notes []diag.Note
	if root := pe.tok.ExpansionRoot(); root != pe.tok {
		notes = append(notes, diag.Note{
			Span: root.Span(),
			Msg:  "in expansion of macro written here",
		})
	}
	p.reporter.Report(pe.code, diag.SevError, pe.tok.Span(), pe.msg, notes)
	if p.bag.LimitReached() {
		panic(bailout{})
	}
}

// warn emits a warning at tok. Warnings never unwind unless promotion to
// error fills the limit.
func (p *Preprocessor) warn(tok *token.Token, code diag.Code, format string, args ...any) {
	p.reporter.Report(code, diag.SevWarning, tok.Span(), fmt.Sprintf(format, args...), nil)
	if p.bag.LimitReached() {
		panic(bailout{})
	}
}

// tokenizeFile loads and tokenizes a file through the instance's FileSet.
func (p *Preprocessor) tokenizeFile(path string) (*token.Token, error) {
	id, err := p.fs.Load(path)
	if err != nil {
		return nil, err
	}
	return p.tokenize(p.fs.Get(id)), nil
}

// tokenizeVirtual tokenizes synthetic content (builtin macros, pasted
// spellings, fetched URLs, std headers).
func (p *Preprocessor) tokenizeVirtual(name string, content []byte) *token.Token {
	id := p.fs.AddVirtual(name, content)
	return p.tokenize(p.fs.Get(id))
}

func (p *Preprocessor) tokenize(f *source.File) *token.Token {
	return lexer.Tokenize(f, lexer.Options{Interner: p.interner})
}
