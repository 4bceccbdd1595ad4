package driver

import (
	"cast/internal/diag"
	"cast/internal/lexer"
	"cast/internal/source"
	"cast/internal/token"
)

// TokenizeResult is the raw token stream of one file, before any
// preprocessing.
type TokenizeResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Tokens  *token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one file without preprocessing. Deferred lexical
// errors surface into the bag here, since no conditional skipping can
// make them dead.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxErrors
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(id)

	bag := diag.NewBag(maxDiagnostics)
	tok := lexer.Tokenize(file, lexer.Options{})
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		if t.Kind == token.Invalid && t.Err != nil {
			bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     t.Err.Code,
				Message:  t.Err.Msg,
				Primary:  t.Span(),
			})
		}
	}

	return &TokenizeResult{
		Path:    path,
		FileSet: fs,
		File:    file,
		Tokens:  tok,
		Bag:     bag,
	}, nil
}
