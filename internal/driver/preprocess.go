package driver

import (
	"io"
	"time"

	"cast/internal/cpp"
	"cast/internal/diag"
	"cast/internal/source"
	"cast/internal/token"
)

// Result is the outcome of preprocessing one translation unit. Each
// unit gets its own FileSet and Bag, so results can be produced and
// inspected independently.
type Result struct {
	Path    string
	FileSet *source.FileSet
	Bag     *diag.Bag
	Tokens  *token.Token
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the unit produced errors or aborted.
func (r *Result) Failed() bool {
	return r.Err != nil || r.Bag.HasErrors()
}

// Render writes the finished stream as compilable text. An aborted
// unit renders nothing.
func (r *Result) Render(w io.Writer) error {
	if r.Tokens == nil {
		return nil
	}
	return cpp.WritePreprocessed(w, r.Tokens)
}

// Preprocess runs the full pass over one file.
func Preprocess(path string, opts Options) *Result {
	opts = opts.normalized()
	fs := source.NewFileSet()
	bag := diag.NewBag(opts.MaxErrors)
	bag.SetWarningsAsErrors(opts.WarningsAsErrors)

	start := time.Now()
	tok, err := cpp.New(fs, bag, opts.cppConfig()).PreprocessFile(path)
	if tok != nil {
		token.ClassifyKeywords(tok)
	}
	return &Result{
		Path:    path,
		FileSet: fs,
		Bag:     bag,
		Tokens:  tok,
		Err:     err,
		Elapsed: time.Since(start),
	}
}

// PreprocessSource is Preprocess over in-memory content (stdin, tests).
func PreprocessSource(name string, content []byte, opts Options) *Result {
	opts = opts.normalized()
	fs := source.NewFileSet()
	bag := diag.NewBag(opts.MaxErrors)
	bag.SetWarningsAsErrors(opts.WarningsAsErrors)

	start := time.Now()
	tok, err := cpp.New(fs, bag, opts.cppConfig()).PreprocessSource(name, content)
	if tok != nil {
		token.ClassifyKeywords(tok)
	}
	return &Result{
		Path:    name,
		FileSet: fs,
		Bag:     bag,
		Tokens:  tok,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
