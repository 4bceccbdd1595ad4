package diag

import (
	"cast/internal/source"
)

// Note attaches secondary context to a diagnostic, e.g. the macro
// invocation a bad token was expanded from.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
