package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"cast/internal/diag"
	"cast/internal/source"
)

// Pretty formats diagnostics in a human-readable way. It walks
// bag.Items() in order (call bag.Sort() first for deterministic output)
// and prints, per diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  <line> | <source text>
//	         |      ^~~~
//
// followed by any notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	for i := range items {
		prettyOne(w, &items[i], fs, opts)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	// Reported line numbers honor any #line remapping of the file.
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		displayPath(file.Name(), opts.PathMode),
		int32(start.Line)+file.LineDelta, start.Col,
		severityLabel(d.Severity, opts.Color),
		codeLabel(d.Code, opts.Color),
		d.Message)

	if opts.ShowPreview {
		writePreview(w, file, d.Primary, start, opts.Color)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			displayPath(nf.Name(), opts.PathMode),
			int32(ns.Line)+nf.LineDelta, ns.Col,
			noteLabel(opts.Color), n.Msg)
		if opts.ShowPreview {
			writePreview(w, nf, n.Span, ns, opts.Color)
		}
	}
}

// Summary prints the closing "N errors, M warnings" line, or nothing
// when the bag is clean.
func Summary(w io.Writer, bag *diag.Bag, useColor bool) {
	errs, warns := bag.ErrorCount(), bag.WarningCount()
	if errs == 0 && warns == 0 {
		return
	}

	parts := ""
	if errs > 0 {
		parts = fmt.Sprintf("%d %s", errs, plural(errs, "error"))
	}
	if warns > 0 {
		if parts != "" {
			parts += ", "
		}
		parts += fmt.Sprintf("%d %s", warns, plural(warns, "warning"))
	}
	if useColor && errs > 0 {
		parts = color.New(color.FgRed, color.Bold).Sprint(parts)
	} else if useColor {
		parts = color.New(color.FgYellow, color.Bold).Sprint(parts)
	}
	fmt.Fprintln(w, parts)
	if bag.LimitReached() {
		fmt.Fprintf(w, "too many errors, stopped after %d\n", bag.Cap())
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func severityLabel(sev diag.Severity, useColor bool) string {
	text := sev.String()
	if !useColor {
		return text
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(text)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(text)
	default:
		return color.New(color.FgCyan).Sprint(text)
	}
}

func codeLabel(code diag.Code, useColor bool) string {
	if !useColor {
		return code.ID()
	}
	return color.New(color.Bold).Sprint(code.ID())
}

func noteLabel(useColor bool) string {
	if !useColor {
		return "NOTE"
	}
	return color.New(color.FgCyan, color.Bold).Sprint("NOTE")
}
