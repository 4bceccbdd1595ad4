package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cast/internal/source"
)

// writePreview prints the source line a span starts on, with a gutter
// and a caret underline. Spans that run past the end of the line are
// underlined up to the line end; a zero-width span still gets a caret.
func writePreview(w io.Writer, f *source.File, span source.Span, start source.LineCol, useColor bool) {
	line := f.GetLine(start.Line)
	if line == "" && len(f.Content) == 0 {
		return
	}
	// Tabs collapse to one cell so the underline math holds.
	display := strings.ReplaceAll(line, "\t", " ")

	gutter := fmt.Sprintf("%5d | ", int32(start.Line)+f.LineDelta)
	pad := strings.Repeat(" ", len(gutter)-2) + "| "

	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	n := int(span.Len())
	if col+n > len(line) {
		n = len(line) - col
	}

	prefixWidth := runewidth.StringWidth(strings.ReplaceAll(line[:col], "\t", " "))
	underWidth := runewidth.StringWidth(line[col : col+n])

	marker := "^"
	if underWidth > 1 {
		marker += strings.Repeat("~", underWidth-1)
	}
	if useColor {
		marker = color.New(color.FgGreen, color.Bold).Sprint(marker)
	}

	fmt.Fprintf(w, "%s%s\n", gutter, display)
	fmt.Fprintf(w, "%s%s%s\n", pad, strings.Repeat(" ", prefixWidth), marker)
}

// displayPath renders a recorded file path according to the mode.
// Virtual names (builtin headers, URL includes) pass through untouched.
func displayPath(path string, mode PathMode) string {
	if !filepath.IsAbs(path) && strings.Contains(path, "://") {
		return path
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative:
		if rel, ok := relToCwd(path); ok {
			return rel
		}
		return path
	default:
		if rel, ok := relToCwd(path); ok && !strings.HasPrefix(rel, "..") {
			return rel
		}
		return path
	}
}

func relToCwd(path string) (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return "", false
	}
	return rel, true
}
