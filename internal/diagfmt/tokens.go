package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"cast/internal/source"
	"cast/internal/token"
)

// TokenJSON is one token of the preprocessed stream in JSON output.
// Line honors #line remapping, the same way diagnostics do.
type TokenJSON struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	File     string `json:"file"`
	Line     int32  `json:"line"`
	Col      uint32 `json:"col"`
	AtBOL    bool   `json:"at_bol,omitempty"`
	HasSpace bool   `json:"has_space,omitempty"`
}

// FormatTokensPretty writes one line per token of the stream, EOF
// included, with position and spacing flags.
func FormatTokensPretty(w io.Writer, tok *token.Token, fs *source.FileSet) error {
	i := 0
	for t := tok; t != nil; t = t.Next {
		i++
		col := fs.Pos(t.File.ID, t.Pos).Col

		if _, err := fmt.Fprintf(w, "%4d: %-10s", i, t.Kind.String()); err != nil {
			return err
		}
		if t.Text != "" {
			fmt.Fprintf(w, " %-20q", t.Text)
		} else {
			fmt.Fprintf(w, " %-20s", "")
		}
		fmt.Fprintf(w, " at %s:%d:%d", t.FileName(), t.LineNo(), col)
		if t.AtBOL {
			fmt.Fprint(w, " [bol]")
		}
		if t.HasSpace {
			fmt.Fprint(w, " [space]")
		}
		fmt.Fprintln(w)

		if t.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON writes the stream as an indented JSON array, EOF
// excluded.
func FormatTokensJSON(w io.Writer, tok *token.Token, fs *source.FileSet) error {
	var out []TokenJSON
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		out = append(out, TokenJSON{
			Kind:     t.Kind.String(),
			Text:     t.Text,
			File:     t.FileName(),
			Line:     t.LineNo(),
			Col:      fs.Pos(t.File.ID, t.Pos).Col,
			AtBOL:    t.AtBOL,
			HasSpace: t.HasSpace,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
