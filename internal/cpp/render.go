package cpp

import (
	"bufio"
	"io"

	"cast/internal/token"
)

// WritePreprocessed re-prints a finished token stream as compilable
// text: a newline before each line-starting token, a single space where
// the source had whitespace. The output ends with a newline.
func WritePreprocessed(w io.Writer, tok *token.Token) error {
	bw := bufio.NewWriter(w)
	first := true
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		switch {
		case t.AtBOL && !first:
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		case t.HasSpace && !t.AtBOL && !first:
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(t.Text); err != nil {
			return err
		}
		first = false
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}
