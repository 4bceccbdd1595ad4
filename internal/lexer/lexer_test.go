package lexer_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cast/internal/diag"
	"cast/internal/lexer"
	"cast/internal/source"
	"cast/internal/token"
)

func tokenizeString(t *testing.T, input string) *token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(input))
	return lexer.Tokenize(fs.Get(id), lexer.Options{})
}

func texts(tok *token.Token) []string {
	var out []string
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		out = append(out, t.Text)
	}
	return out
}

func kinds(tok *token.Token) []token.Kind {
	var out []token.Kind
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenizeBasics(t *testing.T) {
	tok := tokenizeString(t, "int main(void) { return 0; }\n")
	want := []string{"int", "main", "(", "void", ")", "{", "return", "0", ";", "}"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
	if tok.Kind != token.Ident {
		t.Fatalf("keyword spelling must lex as ident, got %v", tok.Kind)
	}
}

func TestPunctLongestFirst(t *testing.T) {
	tok := tokenizeString(t, "a <<= b << c < d ... e .. f\n")
	want := []string{"a", "<<=", "b", "<<", "c", "<", "d", "...", "e", ".", ".", "f"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestFlags(t *testing.T) {
	tok := tokenizeString(t, "a b\n  c/*x*/d\n")
	cases := []struct {
		text     string
		atBOL    bool
		hasSpace bool
	}{
		{"a", true, false},
		{"b", false, true},
		{"c", true, true},
		{"d", false, true}, // block comment counts as whitespace
	}
	cur := tok
	for _, c := range cases {
		if cur.Text != c.text {
			t.Fatalf("token order: got %q want %q", cur.Text, c.text)
		}
		if cur.AtBOL != c.atBOL || cur.HasSpace != c.hasSpace {
			t.Errorf("%q: AtBOL=%v HasSpace=%v, want %v/%v",
				c.text, cur.AtBOL, cur.HasSpace, c.atBOL, c.hasSpace)
		}
		cur = cur.Next
	}
}

func TestLineNumbers(t *testing.T) {
	tok := tokenizeString(t, "a\nb\n\nc\n")
	wantLines := map[string]uint32{"a": 1, "b": 2, "c": 4}
	for cur := tok; cur.Kind != token.EOF; cur = cur.Next {
		if want := wantLines[cur.Text]; cur.Line != want {
			t.Errorf("%q on line %d, want %d", cur.Text, cur.Line, want)
		}
	}
}

func TestPPNumbers(t *testing.T) {
	tok := tokenizeString(t, "123 0x1p-3 1e+10f .5 0b101 123abc\n")
	for cur := tok; cur.Kind != token.EOF; cur = cur.Next {
		if cur.Kind != token.PPNum {
			t.Errorf("%q lexed as %v, want pp-number", cur.Text, cur.Kind)
		}
	}
	got := texts(tok)
	want := []string{"123", "0x1p-3", "1e+10f", ".5", "0b101", "123abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestStringLiteral(t *testing.T) {
	tok := tokenizeString(t, `"hi\n\x41\101é" L"w" u8"z"`+"\n")
	if tok.Kind != token.Str {
		t.Fatalf("kind = %v", tok.Kind)
	}
	if got := string(tok.StrVal); got != "hi\nAAé\x00" {
		t.Fatalf("decoded = %q", got)
	}
	if tok.StrTy != token.StrNone {
		t.Fatalf("StrTy = %v", tok.StrTy)
	}

	wide := tok.Next
	if wide.StrTy != token.StrWide || string(wide.StrVal) != "w\x00" {
		t.Fatalf("wide = %v %q", wide.StrTy, wide.StrVal)
	}
	u8 := wide.Next
	if u8.StrTy != token.StrUTF8 {
		t.Fatalf("u8 = %v", u8.StrTy)
	}
}

func TestCharLiteral(t *testing.T) {
	tok := tokenizeString(t, `'a' '\n' '\xff' L'Ω'`+"\n")
	vals := []int64{'a', '\n', -1, 0x3A9}
	cur := tok
	for i, want := range vals {
		if cur.Kind != token.Num {
			t.Fatalf("token %d kind = %v", i, cur.Kind)
		}
		if cur.Val != want {
			t.Errorf("token %d val = %d, want %d", i, cur.Val, want)
		}
		cur = cur.Next
	}
}

func TestUnicodeIdent(t *testing.T) {
	tok := tokenizeString(t, "int π = 3;\n")
	if got := texts(tok); got[1] != "π" {
		t.Fatalf("texts = %v", got)
	}
	if tok.Next.Kind != token.Ident {
		t.Fatalf("π lexed as %v", tok.Next.Kind)
	}
}

func TestInternerShares(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte("foo foo foo\n"))
	in := source.NewInterner()
	lexer.Tokenize(fs.Get(id), lexer.Options{Interner: in})
	if in.Len() != 2 { // "" + "foo"
		t.Fatalf("interner Len = %d", in.Len())
	}
}

// Malformed input never fails tokenization; it yields Invalid tokens
// carrying their diagnostic, so text in dead conditional branches can
// stay silent.
func TestLexErrors(t *testing.T) {
	cases := []struct {
		input string
		code  diag.Code
	}{
		{"\"abc\n", diag.LexUnterminatedString},
		{"'a\n", diag.LexUnterminatedChar},
		{"''\n", diag.LexEmptyChar},
		{`"\q"` + "\n", diag.LexBadEscape},
		{`"\x"` + "\n", diag.LexBadEscape},
		{`"\u12"` + "\n", diag.LexBadUCN},
		{`"\UDDDDDDDD"` + "\n", diag.LexBadUCN},
		{"/* no close\n", diag.LexUnterminatedBlockComment},
	}
	for _, c := range cases {
		tok := tokenizeString(t, c.input)
		found := false
		for cur := tok; cur.Kind != token.EOF; cur = cur.Next {
			if cur.Kind == token.Invalid && cur.Err != nil && cur.Err.Code == c.code {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: no invalid token with code %v", c.input, c.code)
		}
	}
}

// Tokenizing directive-free source and re-joining the spellings with the
// recorded spacing must reproduce the original token text.
func TestSpellingRoundTrip(t *testing.T) {
	input := "int x = a+b * 2;\nchar *s = \"lit\";\n"
	tok := tokenizeString(t, input)

	var sb strings.Builder
	for cur := tok; cur.Kind != token.EOF; cur = cur.Next {
		if cur.AtBOL && sb.Len() > 0 {
			sb.WriteByte('\n')
		} else if cur.HasSpace && !cur.AtBOL {
			sb.WriteByte(' ')
		}
		sb.WriteString(cur.Text)
	}
	sb.WriteByte('\n')

	want := "int x = a+b * 2;\nchar *s = \"lit\";\n"
	if sb.String() != want {
		t.Fatalf("round trip:\n got %q\nwant %q", sb.String(), want)
	}
}
