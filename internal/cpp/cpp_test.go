package cpp_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cast/internal/cpp"
	"cast/internal/diag"
	"cast/internal/source"
	"cast/internal/token"
)

func preprocess(t *testing.T, input string, cfg cpp.Config, maxErrors int) (*token.Token, *diag.Bag, error) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(maxErrors)
	p := cpp.New(fs, bag, cfg)
	tok, err := p.PreprocessSource("test.c", []byte(input))
	return tok, bag, err
}

func mustPreprocess(t *testing.T, input string) *token.Token {
	t.Helper()
	tok, bag, err := preprocess(t, input, cpp.Config{}, 20)
	if err != nil {
		t.Fatalf("preprocess: %v (diags: %+v)", err, bag.Items())
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	return tok
}

func texts(tok *token.Token) []string {
	var out []string
	for t := tok; t != nil && t.Kind != token.EOF; t = t.Next {
		out = append(out, t.Text)
	}
	return out
}

func render(t *testing.T, tok *token.Token) string {
	t.Helper()
	var sb strings.Builder
	if err := cpp.WritePreprocessed(&sb, tok); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestObjectMacro(t *testing.T) {
	tok := mustPreprocess(t, "#define N 42\nint x = N;\n")
	want := []string{"int", "x", "=", "42", ";"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
	if n := tok.Next.Next.Next; n.Kind != token.Num || n.Val != 42 {
		t.Fatalf("42 converted to %v val=%d", n.Kind, n.Val)
	}
}

// A macro whose body mentions its own name must not loop; the inner
// occurrence survives as a plain identifier.
func TestSelfReferentialMacro(t *testing.T) {
	tok := mustPreprocess(t, "#define A A\nA\n")
	if diff := cmp.Diff([]string{"A"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// Mutual recursion terminates at the first name whose hideset blocks it:
// A expands to B, B expands back to A, and that A is frozen.
func TestMutuallyRecursiveMacros(t *testing.T) {
	tok := mustPreprocess(t, "#define A B\n#define B A\nA\n")
	if diff := cmp.Diff([]string{"A"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// Sibling expansions share a hideset prefix; one branch's guard must not
// leak into the other. The expected stream is what GNU cpp produces.
func TestNestedExpansionConfluence(t *testing.T) {
	tok := mustPreprocess(t, "#define f(x) x+f(x)\nf(f(1))\n")
	want := []string{"1", "+", "f", "(", "1", ")", "+", "f", "(", "1", "+", "f", "(", "1", ")", ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestFunctionLikeMacro(t *testing.T) {
	tok := mustPreprocess(t, "#define MAX(a, b) ((a) > (b) ? (a) : (b))\nMAX(x, f(y, z))\n")
	want := []string{"(", "(", "x", ")", ">", "(", "f", "(", "y", ",", "z", ")", ")",
		"?", "(", "x", ")", ":", "(", "f", "(", "y", ",", "z", ")", ")", ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// A function-like macro name with no argument list is an ordinary
// identifier.
func TestFunctionLikeWithoutParens(t *testing.T) {
	tok := mustPreprocess(t, "#define F(x) x\nint F = 1; F(2)\n")
	want := []string{"int", "F", "=", "1", ";", "2"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestStringize(t *testing.T) {
	tok := mustPreprocess(t, "#define S(x) #x\nS(a +   b)\n")
	if tok.Kind != token.Str {
		t.Fatalf("kind = %v", tok.Kind)
	}
	if tok.Text != `"a + b"` {
		t.Fatalf("spelling = %s", tok.Text)
	}
}

func TestStringizeEscapes(t *testing.T) {
	tok := mustPreprocess(t, "#define S(x) #x\nS(\"hi\")\n")
	if tok.Text != `"\"hi\""` {
		t.Fatalf("spelling = %s", tok.Text)
	}
}

func TestPaste(t *testing.T) {
	tok := mustPreprocess(t, "#define P(a, b) a##b\nP(fo, o) P(1, 2)\n")
	if tok.Kind != token.Ident || tok.Text != "foo" {
		t.Fatalf("first = %v %q", tok.Kind, tok.Text)
	}
	n := tok.Next
	if n.Kind != token.Num || n.Val != 12 {
		t.Fatalf("second = %v val=%d", n.Kind, n.Val)
	}
}

// ".foo" re-lexes as two tokens, so the paste is invalid.
func TestPasteInvalid(t *testing.T) {
	_, bag, _ := preprocess(t, "#define P(a, b) a##b\nP(., foo)\nint x;\n", cpp.Config{}, 20)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.PreBadPaste {
			found = true
		}
	}
	if !found {
		t.Fatalf("PreBadPaste not reported: %+v", bag.Items())
	}
}

// Two punctuators that paste into one valid punctuator are fine.
func TestPasteValidPunctuator(t *testing.T) {
	tok := mustPreprocess(t, "#define P(a, b) a##b\nx P(+, +)\n")
	want := []string{"x", "++"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestVariadicMacro(t *testing.T) {
	tok := mustPreprocess(t, "#define LOG(fmt, ...) printf(fmt, __VA_ARGS__)\nLOG(\"%d\", 1, 2)\n")
	want := []string{"printf", "(", `"%d"`, ",", "1", ",", "2", ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// [GNU] ,##__VA_ARGS__ swallows the comma when no variadic arguments
// were supplied.
func TestVariadicCommaElision(t *testing.T) {
	tok := mustPreprocess(t, "#define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)\nLOG(\"x\")\n")
	want := []string{"printf", "(", `"x"`, ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestVaOpt(t *testing.T) {
	tok := mustPreprocess(t,
		"#define LOG(fmt, ...) printf(fmt __VA_OPT__(,) __VA_ARGS__)\nLOG(\"x\") LOG(\"y\", 1)\n")
	want := []string{"printf", "(", `"x"`, ")", "printf", "(", `"y"`, ",", "1", ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestNamedVariadic(t *testing.T) {
	tok := mustPreprocess(t, "#define CALL(f, args...) f(args)\nCALL(g, 1, 2)\n")
	want := []string{"g", "(", "1", ",", "2", ")"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// A macro with an empty body expands to nothing; the token after the
// invocation keeps its own layout, so a directive on the next line is
// still recognized.
func TestEmptyExpansionKeepsNextLine(t *testing.T) {
	tok := mustPreprocess(t, "#define E\nx E\n#define Y 1\nY\n")
	if diff := cmp.Diff([]string{"x", "1"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// Same for the function-like form, including an empty expansion at the
// very end of a line.
func TestEmptyFunctionLikeExpansion(t *testing.T) {
	tok := mustPreprocess(t, "#define E(x)\na E(1)\n#define Z 2\nZ\n")
	if diff := cmp.Diff([]string{"a", "2"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestRedefinitionWarning(t *testing.T) {
	_, bag, err := preprocess(t, "#define X 1\n#define X 2\nX\n", cpp.Config{}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !bag.HasWarnings() {
		t.Fatal("benign-looking redefinition with a different body must warn")
	}

	_, bag, err = preprocess(t, "#define X 1\n#define X 1\nX\n", cpp.Config{}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if bag.HasWarnings() {
		t.Fatalf("identical redefinition must not warn: %+v", bag.Items())
	}
}

func TestUndef(t *testing.T) {
	tok := mustPreprocess(t, "#define X 1\n#undef X\nX\n")
	if diff := cmp.Diff([]string{"X"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestConditionals(t *testing.T) {
	input := `#if 0
dead ( " unbalanced, never tokenized for macros
#if nested
#endif
#elif 1
live1
#else
dead2
#endif
`
	tok := mustPreprocess(t, input)
	if diff := cmp.Diff([]string{"live1"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestIfdefChain(t *testing.T) {
	input := `#define B 1
#ifdef A
a
#elifdef B
b
#else
c
#endif
#ifndef A
d
#endif
`
	tok := mustPreprocess(t, input)
	if diff := cmp.Diff([]string{"b", "d"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestDefinedOperator(t *testing.T) {
	input := `#define X 1
#if defined(X) && defined X && !defined(Y)
yes
#endif
`
	tok := mustPreprocess(t, input)
	if diff := cmp.Diff([]string{"yes"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestConstExpr(t *testing.T) {
	cases := []struct {
		cond string
		live bool
	}{
		{"1 + 2 * 3 == 7", true},
		{"(1 + 2) * 3 == 7", false},
		{"1 << 4 | 1", true},
		{"10 % 3 == 1 && 10 / 3 == 3", true},
		{"1 ? 0 : 1", false},
		{"0 ? 0 : 42", true},
		{"-1 < 0", true},
		{"-1 < 0U", false}, // unsigned comparison
		{"~0 == -1", true},
		{"!5", false},
		{"UNDEFINED_NAME", false},
		{"'A' == 65", true},
		{"0x10 == 16 && 010 == 8 && 0b101 == 5", true},
		// Dead operands are parsed but never evaluated.
		{"0 && 1/0", false},
		{"1 || 1/0", true},
		{"1 ? 2 : 1/0", true},
		{"0 ? 1/0 : 2", true},
	}
	for _, c := range cases {
		tok := mustPreprocess(t, "#if "+c.cond+"\nlive\n#endif\n")
		got := len(texts(tok)) > 0
		if got != c.live {
			t.Errorf("#if %s: live=%v, want %v", c.cond, got, c.live)
		}
	}
}

// A condition that fails to evaluate still opens its conditional group,
// reads as false, and draws exactly one diagnostic. The #endif matches.
func TestConstExprDivByZero(t *testing.T) {
	tok, bag, err := preprocess(t, "#if 1 / 0\nx\n#endif\nint y;\n", cpp.Config{}, 20)
	if err != nil {
		t.Fatal(err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.CondDivByZero {
		t.Fatalf("diags = %+v, want one CondDivByZero", items)
	}
	if diff := cmp.Diff([]string{"int", "y", ";"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestUnterminatedConditional(t *testing.T) {
	_, bag, _ := preprocess(t, "#if 1\nx\n", cpp.Config{}, 20)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CondUnterminated {
			found = true
		}
	}
	if !found {
		t.Fatalf("CondUnterminated not reported: %+v", bag.Items())
	}
}

func TestLineDirective(t *testing.T) {
	input := "#line 100 \"other.c\"\n__LINE__; __FILE__\n"
	tok := mustPreprocess(t, input)
	if tok.Kind != token.Num || tok.Val != 100 {
		t.Fatalf("__LINE__ = %v %d, want 100", tok.Kind, tok.Val)
	}
	f := tok.Next.Next
	if f.Kind != token.Str || string(f.StrVal) != "other.c\x00" {
		t.Fatalf("__FILE__ = %q", f.StrVal)
	}
}

func TestCounterMacro(t *testing.T) {
	tok := mustPreprocess(t, "__COUNTER__ __COUNTER__ __COUNTER__\n")
	want := []string{"0", "1", "2"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestStringLiteralJoining(t *testing.T) {
	tok := mustPreprocess(t, "\"foo\" \"bar\" u8\"baz\"\n")
	if tok.Kind != token.Str || tok.Next.Kind != token.EOF {
		t.Fatalf("literals not joined: %v", texts(tok))
	}
	if got := string(tok.StrVal); got != "foobarbaz\x00" {
		t.Fatalf("joined body = %q", got)
	}
	if tok.StrTy != token.StrUTF8 {
		t.Fatalf("joined kind = %v", tok.StrTy)
	}
}

func TestErrorDirective(t *testing.T) {
	_, bag, _ := preprocess(t, "#error broken build\nint x;\n", cpp.Config{}, 20)
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.PreErrorDirective {
		t.Fatalf("diags = %+v", items)
	}
	if !strings.Contains(items[0].Message, "broken build") {
		t.Fatalf("message = %q", items[0].Message)
	}
}

func TestWarningDirective(t *testing.T) {
	tok, bag, err := preprocess(t, "#warning heads up\nint x;\n", cpp.Config{}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if bag.WarningCount() != 1 {
		t.Fatalf("diags = %+v", bag.Items())
	}
	if diff := cmp.Diff([]string{"int", "x", ";"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// Collect mode: below the cap the pass runs to completion and the
// caller reads the bag; one bad line yields one diagnostic.
func TestErrorCollection(t *testing.T) {
	input := "#bogus1\nint a;\n#bogus2\nint b;\n"
	tok, bag, err := preprocess(t, input, cpp.Config{}, 20)
	if err != nil {
		t.Fatalf("collect mode must complete: %v", err)
	}
	if bag.ErrorCount() != 2 {
		t.Fatalf("errors = %d, want 2: %+v", bag.ErrorCount(), bag.Items())
	}
	if diff := cmp.Diff([]string{"int", "a", ";", "int", "b", ";"}, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// With a cap of 3, ten bad lines abort the pass after exactly three
// collected errors.
func TestErrorLimit(t *testing.T) {
	var sb strings.Builder
	for range 10 {
		sb.WriteString("#bogus\n")
	}
	_, bag, err := preprocess(t, sb.String(), cpp.Config{}, 3)
	if !errors.Is(err, cpp.ErrErrorLimit) {
		t.Fatalf("err = %v, want ErrErrorLimit", err)
	}
	if bag.ErrorCount() != 3 {
		t.Fatalf("errors = %d, want 3", bag.ErrorCount())
	}
}

// Stop-on-first-error is the cap set to one.
func TestStopOnFirstError(t *testing.T) {
	_, bag, err := preprocess(t, "#bogus\n#bogus\n", cpp.Config{}, 1)
	if !errors.Is(err, cpp.ErrErrorLimit) {
		t.Fatalf("err = %v, want ErrErrorLimit", err)
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", bag.ErrorCount())
	}
}

// After a fatal abort the instance is terminal.
func TestInstanceTerminalAfterAbort(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	p := cpp.New(fs, bag, cpp.Config{})
	if _, err := p.PreprocessSource("a.c", []byte("#bogus\n")); err == nil {
		t.Fatal("expected abort")
	}
	if _, err := p.PreprocessSource("b.c", []byte("int x;\n")); !errors.Is(err, cpp.ErrAborted) {
		t.Fatalf("second call: err = %v, want ErrAborted", err)
	}
}

func TestCmdlineDefines(t *testing.T) {
	cfg := cpp.Config{Defines: []string{"FOO=41+1", "BAR"}, Undefines: []string{"BAR"}}
	tok, bag, err := preprocess(t, "#if BAR\nno\n#endif\nFOO\n", cfg, 20)
	if err != nil || bag.HasErrors() {
		t.Fatalf("err=%v diags=%+v", err, bag.Items())
	}
	want := []string{"41", "+", "1"}
	if diff := cmp.Diff(want, texts(tok)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

// Rendering preprocessed output and preprocessing it again is a fixed
// point for directive-free streams.
func TestRenderIdempotence(t *testing.T) {
	input := "#define SQ(x) ((x)*(x))\nint v = SQ(3);\nchar *s = \"a\" \"b\";\n"
	tok := mustPreprocess(t, input)
	first := render(t, tok)

	tok2 := mustPreprocess(t, first)
	second := render(t, tok2)
	if first != second {
		t.Fatalf("render not stable:\n first: %q\nsecond: %q", first, second)
	}
}
