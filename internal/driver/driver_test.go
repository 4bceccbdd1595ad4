package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cast/internal/diag"
	"cast/internal/token"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPreprocessRender(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "main.c", "#define N 3\nint a[N];\n")

	res := Preprocess(path, Options{})
	if res.Failed() {
		t.Fatalf("err=%v diags=%+v", res.Err, res.Bag.Items())
	}

	var buf bytes.Buffer
	if err := res.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "int a[3];\n" {
		t.Fatalf("rendered %q", got)
	}
}

func TestPreprocessClassifiesKeywords(t *testing.T) {
	res := PreprocessSource("test.c", []byte("int x; foo y;\n"), Options{})
	if res.Failed() {
		t.Fatalf("err=%v diags=%+v", res.Err, res.Bag.Items())
	}
	if res.Tokens.Kind != token.Keyword {
		t.Fatalf("`int` classified as %v", res.Tokens.Kind)
	}
}

func TestPreprocessWarningsAsErrors(t *testing.T) {
	src := []byte("#define A 1\n#define A 2\n")

	res := PreprocessSource("test.c", src, Options{})
	if res.Failed() || res.Bag.WarningCount() != 1 {
		t.Fatalf("err=%v diags=%+v", res.Err, res.Bag.Items())
	}

	res = PreprocessSource("test.c", src, Options{WarningsAsErrors: true})
	if !res.Failed() {
		t.Fatalf("redefinition must fail under -Werror: %+v", res.Bag.Items())
	}
}

type sliceSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *sliceSink) OnEvent(evt Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func TestPreprocessAll(t *testing.T) {
	dir := t.TempDir()
	good := writeTemp(t, dir, "good.c", "#define OK 1\nOK\n")
	bad := writeTemp(t, dir, "bad.c", "#include \"missing.h\"\n")
	also := writeTemp(t, dir, "also.c", "x\n")

	sink := &sliceSink{}
	results, err := PreprocessAll(context.Background(), []string{good, bad, also}, Options{Jobs: 2}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}

	// Input order survives the parallel run.
	if results[0].Path != good || results[1].Path != bad || results[2].Path != also {
		t.Fatalf("order: %s %s %s", results[0].Path, results[1].Path, results[2].Path)
	}
	if results[0].Failed() || results[2].Failed() {
		t.Fatalf("clean files failed: %+v %+v", results[0].Bag.Items(), results[2].Bag.Items())
	}
	if !results[1].Failed() {
		t.Fatal("bad.c must fail")
	}
	found := false
	for _, d := range results[1].Bag.Items() {
		if d.Code == diag.IncNotFound {
			found = true
		}
	}
	if !found {
		t.Fatalf("IncNotFound missing: %+v", results[1].Bag.Items())
	}

	// Per-file terminal events: two done, one error.
	done, errored := 0, 0
	for _, evt := range sink.events {
		switch evt.Status {
		case StatusDone:
			done++
		case StatusError:
			errored++
		}
	}
	if done != 2 || errored != 1 {
		t.Fatalf("events: done=%d error=%d (%+v)", done, errored, sink.events)
	}
}

func TestPreprocessAllCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	files := []string{
		writeTemp(t, dir, "a.c", "x\n"),
		writeTemp(t, dir, "b.c", "y\n"),
	}
	if _, err := PreprocessAll(ctx, files, Options{Jobs: 1}, nil); err == nil {
		t.Fatal("cancelled run must report an error")
	}
}

func TestTokenizeSurfacesLexErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.c", "\"unterminated\nint x;\n")

	res, err := Tokenize(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("no diagnostics: %+v", res.Bag.Items())
	}
	if res.Bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("code = %v", res.Bag.Items()[0].Code)
	}
	if res.Tokens == nil || res.Tokens.Kind != token.Invalid {
		t.Fatalf("stream head = %+v", res.Tokens)
	}
}
