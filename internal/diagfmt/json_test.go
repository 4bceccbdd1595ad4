package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"cast/internal/diag"
	"cast/internal/source"
)

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte("int x = $;\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LexUnknownChar,
		Message:  "unexpected character '$'",
		Primary:  source.Span{File: id, Start: 8, End: 9},
		Notes: []diag.Note{
			{Span: source.Span{File: id, Start: 0, End: 3}, Msg: "declaration starts here"},
		},
	})

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, IncludeNotes: true}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatal(err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("output = %+v", out)
	}

	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "LEX0001" {
		t.Fatalf("diag = %+v", d)
	}
	if d.Location.File != "test.c" || d.Location.StartByte != 8 || d.Location.EndByte != 9 {
		t.Fatalf("location = %+v", d.Location)
	}
	if d.Location.StartLine != 1 || d.Location.StartCol != 9 {
		t.Fatalf("position = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declaration starts here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestJSONTruncation(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte("x\n"))

	bag := diag.NewBag(10)
	for range 5 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IncNotFound,
			Message:  "missing",
			Primary:  source.Span{File: id, Start: 0, End: 1},
		})
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 2}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Diagnostics) != 2 || out.Count != 5 {
		t.Fatalf("got %d diagnostics, count %d", len(out.Diagnostics), out.Count)
	}

	// Positions stay omitted unless asked for.
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("location = %+v", out.Diagnostics[0].Location)
	}
}
