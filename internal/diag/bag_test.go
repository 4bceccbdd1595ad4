package diag

import (
	"testing"

	"cast/internal/source"
)

func errAt(off uint32) Diagnostic {
	return Diagnostic{Severity: SevError, Code: PreArity, Message: "too many arguments",
		Primary: source.Span{Start: off, End: off + 1}}
}

func warnAt(off uint32) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: PreRedefined, Message: "redefined",
		Primary: source.Span{Start: off, End: off + 1}}
}

func TestBagCap(t *testing.T) {
	b := NewBag(3)
	for i := range 10 {
		b.Add(errAt(uint32(i)))
	}
	if b.ErrorCount() != 3 {
		t.Fatalf("ErrorCount = %d, want 3", b.ErrorCount())
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	if !b.LimitReached() {
		t.Fatal("limit not reported")
	}
}

func TestBagWarningsDoNotConsumeCap(t *testing.T) {
	b := NewBag(2)
	for i := range 5 {
		b.Add(warnAt(uint32(i)))
	}
	b.Add(errAt(100))
	if b.LimitReached() {
		t.Fatal("warnings consumed the error cap")
	}
	if b.WarningCount() != 5 || b.ErrorCount() != 1 {
		t.Fatalf("counts = %d warnings, %d errors", b.WarningCount(), b.ErrorCount())
	}
}

func TestBagWarningsAsErrors(t *testing.T) {
	b := NewBag(2)
	b.SetWarningsAsErrors(true)
	b.Add(warnAt(0))
	b.Add(warnAt(1))
	b.Add(warnAt(2))

	if b.WarningCount() != 0 {
		t.Fatalf("WarningCount = %d", b.WarningCount())
	}
	if b.ErrorCount() != 2 {
		t.Fatalf("ErrorCount = %d", b.ErrorCount())
	}
	if !b.LimitReached() {
		t.Fatal("promoted warnings should hit the cap")
	}
	for _, d := range b.Items() {
		if d.Severity != SevError {
			t.Fatalf("unpromoted severity %v", d.Severity)
		}
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(errAt(5))
	b.Add(warnAt(5))
	b.Add(errAt(1))
	b.Sort()

	items := b.Items()
	if items[0].Primary.Start != 1 {
		t.Fatalf("first item at %d", items[0].Primary.Start)
	}
	// Same span: error sorts before warning.
	if items[1].Severity != SevError || items[2].Severity != SevWarning {
		t.Fatalf("severity order: %v, %v", items[1].Severity, items[2].Severity)
	}
}

func TestBagReporter(t *testing.T) {
	b := NewBag(4)
	var r Reporter = BagReporter{Bag: b}
	r.Report(LexUnknownChar, SevError, source.Span{}, "stray '@'", nil)
	if b.ErrorCount() != 1 {
		t.Fatalf("ErrorCount = %d", b.ErrorCount())
	}
}
