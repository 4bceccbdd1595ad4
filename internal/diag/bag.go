package diag

import (
	"sort"
)

// Bag collects diagnostics up to a configured maximum, in report order.
// With WarningsAsErrors set, warnings are promoted on entry and count
// toward the error total and the cap.
type Bag struct {
	items            []Diagnostic
	max              int
	errors           int
	warnings         int
	warningsAsErrors bool
	limitHit         bool
}

func NewBag(max int) *Bag {
	if max < 1 {
		max = 1
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   max,
	}
}

// SetWarningsAsErrors promotes all subsequently added warnings to errors.
func (b *Bag) SetWarningsAsErrors(on bool) {
	b.warningsAsErrors = on
}

// Add appends a diagnostic, honoring the cap. Only errors (and promoted
// warnings) consume cap slots; plain warnings and infos are always kept.
// Returns false once the error limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.warningsAsErrors && d.Severity == SevWarning {
		d.Severity = SevError
	}

	if d.Severity < SevError {
		if d.Severity == SevWarning {
			b.warnings++
		}
		b.items = append(b.items, d)
		return true
	}

	if b.errors >= b.max {
		b.limitHit = true
		return false
	}
	b.errors++
	b.items = append(b.items, d)
	if b.errors >= b.max {
		b.limitHit = true
	}
	return b.errors < b.max
}

// Cap returns the configured error limit.
func (b *Bag) Cap() int {
	return b.max
}

// LimitReached reports whether the error limit was hit.
func (b *Bag) LimitReached() bool {
	return b.limitHit
}

// HasErrors reports whether at least one error was collected.
func (b *Bag) HasErrors() bool {
	return b.errors > 0
}

// HasWarnings reports whether at least one warning was collected.
func (b *Bag) HasWarnings() bool {
	return b.warnings > 0
}

// ErrorCount returns the number of collected errors.
func (b *Bag) ErrorCount() int {
	return b.errors
}

// WarningCount returns the number of collected warnings.
func (b *Bag) WarningCount() int {
	return b.warnings
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the collected diagnostics.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by file, start, end, severity (desc), code for
// deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
