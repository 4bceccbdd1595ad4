package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Reports whether at least one replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// removeSplices deletes backslash-newline sequences (C translation phase 2).
// Removed newlines are re-inserted after the next real newline so that the
// total line count, and therefore every later line number, stays intact.
func removeSplices(content []byte) ([]byte, bool) {
	out := make([]byte, 0, len(content))
	changed := false
	pending := 0

	i := 0
	for i < len(content) {
		if content[i] == '\\' && i+1 < len(content) && content[i+1] == '\n' {
			i += 2
			pending++
			changed = true
			continue
		}
		if content[i] == '\n' {
			out = append(out, '\n')
			i++
			for ; pending > 0; pending-- {
				out = append(out, '\n')
			}
			continue
		}
		out = append(out, content[i])
		i++
	}
	for ; pending > 0; pending-- {
		out = append(out, '\n')
	}
	return out, changed
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Binary search for the largest lineIdx[i] strictly before off.
	// A newline terminates its own line, so lineIdx[i] == off means
	// off is still on line i+1.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	startOff := lineIdx[hi] + 1
	return LineCol{Line: uint32(hi + 2), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// NormalizePath is the canonical path form used as a map key by the
// FileSet and the include machinery.
func NormalizePath(p string) string {
	return normalizePath(p)
}
