package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, builtin header).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileHadSplice indicates backslash-newline splices were removed on load.
	FileHadSplice
)

// File captures metadata and content for a single source file.
//
// Content is immutable after Add. DisplayName and LineDelta are the only
// fields written later: a #line directive inside the file rewrites how
// subsequent diagnostics name and number it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags

	// DisplayName overrides Path in diagnostics when set by #line.
	DisplayName string
	// LineDelta is added to every reported line number, set by #line.
	LineDelta int32
}

// Name returns the name used in diagnostics and __FILE__ expansion.
func (f *File) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Path
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
