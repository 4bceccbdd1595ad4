package cpp

import "embed"

// Bundled fallback headers, served for an angle include that misses
// every configured directory when UseStdInc is on.
//
//go:embed stdinc
var stdincFS embed.FS

func stdHeader(name string) ([]byte, bool) {
	content, err := stdincFS.ReadFile("stdinc/" + name)
	if err != nil {
		return nil, false
	}
	return content, true
}
