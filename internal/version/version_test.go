package version

import "testing"

func TestDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version must have a default")
	}
	// GitCommit, GitMessage and BuildDate stay empty unless injected
	// via -ldflags.
	_ = GitCommit
	_ = GitMessage
	_ = BuildDate
}

func TestLdflagsOverride(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if Version != "1.2.3" {
		t.Errorf("Version = %q", Version)
	}
}
