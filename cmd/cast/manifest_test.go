package main

import (
	"os"
	"path/filepath"
	"testing"

	"cast/internal/driver"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cast.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindCastTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	want := writeManifest(t, root, "[package]\nname = \"demo\"\n")

	got, ok, err := findCastToml(sub)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("found %q, want %q", got, want)
	}
}

func TestFindCastTomlMissing(t *testing.T) {
	_, ok, err := findCastToml(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("unexpected manifest")
	}
}

func TestApplyManifest(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, `
[package]
name = "demo"

[preprocess]
include = ["vendor/include"]
define = ["DEMO=1"]
embed-limit = "1M"
embed-hard-limit = "4M"
std-inc = false
`)

	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	m := &projectManifest{Path: path, Root: root, Config: cfg}

	opts := driver.Options{
		QuoteDirs: []string{"/flag/dir"},
		Defines:   []string{"FLAG=1"},
		UseStdInc: true,
	}
	if err := applyManifest(&opts, m); err != nil {
		t.Fatal(err)
	}

	// Manifest dirs come first, anchored at the manifest root; flag
	// entries follow.
	wantDir := filepath.Join(root, "vendor/include")
	if len(opts.QuoteDirs) != 2 || opts.QuoteDirs[0] != wantDir || opts.QuoteDirs[1] != "/flag/dir" {
		t.Fatalf("QuoteDirs = %v", opts.QuoteDirs)
	}
	if len(opts.Defines) != 2 || opts.Defines[0] != "DEMO=1" {
		t.Fatalf("Defines = %v", opts.Defines)
	}
	if opts.Embed.Soft != 1<<20 || opts.Embed.Hard != 4<<20 {
		t.Fatalf("Embed = %+v", opts.Embed)
	}
	if opts.UseStdInc {
		t.Fatal("std-inc = false must disable bundled headers")
	}
}

func TestLoadProjectConfigRejectsUnnamedPackage(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[package]\n")
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatal("expected an error for a [package] without name")
	}
}

func TestMultiOutputPath(t *testing.T) {
	cases := []struct {
		input, outDir, want string
	}{
		{"src/main.c", "", filepath.Join("src", "main.i")},
		{"src/main.c", "build", filepath.Join("build", "main.i")},
		{"noext", "", "noext.i"},
	}
	for _, c := range cases {
		if got := multiOutputPath(c.input, c.outDir); got != c.want {
			t.Errorf("multiOutputPath(%q, %q) = %q, want %q", c.input, c.outDir, got, c.want)
		}
	}
}
