package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"cast/internal/driver"
)

// projectManifest is an optional cast.toml found by walking up from the
// first input file. It seeds preprocessing options; flags are merged on
// top (list flags append, scalar flags override).
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package    packageConfig    `toml:"package"`
	Preprocess preprocessConfig `toml:"preprocess"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type preprocessConfig struct {
	Include        []string `toml:"include"`
	SystemInclude  []string `toml:"system-include"`
	Define         []string `toml:"define"`
	Undef          []string `toml:"undef"`
	EmbedLimit     string   `toml:"embed-limit"`
	EmbedHardLimit string   `toml:"embed-hard-limit"`
	EmbedHardError bool     `toml:"embed-hard-error"`
	StdInc         *bool    `toml:"std-inc"`
}

func findCastToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "cast.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findCastToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("package") &&
		(!meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "") {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	return cfg, nil
}

// applyManifest folds manifest settings into opts. Manifest-relative
// include directories are anchored at the manifest's own directory.
func applyManifest(opts *driver.Options, m *projectManifest) error {
	pp := m.Config.Preprocess

	opts.QuoteDirs = append(anchorDirs(m.Root, pp.Include), opts.QuoteDirs...)
	opts.SysDirs = append(anchorDirs(m.Root, pp.SystemInclude), opts.SysDirs...)
	opts.Defines = append(append([]string(nil), pp.Define...), opts.Defines...)
	opts.Undefines = append(append([]string(nil), pp.Undef...), opts.Undefines...)

	if pp.EmbedLimit != "" {
		soft, err := driver.ParseSize(pp.EmbedLimit)
		if err != nil {
			return fmt.Errorf("%s: embed-limit: %w", m.Path, err)
		}
		opts.Embed.Soft = soft
	}
	if pp.EmbedHardLimit != "" {
		hard, err := driver.ParseSize(pp.EmbedHardLimit)
		if err != nil {
			return fmt.Errorf("%s: embed-hard-limit: %w", m.Path, err)
		}
		opts.Embed.Hard = hard
	}
	if pp.EmbedHardError {
		opts.Embed.HardError = true
	}
	if pp.StdInc != nil {
		opts.UseStdInc = *pp.StdInc
	}
	return nil
}

func anchorDirs(root string, dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(root, d)
		}
		out = append(out, d)
	}
	return out
}
