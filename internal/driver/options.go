package driver

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"cast/internal/cpp"
)

// DefaultMaxErrors caps collected errors per translation unit.
const DefaultMaxErrors = 20

// Options configures one preprocessing run. The zero value is usable;
// normalized fills in defaults.
type Options struct {
	// Include search, applied to every file of the run.
	QuoteDirs []string
	SysDirs   []string

	// Defines are -D seeds ("NAME" or "NAME=value"), Undefines -U names.
	Defines   []string
	Undefines []string

	Embed       cpp.EmbedLimits
	UseStdInc   bool
	URLCacheDir string

	MaxErrors        int
	WarningsAsErrors bool

	// Jobs bounds parallelism across files; 0 means GOMAXPROCS.
	Jobs int
}

func (o Options) normalized() Options {
	if o.MaxErrors <= 0 {
		o.MaxErrors = DefaultMaxErrors
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.Embed == (cpp.EmbedLimits{}) {
		o.Embed = cpp.DefaultEmbedLimits()
	}
	return o
}

func (o Options) cppConfig() cpp.Config {
	return cpp.Config{
		QuoteDirs:   o.QuoteDirs,
		SysDirs:     o.SysDirs,
		Defines:     o.Defines,
		Undefines:   o.Undefines,
		Embed:       o.Embed,
		UseStdInc:   o.UseStdInc,
		URLCacheDir: o.URLCacheDir,
	}
}

// ParseSize parses a byte count with an optional K, M or G suffix and
// an optional trailing B: "512", "10K", "50MB".
func ParseSize(s string) (uint64, error) {
	in := strings.TrimSpace(s)
	upper := strings.ToUpper(in)
	upper = strings.TrimSuffix(upper, "B")

	mult := uint64(1)
	switch {
	case strings.HasSuffix(upper, "K"):
		mult = 1 << 10
		upper = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "M"):
		mult = 1 << 20
		upper = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "G"):
		mult = 1 << 30
		upper = upper[:len(upper)-1]
	}
	if upper == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseUint(upper, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > 0 && mult > ^uint64(0)/n {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * mult, nil
}
