package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cast/internal/diagfmt"
	"cast/internal/driver"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] file.c...",
	Short: "Run the preprocessor and print the expanded source",
	Long: `Preprocess runs macro expansion, conditional inclusion and include
resolution over one or more C files and writes the expanded source.

A single input writes to stdout (or -o FILE); multiple inputs write
<name>.i next to each file, or into the -o directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreprocess,
}

var preprocessFlags struct {
	quoteDirs   []string
	sysDirs     []string
	defines     []string
	undefines   []string
	output      string
	embedSoft   string
	embedHard   string
	embedStrict bool
	werror      bool
	maxErrors   int
	noStdInc    bool
	noManifest  bool
	urlCache    string
	ui          string
	jobs        int
	diagFormat  string
}

func init() {
	f := preprocessCmd.Flags()
	f.StringArrayVarP(&preprocessFlags.quoteDirs, "include", "I", nil, "add a quote include search directory")
	f.StringArrayVar(&preprocessFlags.sysDirs, "isystem", nil, "add a system include search directory")
	f.StringArrayVarP(&preprocessFlags.defines, "define", "D", nil, "predefine a macro (NAME or NAME=value)")
	f.StringArrayVarP(&preprocessFlags.undefines, "undef", "U", nil, "undefine a macro")
	f.StringVarP(&preprocessFlags.output, "output", "o", "", "output file (single input) or directory")
	f.StringVar(&preprocessFlags.embedSoft, "embed-limit", "", "warn when an #embed payload exceeds this size (K/M/G suffixes)")
	f.StringVar(&preprocessFlags.embedHard, "embed-hard-limit", "", "refuse #embed payloads above this size")
	f.BoolVar(&preprocessFlags.embedStrict, "embed-hard-error", false, "treat the soft embed limit as an error")
	f.BoolVar(&preprocessFlags.werror, "werror", false, "treat warnings as errors")
	f.IntVar(&preprocessFlags.maxErrors, "max-errors", driver.DefaultMaxErrors, "stop after this many errors per file (1 = stop on first)")
	f.BoolVar(&preprocessFlags.noStdInc, "no-std-inc", false, "do not serve the bundled standard headers")
	f.BoolVar(&preprocessFlags.noManifest, "no-manifest", false, "ignore any cast.toml manifest")
	f.StringVar(&preprocessFlags.urlCache, "url-cache", "", "directory for the remote-include cache")
	f.StringVar(&preprocessFlags.ui, "ui", "auto", "interactive progress (auto|on|off)")
	f.IntVar(&preprocessFlags.jobs, "jobs", 0, "parallel file limit (0 = GOMAXPROCS)")
	f.StringVar(&preprocessFlags.diagFormat, "diag-format", "pretty", "diagnostic format (pretty|json)")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(args)
	if err != nil {
		return err
	}
	if preprocessFlags.diagFormat != "pretty" && preprocessFlags.diagFormat != "json" {
		return fmt.Errorf("unknown diagnostic format: %s", preprocessFlags.diagFormat)
	}
	mode, err := readUIMode(preprocessFlags.ui)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	// The TUI owns stdout, so it only runs when output goes to files.
	useTUI := shouldUseTUI(mode) && !quiet &&
		(len(args) > 1 || preprocessFlags.output != "")
	if mode == uiModeAuto && len(args) == 1 {
		useTUI = false
	}

	var results []*driver.Result
	if useTUI {
		results, err = runPreprocessWithUI(cmd.Context(), "preprocessing", args, opts)
	} else {
		results, err = driver.PreprocessAll(context.Background(), args, opts, nil)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		reportDiagnostics(cmd, res)
		if res.Failed() {
			failed++
			continue
		}
		if err := writeResult(res, len(args) == 1); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("preprocessing failed for %d of %d files", failed, len(results))
	}
	return nil
}

// buildOptions merges the manifest (unless disabled) under the flags.
func buildOptions(args []string) (driver.Options, error) {
	opts := driver.Options{
		QuoteDirs:        preprocessFlags.quoteDirs,
		SysDirs:          preprocessFlags.sysDirs,
		Defines:          preprocessFlags.defines,
		Undefines:        preprocessFlags.undefines,
		UseStdInc:        true,
		URLCacheDir:      preprocessFlags.urlCache,
		MaxErrors:        preprocessFlags.maxErrors,
		WarningsAsErrors: preprocessFlags.werror,
		Jobs:             preprocessFlags.jobs,
	}

	if !preprocessFlags.noManifest {
		manifest, ok, err := loadProjectManifest(filepath.Dir(args[0]))
		if err != nil {
			return opts, err
		}
		if ok {
			if err := applyManifest(&opts, manifest); err != nil {
				return opts, err
			}
		}
	}

	if preprocessFlags.embedSoft != "" {
		soft, err := driver.ParseSize(preprocessFlags.embedSoft)
		if err != nil {
			return opts, fmt.Errorf("--embed-limit: %w", err)
		}
		opts.Embed.Soft = soft
	}
	if preprocessFlags.embedHard != "" {
		hard, err := driver.ParseSize(preprocessFlags.embedHard)
		if err != nil {
			return opts, fmt.Errorf("--embed-hard-limit: %w", err)
		}
		opts.Embed.Hard = hard
	}
	if preprocessFlags.embedStrict {
		opts.Embed.HardError = true
	}
	if preprocessFlags.noStdInc {
		opts.UseStdInc = false
	}
	return opts, nil
}

func reportDiagnostics(cmd *cobra.Command, res *driver.Result) {
	if res.Bag.Len() == 0 {
		return
	}
	res.Bag.Sort()
	if preprocessFlags.diagFormat == "json" {
		_ = diagfmt.JSON(os.Stderr, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
		return
	}
	colored := useColor(cmd, os.Stderr)
	diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
		Color:       colored,
		ShowNotes:   true,
		ShowPreview: true,
	})
	diagfmt.Summary(os.Stderr, res.Bag, colored)
}

func writeResult(res *driver.Result, single bool) error {
	out := preprocessFlags.output
	if single {
		if out == "" || out == "-" {
			return res.Render(os.Stdout)
		}
		return renderToFile(res, out)
	}
	return renderToFile(res, multiOutputPath(res.Path, out))
}

// multiOutputPath maps input.c to input.i, inside outDir when given.
func multiOutputPath(input, outDir string) string {
	base := filepath.Base(input)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base += ".i"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

func renderToFile(res *driver.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
