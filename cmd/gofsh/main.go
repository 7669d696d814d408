// Package main implements the gofsh CLI tool.
// It reads FHIR JSON resources and writes FSH output groups to a directory.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gofsh "github.com/kodality/GoFSH"
	"github.com/kodality/GoFSH/config"
	"github.com/kodality/GoFSH/engine"
	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/worker"
)

const usage = `gofsh - convert FHIR resource definitions to FHIR Shorthand

Usage:
  gofsh [options] <file-or-dir>...
  gofsh [options] -              (read one resource from stdin)

Examples:
  gofsh input/
  gofsh -out fsh/ -style by-profile input/
  gofsh -canonical http://example.org/fhir profile.json
  cat patient.json | gofsh -

Options:
`

// cliConfig holds the parsed command line.
type cliConfig struct {
	Out         string
	Canonical   string
	Style       string
	FHIRVersion string
	NoInvariant bool
	Quiet       bool
	Verbose     bool
	ShowVersion bool
	Inputs      []string
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("gofsh v%s\n", gofsh.Version)
		os.Exit(0)
	}

	if len(cfg.Inputs) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}

	flag.StringVar(&cfg.Out, "out", "fsh", "Output directory for generated .fsh files")
	flag.StringVar(&cfg.Canonical, "canonical", "", "Canonical URL base (overrides sushi-config.yaml)")
	flag.StringVar(&cfg.Style, "style", "", "Output style: single-group, by-category, by-definition, by-profile")
	flag.StringVar(&cfg.FHIRVersion, "fhir-version", "", "FHIR version of the inputs (R4, R4B, R5)")
	flag.BoolVar(&cfg.NoInvariant, "no-invariant-checks", false, "Skip FHIRPath compile checks on invariant expressions")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Only log errors")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Show debug output")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()
	cfg.Inputs = flag.Args()
	return cfg
}

func run(cfg *cliConfig) int {
	level := logger.LevelInfo
	if cfg.Quiet {
		level = logger.LevelError
	}
	if cfg.Verbose {
		level = logger.LevelDebug
	}
	log := logger.New(os.Stderr, level)

	baseDir := "."
	if len(cfg.Inputs) > 0 && cfg.Inputs[0] != "-" {
		baseDir = cfg.Inputs[0]
		if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
			baseDir = filepath.Dir(baseDir)
		}
	}
	fileCfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.Canonical != "" {
		fileCfg.Canonical = cfg.Canonical
	}
	if cfg.Style != "" {
		fileCfg.Style = cfg.Style
	}
	if cfg.FHIRVersion != "" {
		fileCfg.FHIRVersion = cfg.FHIRVersion
	}
	if cfg.NoInvariant {
		off := false
		fileCfg.CheckInvariants = &off
	}
	if err := fileCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := append(fileCfg.Options(), gofsh.WithLogger(log))
	exporter, err := engine.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	loaded := 0
	for _, input := range cfg.Inputs {
		n, err := loadInput(exporter, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		loaded += n
	}
	if loaded == 0 {
		fmt.Fprintln(os.Stderr, "Error: no resources loaded")
		return 1
	}
	log.Info("loaded %d resource(s)", loaded)

	files, err := exporter.Export()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := writeOutput(cfg.Out, files); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	stats := exporter.Metrics().Snapshot()
	log.Info("exported %d resource(s), %d rule(s) in %s",
		stats.Resources, stats.Rules, stats.ExportTime)
	if stats.Skipped > 0 {
		log.Warn("%d value(s) could not be represented and were skipped", stats.Skipped)
	}
	return 0
}

// loadInput feeds one CLI argument into the exporter: stdin, a directory of
// .json files, or a single file. Directory files are read in parallel but
// loaded in name order, so export output stays deterministic.
func loadInput(exporter *engine.Exporter, input string) (int, error) {
	if input == "-" {
		data, err := readAllStdin()
		if err != nil {
			return 0, err
		}
		return loadData(exporter, "stdin", data)
	}

	info, err := os.Stat(input)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(input)
		if err != nil {
			return 0, err
		}
		return loadData(exporter, input, data)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return 0, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(input, entry.Name()))
	}

	contents := worker.Batch(context.Background(), 0, paths, func(_ context.Context, path string) ([]byte, error) {
		return os.ReadFile(path)
	})

	loaded := 0
	for i, result := range contents {
		if result.Err != nil {
			return loaded, result.Err
		}
		n, err := loadData(exporter, paths[i], result.Value)
		if err != nil {
			return loaded, err
		}
		loaded += n
	}
	return loaded, nil
}

// loadData loads one JSON document. Bundles are unpacked into their entry
// resources.
func loadData(exporter *engine.Exporter, name string, data []byte) (int, error) {
	if !json.Valid(data) {
		return 0, fmt.Errorf("%s: not valid JSON", name)
	}
	var head struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if head.ResourceType == "Bundle" {
		n, err := exporter.Fisher().LoadBundle(bytes.NewReader(data))
		if err != nil {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	}
	if err := exporter.Load(data); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return 1, nil
}

func readAllStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// writeOutput writes each group as <dir>/<group>.fsh and the index as
// <dir>/index.txt. Group names are written in sorted order so repeated runs
// touch files deterministically.
func writeOutput(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ext := ".fsh"
		if name == "index" {
			ext = ".txt"
		}
		path := filepath.Join(dir, name+ext)
		if err := os.WriteFile(path, []byte(files[name]+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}
