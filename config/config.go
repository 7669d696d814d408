// Package config loads exporter settings from a project configuration file.
//
// The file format follows the sushi-config.yaml conventions used by FHIR
// shorthand projects: canonical, fhirVersion and a style section. Settings
// given on the command line win over settings from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	gofsh "github.com/kodality/GoFSH"
	"github.com/kodality/GoFSH/output"
)

// FileName is the project configuration file searched for in the input
// directory and its parents.
const FileName = "sushi-config.yaml"

// Config holds the file-level exporter settings.
type Config struct {
	// Canonical is the canonical URL base of the project. Resource urls of
	// the form <canonical>/<type>/<id> are treated as derivable and not
	// exported.
	Canonical string `yaml:"canonical"`
	// FHIRVersion selects the FHIR release the inputs conform to.
	FHIRVersion string `yaml:"fhirVersion"`
	// Style selects the output grouping strategy.
	Style string `yaml:"style"`
	// CheckInvariants toggles FHIRPath compile checks on invariant
	// expressions.
	CheckInvariants *bool `yaml:"checkInvariants"`
}

// Default returns the settings used when no configuration file is present.
func Default() *Config {
	return &Config{
		FHIRVersion: string(gofsh.R4),
		Style:       output.StrategyByCategory,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.FHIRVersion != "" && !gofsh.FHIRVersion(c.FHIRVersion).IsValid() {
		return fmt.Errorf("unsupported fhirVersion: %s", c.FHIRVersion)
	}
	switch c.Style {
	case "", output.StrategySingleGroup, output.StrategyByCategory, output.StrategyByDefinition, output.StrategyByProfile:
		return nil
	}
	return fmt.Errorf("unknown style: %s", c.Style)
}

// Merge overlays non-empty settings from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Canonical != "" {
		c.Canonical = other.Canonical
	}
	if other.FHIRVersion != "" {
		c.FHIRVersion = other.FHIRVersion
	}
	if other.Style != "" {
		c.Style = other.Style
	}
	if other.CheckInvariants != nil {
		c.CheckInvariants = other.CheckInvariants
	}
}

// Options converts the settings into exporter options.
func (c *Config) Options() []gofsh.Option {
	opts := []gofsh.Option{
		gofsh.WithCanonical(c.Canonical),
		gofsh.WithOutputStrategy(c.Style),
	}
	if c.FHIRVersion != "" {
		opts = append(opts, gofsh.WithFHIRVersion(gofsh.FHIRVersion(c.FHIRVersion)))
	}
	if c.CheckInvariants != nil {
		opts = append(opts, gofsh.WithInvariantChecks(*c.CheckInvariants))
	}
	return opts
}

// LoadFromFile reads and decodes one configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Find walks from dir upward looking for the configuration file and returns
// its path, or "" when no file exists.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load resolves the effective settings for dir: defaults, overlaid with the
// nearest configuration file when one is found.
func Load(dir string) (*Config, error) {
	cfg := Default()
	path := Find(dir)
	if path == "" {
		return cfg, nil
	}
	fileCfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
