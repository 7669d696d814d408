package gofsh

import (
	"github.com/kodality/GoFSH/pkg/logger"
)

// Option configures the exporter.
type Option func(*Options)

// Options holds all configuration for an export run.
type Options struct {
	// Logger receives extraction diagnostics. Defaults to stderr at info.
	Logger *logger.Logger

	// Canonical is the canonical URL base. A resource url equal to
	// <Canonical>/<ResourceType>/<id> is conventional and produces no rule.
	Canonical string

	// OutputStrategy selects how statements are partitioned into output
	// groups: single-group, by-category, by-definition or by-profile.
	OutputStrategy string

	// FHIRVersion is the FHIR release of the input resources.
	FHIRVersion FHIRVersion

	// FishCacheSize bounds the lookup result cache.
	FishCacheSize int

	// CheckInvariants enables FHIRPath compile-checking of element
	// constraint expressions.
	CheckInvariants bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		OutputStrategy:  "by-category",
		FHIRVersion:     R4,
		FishCacheSize:   500,
		CheckInvariants: true,
	}
}

// WithLogger sets the logger receiving extraction diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithCanonical sets the canonical URL base used for url suppression.
func WithCanonical(canonical string) Option {
	return func(o *Options) {
		o.Canonical = canonical
	}
}

// WithOutputStrategy sets the output grouping strategy.
func WithOutputStrategy(strategy string) Option {
	return func(o *Options) {
		o.OutputStrategy = strategy
	}
}

// WithFHIRVersion sets the FHIR release of the input resources.
func WithFHIRVersion(v FHIRVersion) Option {
	return func(o *Options) {
		o.FHIRVersion = v
	}
}

// WithFishCacheSize bounds the lookup result cache.
func WithFishCacheSize(n int) Option {
	return func(o *Options) {
		o.FishCacheSize = n
	}
}

// WithInvariantChecks toggles FHIRPath compile-checking of constraint
// expressions.
func WithInvariantChecks(enabled bool) Option {
	return func(o *Options) {
		o.CheckInvariants = enabled
	}
}
