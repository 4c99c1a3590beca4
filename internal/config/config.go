// Package config holds conversion settings: defaults, the optional
// .atomizer.kdl project file, and validation. CLI flags override file
// values; file values override defaults.
package config

import (
	"fmt"
	"runtime"

	"github.com/standardbeagle/atomizer/internal/errors"
)

// Config is the effective configuration for one conversion run.
type Config struct {
	Version int
	Project Project
	Convert Convert
	Include []string
	Exclude []string
}

// Project identifies the analyzed source tree.
type Project struct {
	Root string
	Name string
}

// Convert tunes span extraction and the worker pool.
type Convert struct {
	// Workers bounds the span-extraction pool. Zero means one per CPU.
	Workers int
	// MaxFileSize skips parsing of files larger than this many bytes;
	// their anchors degrade to the text fallback.
	MaxFileSize int64
	// FuzzyThreshold is the minimum Jaro-Winkler similarity accepted when
	// reconciling a symbol name against a span name that is not an exact
	// match. Range (0, 1].
	FuzzyThreshold float64
	// FallbackScanLines bounds the backward scan for a function header in
	// the text-recovery tier.
	FallbackScanLines int
	// FallbackMaxBodyLines bounds the forward brace scan in the
	// text-recovery tier.
	FallbackMaxBodyLines int
}

// Rationale: the fallback windows mirror how far real Rust code strays
// from its anchor line. Doc comments and attributes rarely exceed a few
// dozen lines; generated bodies can run long but not unboundedly.
const (
	DefaultMaxFileSize          = 10 * 1024 * 1024
	DefaultFuzzyThreshold       = 0.85
	DefaultFallbackScanLines    = 30
	DefaultFallbackMaxBodyLines = 2000
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Convert: Convert{
			Workers:              runtime.NumCPU(),
			MaxFileSize:          DefaultMaxFileSize,
			FuzzyThreshold:       DefaultFuzzyThreshold,
			FallbackScanLines:    DefaultFallbackScanLines,
			FallbackMaxBodyLines: DefaultFallbackMaxBodyLines,
		},
		Include: []string{},
		Exclude: []string{"target/**", "**/node_modules/**"},
	}
}

// Validate checks ranges and returns a ConfigError for the first violation.
func (c *Config) Validate() error {
	if c.Convert.Workers < 0 {
		return errors.NewConfigError("convert.workers",
			fmt.Sprintf("%d", c.Convert.Workers), fmt.Errorf("must be >= 0"))
	}
	if c.Convert.MaxFileSize <= 0 {
		return errors.NewConfigError("convert.max_file_size",
			fmt.Sprintf("%d", c.Convert.MaxFileSize), fmt.Errorf("must be positive"))
	}
	if c.Convert.FuzzyThreshold <= 0 || c.Convert.FuzzyThreshold > 1 {
		return errors.NewConfigError("convert.fuzzy_threshold",
			fmt.Sprintf("%g", c.Convert.FuzzyThreshold), fmt.Errorf("must be in (0, 1]"))
	}
	if c.Convert.FallbackScanLines <= 0 {
		return errors.NewConfigError("convert.fallback_scan_lines",
			fmt.Sprintf("%d", c.Convert.FallbackScanLines), fmt.Errorf("must be positive"))
	}
	if c.Convert.FallbackMaxBodyLines <= 0 {
		return errors.NewConfigError("convert.fallback_max_body_lines",
			fmt.Sprintf("%d", c.Convert.FallbackMaxBodyLines), fmt.Errorf("must be positive"))
	}
	return nil
}

// EffectiveWorkers resolves the worker count, treating zero as one per CPU.
func (c *Config) EffectiveWorkers() int {
	if c.Convert.Workers > 0 {
		return c.Convert.Workers
	}
	return runtime.NumCPU()
}
