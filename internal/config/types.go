// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// FormatText renders reports as styled terminal text.
	FormatText OutputFormat = "text"
	// FormatJSON renders reports as JSON.
	FormatJSON OutputFormat = "json"
	// FormatTOML renders reports as TOML.
	FormatTOML OutputFormat = "toml"
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects the report renderer.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// InvalidConfigError aggregates field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the clonescan configuration.
	Config struct {
		CacheDir    string       `json:"cache_dir" mapstructure:"cache_dir"`
		Parallelism int          `json:"parallelism" mapstructure:"parallelism"`
		HashWorkers int          `json:"hash_workers" mapstructure:"hash_workers"`
		Output      OutputConfig `json:"output" mapstructure:"output"`
		Trust       TrustConfig  `json:"trust" mapstructure:"trust"`
		UI          UIConfig     `json:"ui" mapstructure:"ui"`
	}

	// OutputConfig configures report rendering.
	OutputConfig struct {
		Format OutputFormat `json:"format" mapstructure:"format"`
	}

	// TrustConfig configures archive signature checks.
	TrustConfig struct {
		// Keyring is the path of an OpenPGP keyring. Empty disables signature checks.
		Keyring string `json:"keyring" mapstructure:"keyring"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// Validate returns nil for a known format.
func (f OutputFormat) Validate() error {
	switch f {
	case FormatText, FormatJSON, FormatTOML:
		return nil
	default:
		return &InvalidOutputFormatError{Value: f}
	}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the constraints the schema cannot see, such as values
// coming from environment variables.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Output.Format.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	if c.HashWorkers < 1 {
		errs = append(errs, fmt.Errorf("hash_workers must be at least 1, got %d", c.HashWorkers))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:    defaultCacheDir(),
		Parallelism: 1,
		HashWorkers: 4,
		Output:      OutputConfig{Format: FormatText},
	}
}
