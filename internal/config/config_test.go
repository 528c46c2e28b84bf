// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clonescan/clonescan/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Parallelism != 1 {
		t.Errorf("Parallelism = %d, want 1", cfg.Parallelism)
	}
	if cfg.HashWorkers != 4 {
		t.Errorf("HashWorkers = %d, want 4", cfg.HashWorkers)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, FormatText)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Parallelism != 1 || cfg.Output.Format != FormatText {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
cache_dir: "/var/cache/packages"
parallelism: 8
output: format: "json"
ui: verbose: true
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.CacheDir != "/var/cache/packages" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", cfg.Parallelism)
	}
	if cfg.HashWorkers != 4 {
		t.Errorf("unset HashWorkers should keep default, got %d", cfg.HashWorkers)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be true")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"parallelism below range", `parallelism: 0`},
		{"unknown format", `output: format: "xml"`},
		{"unknown field", `colour: "red"`},
		{"syntax error", `parallelism: `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeConfig(t, dir, tt.content)

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
			}
			if ae.Resource != path {
				t.Errorf("Resource = %q, want %q", ae.Resource, path)
			}
			if !ae.HasSuggestions() {
				t.Error("expected suggestions")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Not parallel: t.Setenv modifies the process environment.
func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CLONESCAN_PARALLELISM", "6")
	t.Setenv("CLONESCAN_OUTPUT_FORMAT", "toml")

	dir := t.TempDir()
	writeConfig(t, dir, `parallelism: 2`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Parallelism != 6 {
		t.Errorf("Parallelism = %d, want 6 from environment", cfg.Parallelism)
	}
	if cfg.Output.Format != FormatTOML {
		t.Errorf("Output.Format = %q, want toml", cfg.Output.Format)
	}
}

// Not parallel: t.Setenv modifies the process environment.
func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("CLONESCAN_OUTPUT_FORMAT", "yaml")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidOutputFormat) {
		t.Fatalf("expected ErrInvalidOutputFormat, got %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig in chain, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	original := &Config{
		CacheDir:    "/opt/cache",
		Parallelism: 3,
		HashWorkers: 2,
		Output:      OutputConfig{Format: FormatTOML},
		Trust:       TrustConfig{Keyring: "/etc/clonescan/trusted.gpg"},
		UI:          UIConfig{Verbose: true},
	}

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(original))

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if *cfg != *original {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", *cfg, *original)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	opts := LoadOptions{ConfigDirPath: dir}

	path, err := CreateDefaultConfig(opts)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("config file not created: %v", statErr)
	}

	// An existing file is left untouched.
	if err := os.WriteFile(path, []byte("parallelism: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(opts); err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	cfg, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.Parallelism != 9 {
		t.Errorf("existing config was overwritten, Parallelism = %d", cfg.Parallelism)
	}
}

func TestConfigDir_Override(t *testing.T) {
	// Not parallel: mutates the package-level override.
	SetConfigDirOverride("/custom/dir")
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %q, want /custom/dir", dir)
	}
}

func TestOutputFormat_Validate(t *testing.T) {
	t.Parallel()

	for _, f := range []OutputFormat{FormatText, FormatJSON, FormatTOML} {
		if err := f.Validate(); err != nil {
			t.Errorf("%q.Validate() = %v", f, err)
		}
	}
	err := OutputFormat("csv").Validate()
	var fe *InvalidOutputFormatError
	if !errors.As(err, &fe) || fe.Value != "csv" {
		t.Errorf("expected *InvalidOutputFormatError for csv, got %v", err)
	}
}
