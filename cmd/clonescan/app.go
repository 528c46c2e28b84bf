// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/clonescan/clonescan/internal/config"
	"github.com/clonescan/clonescan/internal/issue"
	"github.com/clonescan/clonescan/internal/pkgcache"
)

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra command handler receives an App reference.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
		// installSlog routes log/slog through the CLI logger. Only set when
		// logging to the process stderr.
		installSlog bool

		// Set by the root command before any subcommand runs.
		flags    rootFlags
		settings *config.Config
		logger   *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlags holds the persistent flags of the root command.
	rootFlags struct {
		verbose    bool
		quiet      bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	installSlog := false
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
		installSlog = true
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config:      deps.Config,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		installSlog: installSlog,
	}, nil
}

// loadSettings loads the configuration and sets up logging. A configuration
// that fails to load is reported as a warning and replaced by the defaults.
func (a *App) loadSettings(ctx context.Context) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = config.DefaultConfig()
	}
	a.settings = cfg

	if !a.flags.verbose && !a.flags.quiet {
		a.flags.verbose = cfg.UI.Verbose
	}

	level := log.WarnLevel
	switch {
	case a.flags.quiet:
		level = log.ErrorLevel
	case a.flags.verbose:
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	if a.installSlog {
		slog.SetDefault(slog.New(a.logger))
	}
}

// currentConfig returns the loaded settings, or the defaults when the root command
// has not run (direct subcommand tests).
func (a *App) currentConfig() *config.Config {
	if a.settings == nil {
		return config.DefaultConfig()
	}
	return a.settings
}

// componentLogger returns the CLI logger with the given prefix.
func (a *App) componentLogger(prefix string) *log.Logger {
	if a.logger == nil {
		a.logger = log.NewWithOptions(a.stderr, log.Options{Level: log.WarnLevel})
	}
	return a.logger.WithPrefix(prefix)
}

// newScanner opens the package cache. A configured keyring enables signature checks.
func (a *App) newScanner(cacheDir, keyring string) (*pkgcache.Scanner, error) {
	if cacheDir == "" {
		root, err := pkgcache.DefaultRoot()
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("locate package cache").
				WithIssue(issue.CacheNotFoundId).
				WithSuggestion("Pass --cache-dir or set cache_dir in the configuration").
				Wrap(err).
				BuildError()
		}
		cacheDir = root
	}

	var opts []pkgcache.Option
	if keyring != "" {
		entities, err := pkgcache.LoadKeyring(keyring)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load trust keyring").
				WithResource(keyring).
				WithIssue(issue.KeyringLoadFailedId).
				WithSuggestion("Export the publisher keys with 'gpg --export' into the keyring file").
				WithSuggestion("Clear trust.keyring in the configuration to disable signature checks").
				Wrap(err).
				BuildError()
		}
		verifier, err := pkgcache.NewOpenPGPVerifier(entities)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pkgcache.WithSignatureVerifier(verifier))
	}
	return pkgcache.NewScanner(cacheDir, opts...)
}

// fail renders the catalog help of an actionable error and returns it so that
// Cobra reports it.
func (a *App) fail(err error) error {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return err
	}

	if ae.Issue != 0 {
		if entry := issue.Get(ae.Issue); entry != nil {
			rendered, renderErr := entry.Render("dark")
			if renderErr != nil {
				slog.Warn("failed to render issue catalog entry", "issueID", ae.Issue, "error", renderErr)
			} else {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	if ae.HasSuggestions() || a.flags.verbose {
		fmt.Fprintln(a.stderr, ae.Format(a.flags.verbose))
	}
	return err
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
