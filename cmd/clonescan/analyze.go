// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clonescan/clonescan/internal/analysis"
	"github.com/clonescan/clonescan/internal/config"
	"github.com/clonescan/clonescan/internal/issue"
	"github.com/clonescan/clonescan/internal/resolver"
	"github.com/clonescan/clonescan/internal/toolchain"
	"github.com/clonescan/clonescan/pkg/workspace"
)

// analyzeOptions holds the flags of `clonescan analyze`. Zero values defer to
// the configuration.
type analyzeOptions struct {
	format           string
	parallelism      int
	hashWorkers      int
	cacheDir         string
	output           string
	failOnDuplicates bool
}

func newAnalyzeCommand(app *App) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [workspace]",
		Short: "Report methods with identical bodies across a workspace",
		Long: `Report methods with identical bodies across a workspace.

The workspace argument is a clonescan.cue / clonescan.yaml file, or a
directory containing one (default: the current directory).

Modules are processed in dependency order. The first callable seen with a
given body is canonical; every later callable with the same body is reported
as its duplicate. Modules that fail to compile and references that cannot be
resolved are listed in the report without stopping the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runAnalyze(cmd, app, opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: text, json, or toml (default from config)")
	cmd.Flags().IntVarP(&opts.parallelism, "parallelism", "p", 0, "modules of one dependency level processed at once (default from config)")
	cmd.Flags().IntVar(&opts.hashWorkers, "hash-workers", 0, "goroutines hashing one module's callables (default from config)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "package cache root (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.failOnDuplicates, "fail-on-duplicates", false, "exit with status 3 when duplicates are found")

	return cmd
}

func runAnalyze(cmd *cobra.Command, app *App, opts *analyzeOptions, path string) error {
	cfg := app.currentConfig()

	format := cfg.Output.Format
	if opts.format != "" {
		format = config.OutputFormat(opts.format)
	}
	if err := format.Validate(); err != nil {
		return err
	}
	parallelism := cfg.Parallelism
	if opts.parallelism > 0 {
		parallelism = opts.parallelism
	}
	hashWorkers := cfg.HashWorkers
	if opts.hashWorkers > 0 {
		hashWorkers = opts.hashWorkers
	}
	cacheDir := cfg.CacheDir
	if opts.cacheDir != "" {
		cacheDir = opts.cacheDir
	}

	graph, err := workspace.LoadGraph(path)
	if err != nil {
		return app.fail(workspaceError(path, err))
	}

	scanner, err := app.newScanner(cacheDir, cfg.Trust.Keyring)
	if err != nil {
		return app.fail(err)
	}
	logger := app.componentLogger("analyze")
	if info, statErr := os.Stat(scanner.Root()); statErr != nil || !info.IsDir() {
		logger.Warn("package cache not found, library references will stay unresolved", "root", scanner.Root())
	}

	analyzer := analysis.New(toolchain.NewPrebuilt(), toolchain.NewExtractor(), resolver.New(scanner), analysis.Options{
		Parallelism: parallelism,
		HashWorkers: hashWorkers,
		Logger:      logger,
	})

	report, err := analyzer.Run(cmd.Context(), graph)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return app.fail(workspaceError(path, err))
	}

	if opts.output != "" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return fmt.Errorf("failed to create report file: %w", createErr)
		}
		if err := renderAndClose(f, report, format); err != nil {
			return err
		}
	} else if err := renderReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if opts.failOnDuplicates && report.HasDuplicates() {
		return &ExitError{
			Code: ExitDuplicates,
			Err:  fmt.Errorf("%d duplicate callables found", len(report.Duplicates)),
		}
	}
	return nil
}

// renderAndClose renders the report into wc and closes it. A render error
// takes precedence over the close error.
func renderAndClose(wc io.WriteCloser, report *analysis.Report, format config.OutputFormat) error {
	if err := renderReport(wc, report, format); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// workspaceError attaches the catalog entry matching a fatal workspace error.
func workspaceError(path string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("analyze workspace").
		WithResource(path).
		Wrap(err)

	var notFound *workspace.WorkspaceNotFoundError
	var cycle *workspace.CyclicGraphError
	switch {
	case errors.As(err, &notFound):
		ctx.WithIssue(issue.WorkspaceNotFoundId).
			WithSuggestion("Pass the workspace file or its directory as the first argument")
	case errors.As(err, &cycle):
		ctx.WithIssue(issue.DependencyCycleId).
			WithSuggestion("Remove one depends_on edge of the cycle")
	case errors.Is(err, workspace.ErrUnknownDependency):
		ctx.WithIssue(issue.UnknownDependencyId)
	default:
		ctx.WithIssue(issue.WorkspaceInvalidId)
	}
	return ctx.BuildError()
}
