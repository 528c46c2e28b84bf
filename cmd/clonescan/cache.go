// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clonescan/clonescan/internal/issue"
	"github.com/clonescan/clonescan/internal/pkgcache"
)

func newCacheCommand(app *App) *cobra.Command {
	var cacheDir string

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local package cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cacheCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "package cache root (default from config)")

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the package cache root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := openCache(app, cacheDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), scanner.Root())
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "versions <library>",
		Short: "List the cached versions of a library and the platforms each offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := openCache(app, cacheDir)
			if err != nil {
				return err
			}
			return listVersions(cmd, app, scanner, args[0])
		},
	})

	return cacheCmd
}

// openCache opens the scanner and requires its root to exist.
func openCache(app *App, cacheDir string) (*pkgcache.Scanner, error) {
	cfg := app.currentConfig()
	if cacheDir == "" {
		cacheDir = cfg.CacheDir
	}
	scanner, err := app.newScanner(cacheDir, cfg.Trust.Keyring)
	if err != nil {
		return nil, app.fail(err)
	}
	if info, statErr := os.Stat(scanner.Root()); statErr != nil || !info.IsDir() {
		if statErr == nil {
			statErr = errors.New("not a directory")
		}
		return nil, app.fail(issue.NewErrorContext().
			WithOperation("open package cache").
			WithResource(scanner.Root()).
			WithIssue(issue.CacheNotFoundId).
			WithSuggestion("Pass --cache-dir or set cache_dir in the configuration").
			Wrap(statErr).
			BuildError())
	}
	return scanner, nil
}

func listVersions(cmd *cobra.Command, app *App, scanner *pkgcache.Scanner, library string) error {
	dirs, err := scanner.ListVersions(library)
	if err != nil {
		var notFound *pkgcache.LibraryNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", WarningStyle.Render("not cached:"), library)
			return nil
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(library))
	if len(dirs) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(no version directories)"))
		return nil
	}

	logger := app.componentLogger("cache")
	for _, dir := range dirs {
		entry, readErr := scanner.ReadManifest(dir)
		if readErr != nil {
			logger.Debug("unreadable version directory", "path", dir.Path, "error", readErr)
			fmt.Fprintf(out, "  %s %s\n", CmdStyle.Render(dir.Name), ErrorStyle.Render(readErr.Error()))
			continue
		}

		monikers := make([]string, 0, len(entry.Artifacts))
		for m := range entry.Artifacts {
			monikers = append(monikers, string(m))
		}
		slices.Sort(monikers)
		if len(monikers) == 0 {
			fmt.Fprintf(out, "  %s %s\n", CmdStyle.Render(dir.Name), SubtitleStyle.Render("(no artifacts)"))
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", CmdStyle.Render(dir.Name), strings.Join(monikers, ", "))
	}
	return nil
}
