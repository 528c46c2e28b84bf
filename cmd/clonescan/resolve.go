// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clonescan/clonescan/internal/resolver"
	"github.com/clonescan/clonescan/pkg/platform"
)

func newResolveCommand(app *App) *cobra.Command {
	var (
		target   string
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "resolve <library> <version>",
		Short: "Resolve one library reference against the package cache",
		Long: `Resolve one library reference against the package cache.

The cached version whose major.minor.patch equals the requested version is
chosen; the target platform's family is then searched backward, starting at
the target itself, for the first artifact.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.currentConfig()
			if cacheDir == "" {
				cacheDir = cfg.CacheDir
			}
			scanner, err := app.newScanner(cacheDir, cfg.Trust.Keyring)
			if err != nil {
				return app.fail(err)
			}

			requester := platform.Moniker(target)
			if m, normErr := platform.Normalize(target); normErr == nil {
				requester = m
			}

			ref := resolver.Reference{Library: args[0], Version: args[1]}
			b, err := resolver.New(scanner).Resolve(cmd.Context(), ref, requester, resolver.NewLookupSet())
			if err != nil {
				var unresolved *resolver.UnresolvedError
				if !errors.As(err, &unresolved) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n",
					WarningStyle.Render("unresolved"), ref.Library, ref.Version, unresolved.Reason)
				if unresolved.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", SubtitleStyle.Render(unresolved.Err.Error()))
				}
				return &ExitError{Code: ExitUnresolved, Err: err}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n",
				SuccessStyle.Render("resolved"), b.Library, b.Version, b.Moniker)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", CmdStyle.Render(b.Path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "requesting platform moniker (e.g. net6.0)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "package cache root (default from config)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
