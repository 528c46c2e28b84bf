// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clonescan/clonescan/internal/config"
)

// newConfigCommand creates the `clonescan config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clonescan configuration",
		Long: `Manage clonescan configuration.

Configuration is stored in:
  - Linux: ~/.config/clonescan/config.cue
  - macOS: ~/Library/Application Support/clonescan/config.cue
  - Windows: %APPDATA%\clonescan\config.cue

Every key can be overridden with a CLONESCAN_* environment variable
(e.g. CLONESCAN_PARALLELISM=4, CLONESCAN_OUTPUT_FORMAT=json).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(app.loadOptions())
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, exists, err := config.ResolvePath(app.loadOptions())
			if err != nil {
				return err
			}
			state := SubtitleStyle.Render("(not created)")
			if exists {
				state = SuccessStyle.Render("(exists)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s %s\n", path, state)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

// loadOptions returns the LoadOptions selected by the persistent flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath}
}

func showConfig(ctx context.Context, app *App, out io.Writer) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions())
	if err != nil {
		return app.fail(err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	unset := SubtitleStyle.Render("(not set)")

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	path, exists, pathErr := config.ResolvePath(app.loadOptions())
	if pathErr == nil && exists {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	orUnset := func(v string) string {
		if v == "" {
			return unset
		}
		return valueStyle.Render(v)
	}

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("cache_dir"), orUnset(cfg.CacheDir))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("parallelism"), valueStyle.Render(fmt.Sprint(cfg.Parallelism)))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("hash_workers"), valueStyle.Render(fmt.Sprint(cfg.HashWorkers)))
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(out, "  format: %s\n", valueStyle.Render(cfg.Output.Format.String()))
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("trust"))
	fmt.Fprintf(out, "  keyring: %s\n", orUnset(cfg.Trust.Keyring))
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	return nil
}
