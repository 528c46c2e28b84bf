// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clonescan/clonescan/pkg/platform"
)

func newPlatformsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms [moniker]",
		Short: "Show platform families and backward search orders",
		Long: `Show platform families and backward search orders.

Without an argument, every family is listed oldest first. With a moniker
(short form like net472 or long form like .NETFramework,Version=v4.7.2), its
family and the order in which artifacts are searched are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, f := range platform.Families() {
					fmt.Fprintf(out, "%s\n  %s\n", TitleStyle.Render(string(f.Name)), joinMonikers(f.Members))
				}
				return nil
			}

			m, err := platform.Normalize(args[0])
			if err != nil {
				return err
			}
			family, err := platform.NormalizeFamily(m)
			if err != nil {
				return err
			}
			order, err := platform.BackwardOrder(m)
			if err != nil {
				return err
			}
			app.componentLogger("platforms").Debug("normalized moniker", "input", args[0], "moniker", m)

			fmt.Fprintf(out, "%s %s\n", CmdStyle.Render(string(m)), SubtitleStyle.Render("("+string(family.Name)+")"))
			fmt.Fprintf(out, "  search order: %s\n", joinMonikers(order))
			return nil
		},
	}
}

func joinMonikers(ms []platform.Moniker) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, " ")
}
