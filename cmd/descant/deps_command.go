package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"descant/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Description})
			}
			table := renderTable(
				[]string{"Dependency", "Command", "Status", "Purpose"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency(ies) missing", len(missing))
			}
			return nil
		},
	}
}
