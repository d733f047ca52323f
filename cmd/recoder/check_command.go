package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"recoder/internal/deps"
	"recoder/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, dependencyRow(status))
			}
			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			fmt.Fprintln(out, renderTable([]string{"Name", "Command", "Available", "Detail"}, rows, nil))

			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprintln(out, renderSectionHeader("Paths", colorize))
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if ctx.configPath != "" {
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			}

			missing := deps.Missing(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return errors.New("recoder is not ready: fix the items marked above")
			}
			return nil
		},
	}
}

func dependencyRow(status deps.Status) []string {
	detail := status.Detail
	if status.Available {
		detail = status.Version
		if detail == "" {
			detail = status.Path
		}
	}
	return []string{status.Name, status.Command, yesNo(status.Available), detail}
}
