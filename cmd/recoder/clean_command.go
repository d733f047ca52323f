package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recoder/internal/lifecycle"
	"recoder/internal/runlock"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove partial encodes left behind by failed or interrupted runs",
		Long: "Partial encodes are hidden .<name>.partial<ext> files next to their final path. While\n" +
			"one exists the source is reported as already_exists; clean removes them so the next run\n" +
			"encodes the file again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			partials, err := lifecycle.FindStalePartials(cfg.Paths.EncodedDir)
			if err != nil {
				return fmt.Errorf("scan %s: %w", cfg.Paths.EncodedDir, err)
			}
			out := cmd.OutOrStdout()
			if len(partials) == 0 {
				fmt.Fprintln(out, "No partial encodes found")
				return nil
			}

			var cutoff time.Time
			if olderThan > 0 {
				cutoff = time.Now().Add(-olderThan)
			}
			if dryRun {
				rows := make([][]string, 0, len(partials))
				for _, partial := range partials {
					if !cutoff.IsZero() && !partial.ModTime.Before(cutoff) {
						continue
					}
					rows = append(rows, partialRow(partial))
				}
				fmt.Fprintln(out, renderTable([]string{"Partial", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			}

			// A running encode writes into a partial; never remove one under it.
			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			removed, err := lifecycle.RemovePartials(partials, cutoff)
			for _, partial := range removed {
				fmt.Fprintf(out, "Removed %s (%s)\n", partial.Path, humanize.IBytes(uint64(partial.Size)))
			}
			if kept := len(partials) - len(removed); kept > 0 && err == nil {
				fmt.Fprintf(out, "Kept %d newer partial(s)\n", kept)
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove partials last modified longer ago than this (e.g. 24h)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List partials without removing them")
	return cmd
}

func partialRow(partial lifecycle.Partial) []string {
	return []string{partial.Path, humanize.IBytes(uint64(partial.Size)), humanize.Time(partial.ModTime)}
}
