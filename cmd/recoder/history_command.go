package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recoder/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var files bool
	var prune time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and file outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.OpenPath(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if prune > 0 {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d runs older than %s\n", removed, prune)
				return nil
			}
			if runID != "" || files {
				entries, err := store.RecentOutcomes(cmd.Context(), runID, limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No file outcomes recorded")
					return nil
				}
				fmt.Fprintln(out, renderEntries(entries))
				return nil
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum rows to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show file outcomes for one run")
	cmd.Flags().BoolVar(&files, "files", false, "Show recent file outcomes instead of runs")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete runs started longer ago than this (e.g. 2160h) and exit")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "running"
		switch {
		case run.Interrupted:
			status = "interrupted"
		case run.Finished():
			status = "finished"
		}
		if run.DryRun {
			status += " (dry run)"
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			humanize.Time(run.StartedAt),
			status,
			strconv.Itoa(run.Encoded),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			humanize.IBytes(uint64(max(run.InputBytes-run.OutputBytes, 0))),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Age", "Status", "Encoded", "Skipped", "Failed", "Saved"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderEntries(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		outcome := entry.Label()
		if entry.Reason != "" {
			outcome += " (" + string(entry.Reason) + ")"
		}
		size := ""
		if entry.OutputBytes > 0 {
			size = humanize.IBytes(uint64(entry.InputBytes)) + " -> " + humanize.IBytes(uint64(entry.OutputBytes))
		}
		rows = append(rows, []string{
			entry.FinishedAt.Local().Format("2006-01-02 15:04"),
			entry.SourcePath,
			outcome,
			entry.MapSpecs,
			size,
			entry.EncodeDuration.Round(time.Second).String(),
		})
	}
	return renderTable(
		[]string{"Finished", "Source", "Outcome", "Maps", "Size", "Encode"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
