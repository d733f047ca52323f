package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recoder/internal/batch"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Encode every pending file under the input directory",
		Long: "Walks the input directory in lexicographic order and encodes each file that has no\n" +
			"encoded output yet. Originals are archived after a successful encode. With --dry-run\n" +
			"files are probed and planned only: no output is encoded and no original is moved.\n" +
			"The dry run itself is still recorded in the run log and in history.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.newRuntime(cmd.Context(), cmd.ErrOrStderr(), dryRun)
			if err != nil {
				return err
			}
			defer rt.close()

			summary, err := rt.runBatch(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				writePlannedFiles(out, summary)
			}
			fmt.Fprintln(out, renderSummary(summary, rt.runLog))
			if summary.Interrupted {
				return cmd.Context().Err()
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Processed())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Probe and plan without encoding or moving media")
	return cmd
}

func writePlannedFiles(out io.Writer, summary batch.Summary) {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		maps := ""
		if outcome.Plan != nil {
			maps = strings.Join(outcome.Plan.MapSpecs(), " ")
		}
		status := outcome.Label()
		if outcome.Reason != "" {
			status += " (" + string(outcome.Reason) + ")"
		}
		rows = append(rows, []string{outcome.Paths.Relative, status, maps})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Status", "Maps"}, rows, nil))
}

func renderSummary(summary batch.Summary, runLog string) string {
	rows := [][]string{
		{"Run", summary.RunID},
		{"Files", fmt.Sprintf("%d", summary.Total)},
		{"Encoded", fmt.Sprintf("%d", summary.Encoded)},
	}
	if summary.Planned > 0 {
		rows = append(rows, []string{"Planned", fmt.Sprintf("%d", summary.Planned)})
	}
	rows = append(rows,
		[]string{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
		[]string{"Failed", fmt.Sprintf("%d", summary.Failed)},
	)
	for _, reason := range summary.FailureReasons() {
		rows = append(rows, []string{"  " + string(reason), fmt.Sprintf("%d", summary.Failures[reason])})
	}
	if summary.Encoded > 0 {
		rows = append(rows,
			[]string{"Input", humanize.IBytes(uint64(max(summary.InputBytes, 0)))},
			[]string{"Output", humanize.IBytes(uint64(max(summary.OutputBytes, 0)))},
			[]string{"Saved", formatSaved(summary.SpaceSaved())},
		)
	}
	rows = append(rows, []string{"Duration", summary.Duration().Round(time.Second).String()})
	if runLog != "" {
		rows = append(rows, []string{"Log", runLog})
	}
	for _, outcome := range summary.ManualReview() {
		rows = append(rows, []string{"Review", outcome.Source})
	}
	return renderKeyValueTable("Summary", rows)
}

func formatSaved(delta int64) string {
	if delta < 0 {
		return "-" + humanize.IBytes(uint64(-delta))
	}
	return humanize.IBytes(uint64(delta))
}
