package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"recoder/internal/logging"
	"recoder/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the batch now and again whenever new files arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.newRuntime(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer rt.close()

			out := cmd.OutOrStdout()
			watcher := &watch.Watcher{
				Root:       rt.cfg.Paths.InputDir,
				Extensions: rt.cfg.Encoding.Extensions,
				Exclude:    []string{rt.cfg.Paths.EncodedDir, rt.cfg.Paths.ArchiveDir, rt.cfg.Paths.StateDir},
				Debounce:   time.Duration(rt.cfg.Watch.DebounceSeconds) * time.Second,
				RunOnStart: true,
				Logger:     rt.logger,
				Trigger: func(runCtx context.Context) error {
					summary, err := rt.runBatch(runCtx)
					if err != nil {
						return err
					}
					if summary.Processed() > 0 {
						fmt.Fprintln(out, renderSummary(summary, rt.runLog))
					}
					return nil
				},
			}
			rt.logger.Info("watch mode started", logging.String("lock", rt.lock.Path()))
			return watcher.Run(cmd.Context())
		},
	}
}
