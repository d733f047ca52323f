package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"recoder/internal/batch"
	"recoder/internal/config"
	"recoder/internal/deps"
	"recoder/internal/encoding"
	"recoder/internal/fileutil"
	"recoder/internal/history"
	"recoder/internal/lifecycle"
	"recoder/internal/logging"
	"recoder/internal/media/ffprobe"
	"recoder/internal/metrics"
	"recoder/internal/preflight"
	"recoder/internal/runlock"
	"recoder/internal/services"
)

// runtime holds everything a batch run needs. It is built once per run or
// watch session and released with close.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	runLog    string
	dryRun    bool
	lock      *runlock.Lock
	history   *history.Store
	metrics   *metrics.Collector
	lifecycle *lifecycle.Lifecycle
	runner    *batch.Runner
	display   *progressDisplay
}

func (c *commandContext) newRuntime(ctx context.Context, progressOut io.Writer, dryRun bool) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	logger, runLog, err := logging.NewFromConfig(cfg, now)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, runLog, now)

	if err := checkReady(ctx, cfg); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, runLog: runLog, dryRun: dryRun}
	if !dryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		rt.lock, err = runlock.Acquire(cfg.LockPath())
		if err != nil {
			return nil, err
		}
	}

	rt.history, err = history.OpenPath(cfg.HistoryPath())
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	rt.metrics = metrics.New()
	rt.display = newProgressDisplay(progressOut)

	rt.lifecycle = &lifecycle.Lifecycle{
		Layout: lifecycle.Layout{
			InputRoot:   cfg.Paths.InputDir,
			EncodedRoot: cfg.Paths.EncodedDir,
			ArchiveRoot: cfg.Paths.ArchiveDir,
			DateSubdir:  cfg.Archive.DateSubdir,
		},
		Prober:     ffprobe.Client{Binary: cfg.FFprobeBinary()},
		Encoder:    &encoding.FFmpeg{Binary: cfg.FFmpegBinary(), Logger: logging.NewComponentLogger(logger, "ffmpeg")},
		Filesystem: fileutil.OS{},
		Builder:    encoding.NewBuilder(encoding.OptionsFromConfig(cfg)),
		Logger:     logging.NewComponentLogger(logger, "lifecycle"),
		DryRun:     dryRun,
		OnProgress: rt.display.Progress,
	}
	rt.runner = &batch.Runner{
		InputRoot:   cfg.Paths.InputDir,
		Extensions:  cfg.Encoding.Extensions,
		Exclude:     []string{cfg.Paths.EncodedDir, cfg.Paths.ArchiveDir, cfg.Paths.StateDir},
		Processor:   rt.lifecycle,
		Recorders:   []batch.Recorder{rt.history, rt.metrics},
		Logger:      logger,
		OnFileStart: rt.display.FileStarted,
	}
	return rt, nil
}

// checkReady fails when a required binary is missing or a path check fails.
func checkReady(ctx context.Context, cfg *config.Config) error {
	var problems []string
	for _, status := range deps.Missing(preflight.CheckSystemDeps(ctx, cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", status.Name, status.Detail))
	}
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(problems, "; ")+" (run `recoder check` for details)", nil)
}

// runBatch performs one full batch run and records it.
func (rt *runtime) runBatch(ctx context.Context) (batch.Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	if err := rt.history.BeginRun(ctx, runID, rt.cfg.Paths.InputDir, rt.dryRun, time.Now()); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, rt.logger), "failed to record run start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}

	summary, err := rt.runner.Run(ctx)
	rt.display.Finish()
	if err != nil {
		return summary, err
	}

	if err := rt.history.FinishRun(ctx, summary); err != nil && !errors.Is(err, services.ErrNotFound) {
		logging.WarnWithContext(logging.WithContext(ctx, rt.logger), "failed to record run totals", "history_write_failed", logging.Error(err))
	}
	rt.metrics.ObserveRun(summary)
	if err := rt.metrics.WriteTextfile(rt.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, rt.logger), "failed to write metrics textfile", "metrics_write_failed",
			logging.Error(err),
			logging.String("path", rt.cfg.Metrics.Textfile),
		)
	}
	return summary, nil
}

func (rt *runtime) close() {
	if rt == nil {
		return
	}
	if rt.history != nil {
		_ = rt.history.Close()
	}
	if rt.lock != nil {
		_ = rt.lock.Release()
	}
}
