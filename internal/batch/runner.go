package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"recoder/internal/lifecycle"
	"recoder/internal/logging"
	"recoder/internal/services"
)

// Processor runs one source file to a terminal outcome.
type Processor interface {
	Process(ctx context.Context, source string) lifecycle.Outcome
}

// Recorder receives every outcome of a run, for history and metrics.
type Recorder interface {
	Record(ctx context.Context, outcome lifecycle.Outcome) error
}

// Runner processes discovered files strictly one after another.
type Runner struct {
	InputRoot  string
	Extensions []string
	Exclude    []string
	Processor  Processor
	Recorders  []Recorder
	Logger     *slog.Logger
	Clock      func() time.Time
	// OnFileStart is called before each file with its 1-based position.
	OnFileStart func(index, total int, source string)
}

func (r *Runner) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

// Run discovers files and processes each of them. Only a discovery failure
// is returned as an error; per-file failures are recorded in the summary.
// The run ID is taken from ctx or generated.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID, _ := services.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.NewComponentLogger(r.Logger, "batch")

	summary := Summary{RunID: runID, StartedAt: r.now()}
	files, err := Discover(r.InputRoot, r.Extensions, r.Exclude...)
	if err != nil {
		summary.FinishedAt = r.now()
		return summary, services.Wrap(services.ErrValidation, "discovery", "walk input", r.InputRoot, err)
	}
	summary.Total = len(files)
	logger.InfoContext(ctx, "batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.String("input_dir", r.InputRoot),
		logging.Int("files", len(files)),
	)

	for i, source := range files {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logging.WarnWithContext(logging.WithContext(ctx, logger), "batch interrupted; remaining files left for the next run", "batch_interrupted",
				logging.Int("remaining", len(files)-i),
				logging.String(logging.FieldImpact, "remaining files not processed"),
			)
			break
		}
		if r.OnFileStart != nil {
			r.OnFileStart(i+1, len(files), source)
		}
		outcome := r.Processor.Process(ctx, source)
		summary.Add(outcome)
		r.record(ctx, logger, outcome)
	}

	summary.FinishedAt = r.now()
	r.logSummary(ctx, logger, summary)
	return summary, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, outcome lifecycle.Outcome) {
	for _, recorder := range r.Recorders {
		if err := recorder.Record(ctx, outcome); err != nil {
			logging.WarnWithContext(logging.WithContext(services.WithFile(ctx, outcome.Source), logger),
				"failed to record outcome", "outcome_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run history or metrics incomplete"),
			)
		}
	}
}

func (r *Runner) logSummary(ctx context.Context, logger *slog.Logger, summary Summary) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "batch_finished"),
		logging.Int("total", summary.Total),
		logging.Int("encoded", summary.Encoded),
		logging.Int("planned", summary.Planned),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.String("input_size", humanize.IBytes(uint64(max(summary.InputBytes, 0)))),
		logging.String("output_size", humanize.IBytes(uint64(max(summary.OutputBytes, 0)))),
		logging.Duration("duration", summary.Duration().Round(time.Second)),
	}
	for _, reason := range summary.FailureReasons() {
		attrs = append(attrs, logging.Int("failed_"+string(reason), summary.Failures[reason]))
	}
	logger.InfoContext(ctx, "batch finished", logging.Args(attrs...)...)
	for _, outcome := range summary.ManualReview() {
		logging.WarnWithContext(logging.WithContext(services.WithFile(ctx, outcome.Source), logger),
			"original not archived after encode", "manual_review_required",
			logging.String("final", outcome.Paths.Final),
			logging.String(logging.FieldErrorHint, "move the original into the archive manually"),
		)
	}
}
