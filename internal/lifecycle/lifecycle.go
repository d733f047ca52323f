package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"recoder/internal/encoding"
	"recoder/internal/logging"
	"recoder/internal/media/ffprobe"
	"recoder/internal/media/hdr"
	"recoder/internal/media/streams"
	"recoder/internal/services"
)

// Prober inspects media files.
type Prober interface {
	Streams(ctx context.Context, path string) ([]ffprobe.Stream, error)
	FirstFrame(ctx context.Context, path string) (ffprobe.Frame, error)
}

// Encoder runs one encode into output.
type Encoder interface {
	Encode(ctx context.Context, input, output string, plan encoding.Plan, progress func(encoding.Progress)) error
}

// Filesystem is the set of file operations the lifecycle performs.
type Filesystem interface {
	Exists(path string) (bool, error)
	Move(src, dst string) error
	MkdirAll(path string) error
	Size(path string) (int64, error)
}

// Clock returns the current time.
type Clock func() time.Time

// Lifecycle drives one source file from discovery to archive. It never
// deletes or overwrites a file: a destination that exists is a failure, and
// a failed encode leaves the source where it was.
type Lifecycle struct {
	Layout     Layout
	Prober     Prober
	Encoder    Encoder
	Filesystem Filesystem
	Builder    *encoding.Builder
	Clock      Clock
	Logger     *slog.Logger
	DryRun     bool
	// OnProgress receives encode progress for display. It must not block.
	OnProgress func(source string, progress encoding.Progress)
}

func (l *Lifecycle) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Lifecycle) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logging.NewNop()
}

// Process runs the lifecycle for source and returns its outcome. Every
// failure is captured in the outcome; Process itself never panics on I/O
// errors and never returns a partially applied transition.
func (l *Lifecycle) Process(ctx context.Context, source string) Outcome {
	ctx = services.WithFile(ctx, source)
	logger := l.logger()
	start := l.now()
	outcome := Outcome{Source: source, State: StateDiscovered, StartedAt: start}
	finish := func() Outcome {
		outcome.FinishedAt = l.now()
		return outcome
	}
	fail := func(err error) Outcome {
		outcome.Reason = ReasonFor(err)
		outcome.Err = err
		outcome.transition(StateFailed, l.now())
		return finish()
	}

	exists, err := l.Filesystem.Exists(source)
	if err != nil {
		return fail(services.Wrap(services.ErrProbe, "discovered", "stat source", "unable to stat source", err))
	}
	if !exists {
		outcome.Skipped = true
		logger.InfoContext(ctx, "source no longer present; skipping",
			logging.String(logging.FieldEventType, "file_skipped"),
		)
		return finish()
	}
	if size, err := l.Filesystem.Size(source); err == nil {
		outcome.InputBytes = size
	}

	ctx = services.WithStage(ctx, string(StatePlanning))
	outcome.transition(StatePlanning, l.now())

	paths, err := l.Layout.Plan(source, l.now())
	if err != nil {
		return fail(err)
	}
	outcome.Paths = paths

	if conflict, err := l.destinationConflict(paths); err != nil || conflict != "" {
		if err == nil {
			err = services.Wrap(services.ErrDestinationExists, string(StatePlanning), "check destination",
				fmt.Sprintf("%s already exists", conflict), nil)
		}
		logging.WarnWithContext(logging.WithContext(ctx, logger), "encoded output already exists; source left in place", "file_already_exists",
			logging.String("existing", conflict),
			logging.String(logging.FieldErrorHint, "remove or rename the existing output, or run recoder clean for stale partials"),
			logging.String(logging.FieldImpact, "file not encoded"),
			logging.Error(err),
		)
		return fail(err)
	}

	plan, err := l.plan(ctx, source)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, logger), "probe failed; source left in place", "file_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file with ffprobe"),
		)
		return fail(err)
	}
	outcome.Plan = &plan

	if l.DryRun {
		outcome.DryRun = true
		return finish()
	}

	if err := l.Filesystem.MkdirAll(filepath.Dir(paths.Final)); err != nil {
		return fail(services.Wrap(services.ErrEncode, string(StatePlanning), "create output directory", filepath.Dir(paths.Final), err))
	}

	ctx = services.WithStage(ctx, string(StateEncoding))
	outcome.transition(StateEncoding, l.now())
	logger.InfoContext(ctx, "encode started",
		logging.String(logging.FieldEventType, "encode_started"),
		logging.String("temp", paths.Temp),
		logging.String("maps", strings.Join(plan.MapSpecs(), " ")),
	)
	encodeStart := l.now()
	err = l.Encoder.Encode(ctx, source, paths.Temp, plan, l.progressReporter(ctx, source))
	outcome.EncodeDuration = l.now().Sub(encodeStart)
	if err != nil {
		if !errors.Is(err, services.ErrEncode) {
			err = services.Wrap(services.ErrEncode, string(StateEncoding), "run encoder", "encoder failed", err)
		}
		attrs := []logging.Attr{
			logging.Error(err),
			logging.String("temp", paths.Temp),
			logging.String(logging.FieldErrorHint, "inspect the partial output and ffmpeg stderr; recoder clean removes stale partials"),
		}
		var encodeErr *encoding.EncodeError
		if errors.As(err, &encodeErr) {
			attrs = append(attrs, logging.String("command", encodeErr.CommandLine()))
		}
		logging.ErrorWithContext(logging.WithContext(ctx, logger), "encode failed; source left in place", "encode_failed", attrs...)
		return fail(err)
	}
	outcome.transition(StateEncodedTemp, l.now())
	if size, err := l.Filesystem.Size(paths.Temp); err == nil {
		outcome.OutputBytes = size
	}

	ctx = services.WithStage(ctx, string(StateFinalized))
	if err := l.Filesystem.Move(paths.Temp, paths.Final); err != nil {
		err = services.Wrap(services.ErrFinalize, string(StateEncodedTemp), "rename temp", paths.Final, err)
		logging.ErrorWithContext(logging.WithContext(ctx, logger), "finalize failed; encoded temp left in place", "finalize_failed",
			logging.Error(err),
			logging.String("temp", paths.Temp),
			logging.String(logging.FieldErrorHint, "check encoded_dir permissions"),
		)
		return fail(err)
	}
	outcome.transition(StateFinalized, l.now())
	logger.InfoContext(ctx, "encoded file finalized",
		logging.String(logging.FieldEventType, "file_finalized"),
		logging.String("final", paths.Final),
	)

	ctx = services.WithStage(ctx, string(StateArchived))
	if err := l.archive(paths); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, logger), "archive failed; encoded output exists but original was not moved", "archive_failed",
			logging.Error(err),
			logging.String("final", paths.Final),
			logging.String("archive", paths.Archive),
			logging.String(logging.FieldErrorHint, "move the original manually; later runs report this file as already encoded"),
			logging.String(logging.FieldImpact, "manual reconciliation required"),
		)
		return fail(err)
	}
	outcome.transition(StateArchived, l.now())
	logger.InfoContext(ctx, "original archived",
		logging.String(logging.FieldEventType, "file_archived"),
		logging.String("archive", paths.Archive),
		logging.Duration("encode_duration", outcome.EncodeDuration.Round(time.Second)),
	)
	return finish()
}

func (l *Lifecycle) destinationConflict(paths Paths) (string, error) {
	for _, candidate := range []string{paths.Final, paths.Temp} {
		exists, err := l.Filesystem.Exists(candidate)
		if err != nil {
			return candidate, services.Wrap(services.ErrDestinationExists, string(StatePlanning), "check destination", candidate, err)
		}
		if exists {
			return candidate, nil
		}
	}
	return "", nil
}

// plan probes source and builds its encode plan.
func (l *Lifecycle) plan(ctx context.Context, source string) (encoding.Plan, error) {
	logger := l.logger()
	raw, err := l.Prober.Streams(ctx, source)
	if err != nil {
		return encoding.Plan{}, services.Wrap(services.ErrProbe, string(StatePlanning), "probe streams", "ffprobe failed", err)
	}
	catalog := streams.Partition(raw)

	var meta *hdr.Metadata
	if l.Builder.NeedsHDRMetadata(catalog) {
		frame, err := l.Prober.FirstFrame(ctx, source)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "hdr frame probe failed; encoding without hdr metadata", "hdr_probe_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the first video frame with ffprobe -show_frames"),
				logging.String(logging.FieldImpact, "output loses HDR10 signalling"),
			)
		} else {
			extracted := hdr.Extract(frame)
			meta = &extracted
		}
	}

	plan := l.Builder.Build(catalog, meta)
	l.logPlan(ctx, catalog, plan)
	return plan, nil
}

func (l *Lifecycle) logPlan(ctx context.Context, catalog streams.Catalog, plan encoding.Plan) {
	logger := l.logger()
	if logger.Enabled(ctx, slog.LevelDebug) {
		for _, record := range catalog.Records() {
			logger.DebugContext(ctx, "stream", logging.String("stream", record.Summary()))
		}
	}
	attrs := logging.DecisionAttrs("track_selection", strings.Join(plan.MapSpecs(), " "), "language_policy")
	attrs = append(attrs,
		logging.Int("audio_candidates", len(catalog.Audio)),
		logging.Int("audio_selected", plan.Count(streams.KindAudio)),
		logging.Int("subtitle_candidates", len(catalog.Subtitle)),
		logging.Int("subtitle_selected", plan.Count(streams.KindSubtitle)),
	)
	logger.InfoContext(ctx, "encode plan built", logging.Args(attrs...)...)

	if plan.AudioFallback {
		l.warnFallback(ctx, streams.KindAudio)
	}
	if plan.SubtitleFallback {
		l.warnFallback(ctx, streams.KindSubtitle)
	}
	if plan.HDR != nil {
		logger.InfoContext(ctx, "hdr metadata passthrough enabled",
			logging.Args(append(logging.DecisionAttrs("hdr_params", "passthrough", "bt2020nc"),
				logging.String("x265_params", plan.HDR.X265Params))...)...)
	} else if plan.HDRSkipped != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "hdr source encoded without hdr metadata", "hdr_metadata_incomplete",
			logging.Error(plan.HDRSkipped),
			logging.String(logging.FieldErrorHint, "source lacks colour primaries, transfer or matrix"),
			logging.String(logging.FieldImpact, "output loses HDR10 signalling"),
		)
	}
}

func (l *Lifecycle) warnFallback(ctx context.Context, kind streams.Kind) {
	err := services.Wrap(services.ErrNoMatchingTracks, string(StatePlanning), "select "+string(kind), "no stream matched the language policy", nil)
	logging.WarnWithContext(logging.WithContext(ctx, l.logger()), "no "+string(kind)+" stream matched configured languages; keeping all candidates",
		"track_selection_fallback",
		logging.String("kind", string(kind)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check ["+string(kind)+"] languages in the config"),
		logging.String(logging.FieldImpact, "all "+string(kind)+" streams kept"),
	)
}

func (l *Lifecycle) archive(paths Paths) error {
	if err := l.Filesystem.MkdirAll(filepath.Dir(paths.Archive)); err != nil {
		return services.Wrap(services.ErrArchival, string(StateFinalized), "create archive directory", filepath.Dir(paths.Archive), err)
	}
	if err := l.Filesystem.Move(paths.Source, paths.Archive); err != nil {
		return services.Wrap(services.ErrArchival, string(StateFinalized), "move original", paths.Archive, err)
	}
	return nil
}

// progressReporter forwards progress to OnProgress and logs it in 10% steps,
// with a debug heartbeat at most once a minute in between.
func (l *Lifecycle) progressReporter(ctx context.Context, source string) func(encoding.Progress) {
	logger := l.logger()
	sampler := logging.NewPercentSampler(10)
	heartbeat := rate.Sometimes{Interval: time.Minute}
	return func(p encoding.Progress) {
		if l.OnProgress != nil {
			l.OnProgress(source, p)
		}
		if sampler.Sample(p.Percent) {
			logger.InfoContext(ctx, p.Message(),
				logging.String(logging.FieldEventType, "encode_progress"),
				logging.Float64("percent", p.Percent),
			)
			return
		}
		heartbeat.Do(func() {
			logger.DebugContext(ctx, p.Message(), logging.String(logging.FieldEventType, "encode_heartbeat"))
		})
	}
}
