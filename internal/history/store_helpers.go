package history

import (
	"database/sql"
	"errors"
	"time"

	"recoder/internal/lifecycle"
)

const (
	runColumns   = "id, input_dir, dry_run, started_at, finished_at, total, encoded, planned, skipped, failed, input_bytes, output_bytes, interrupted"
	entryColumns = "id, run_id, source_path, final_path, archive_path, state, reason, error_message, map_specs, hdr, input_bytes, output_bytes, encode_ms, started_at, finished_at"

	defaultLimit = 20

	// Fixed-width so stored timestamps sort lexicographically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		dryRun      int64
		startedRaw  string
		finishedRaw sql.NullString
		interrupted int64
	)
	if err := row.Scan(
		&run.ID,
		&run.InputDir,
		&dryRun,
		&startedRaw,
		&finishedRaw,
		&run.Total,
		&run.Encoded,
		&run.Planned,
		&run.Skipped,
		&run.Failed,
		&run.InputBytes,
		&run.OutputBytes,
		&interrupted,
	); err != nil {
		return Run{}, err
	}
	run.DryRun = dryRun != 0
	run.Interrupted = interrupted != 0
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry       Entry
		finalPath   sql.NullString
		archivePath sql.NullString
		state       string
		reason      sql.NullString
		errMessage  sql.NullString
		mapSpecs    sql.NullString
		hdr         int64
		encodeMS    int64
		startedRaw  string
		finishedRaw string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.SourcePath,
		&finalPath,
		&archivePath,
		&state,
		&reason,
		&errMessage,
		&mapSpecs,
		&hdr,
		&entry.InputBytes,
		&entry.OutputBytes,
		&encodeMS,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.FinalPath = finalPath.String
	entry.ArchivePath = archivePath.String
	entry.State = lifecycle.State(state)
	entry.Reason = lifecycle.Reason(reason.String)
	entry.ErrorMessage = errMessage.String
	entry.MapSpecs = mapSpecs.String
	entry.HDR = hdr != 0
	entry.EncodeDuration = time.Duration(encodeMS) * time.Millisecond
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		entry.FinishedAt = finished
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
