package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"recoder/internal/batch"
	"recoder/internal/config"
	"recoder/internal/lifecycle"
	"recoder/internal/services"
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the history database configured for cfg, creating the state
// directory when needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens or creates the history database at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a run row before any file is processed.
func (s *Store) BeginRun(ctx context.Context, runID, inputDir string, dryRun bool, startedAt time.Time) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_dir, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		runID, inputDir, boolToInt(dryRun), formatTime(startedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordOutcome stores one file outcome under runID.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome lifecycle.Outcome) error {
	var mapSpecs string
	var hdr bool
	if outcome.Plan != nil {
		mapSpecs = strings.Join(outcome.Plan.MapSpecs(), " ")
		hdr = outcome.Plan.HDR != nil
	}
	var errMessage string
	if outcome.Err != nil {
		errMessage = outcome.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (
            run_id, source_path, final_path, archive_path, state, reason, error_message,
            map_specs, hdr, input_bytes, output_bytes, encode_ms, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		outcome.Source,
		nullableString(outcome.Paths.Final),
		nullableString(outcome.Paths.Archive),
		string(outcome.State),
		nullableString(string(outcome.Reason)),
		nullableString(errMessage),
		nullableString(mapSpecs),
		boolToInt(hdr),
		outcome.InputBytes,
		outcome.OutputBytes,
		outcome.EncodeDuration.Milliseconds(),
		formatTime(outcome.StartedAt),
		formatTime(outcome.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Record implements batch.Recorder using the run ID carried by ctx.
func (s *Store) Record(ctx context.Context, outcome lifecycle.Outcome) error {
	runID, _ := services.RunIDFromContext(ctx)
	if runID == "" {
		return errors.New("record outcome: context has no run id")
	}
	return s.RecordOutcome(ctx, runID, outcome)
}

// FinishRun stores the run totals from summary.
func (s *Store) FinishRun(ctx context.Context, summary batch.Summary) error {
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET finished_at = ?, total = ?, encoded = ?, planned = ?, skipped = ?, failed = ?,
             input_bytes = ?, output_bytes = ?, interrupted = ?
         WHERE id = ?`,
		formatTime(finished),
		summary.Total,
		summary.Encoded,
		summary.Planned,
		summary.Skipped,
		summary.Failed,
		summary.InputBytes,
		summary.OutputBytes,
		boolToInt(summary.Interrupted),
		summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return services.Wrap(services.ErrNotFound, "history", "finish run", summary.RunID, nil)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecentOutcomes returns the most recent file outcomes, newest first. When
// runID is non-empty only that run's outcomes are returned.
func (s *Store) RecentOutcomes(ctx context.Context, runID string, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM outcomes`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, normalizeLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes runs (and their outcomes) started before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
