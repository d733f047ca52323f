package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recoder/internal/config"
	"recoder/internal/logging"
	"recoder/internal/services"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	logger, runLog, err := logging.NewFromConfig(&cfg, now)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if want := filepath.Join(cfg.Paths.LogDir, "recoder-20260304T050607Z.log"); runLog != want {
		t.Fatalf("unexpected run log path: got %q want %q", runLog, want)
	}
	logger.Info("run started")

	content, err := os.ReadFile(runLog)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(content), "run started") {
		t.Fatalf("expected message in run log, got %q", content)
	}
}

func TestConsoleLoggerRendersSubjectFromContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithFile(context.Background(), "/in/show/ep1.mkv")
	ctx = services.WithStage(ctx, "encoding")
	logger = logging.NewComponentLogger(logger, "lifecycle")
	logger.InfoContext(ctx, "encode started", logging.String("crf", "20"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "lifecycle · ep1.mkv (encoding): encode started") {
		t.Fatalf("expected subject header, got %q", line)
	}
	if !strings.Contains(line, "crf=20") {
		t.Fatalf("expected attribute, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestJSONLoggerAddsContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithFile(ctx, "/in/movie.mkv")
	logger.InfoContext(ctx, "file finalized", logging.String(logging.FieldEventType, "file_finalized"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if record["run_id"] != "run-1" || record["file"] != "/in/movie.mkv" {
		t.Fatalf("missing context fields: %v", record)
	}
	if record["level"] != "info" || record["msg"] != "file finalized" {
		t.Fatalf("unexpected record shape: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "archive failed", "archive_failed")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, key := range []string{`"event_type":"archive_failed"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(string(content), key) {
			t.Fatalf("expected %s in %q", key, content)
		}
	}
}

func TestCleanupOldLogsKeepsCurrentAndRecent(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "recoder-20260101T000000Z.log")
	current := filepath.Join(dir, "recoder-20260501T000000Z.log")
	recent := filepath.Join(dir, "recoder-20260428T000000Z.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := now.AddDate(0, 0, -90)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	recentTime := now.AddDate(0, 0, -3)
	if err := os.Chtimes(recent, recentTime, recentTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), dir, 30, current, now)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{current, recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
}
