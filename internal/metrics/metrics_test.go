package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recoder/internal/batch"
	"recoder/internal/lifecycle"
)

func TestCollectorWritesTextfile(t *testing.T) {
	c := New()
	ctx := context.Background()
	outcomes := []lifecycle.Outcome{
		{State: lifecycle.StateArchived, InputBytes: 1000, OutputBytes: 250, EncodeDuration: 45 * time.Second},
		{State: lifecycle.StateFailed, Reason: lifecycle.ReasonAlreadyExists},
		{State: lifecycle.StateFailed, Reason: lifecycle.ReasonAlreadyExists},
		{Skipped: true},
	}
	var summary batch.Summary
	for _, outcome := range outcomes {
		if err := c.Record(ctx, outcome); err != nil {
			t.Fatalf("Record: %v", err)
		}
		summary.Add(outcome)
	}
	summary.FinishedAt = time.Unix(1_800_000_000, 0)
	c.ObserveRun(summary)

	path := filepath.Join(t.TempDir(), "textfile", "recoder.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`recoder_files_total{outcome="encoded",reason=""} 1`,
		`recoder_files_total{outcome="failed",reason="already_exists"} 2`,
		`recoder_files_total{outcome="skipped",reason=""} 1`,
		`recoder_input_bytes_total 1000`,
		`recoder_output_bytes_total 250`,
		`recoder_encode_duration_seconds_count 1`,
		`recoder_last_run_timestamp_seconds 1.8e+09`,
		`recoder_last_run_files{outcome="failed"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestWriteTextfileDisabled(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Fatalf("expected no-op for empty path, got %v", err)
	}
}
