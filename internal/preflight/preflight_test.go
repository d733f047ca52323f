package preflight

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recoder/internal/config"
	"recoder/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableAncestor(t *testing.T) {
	base := t.TempDir()
	result := CheckWritableAncestor("encoded", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass via ancestor, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created under "+base) {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("free", dir, 1); !result.Passed {
		t.Fatalf("expected pass for 1 byte minimum, got %s", result.Detail)
	}
	if result := CheckFreeSpace("free", dir, math.MaxUint64); result.Passed {
		t.Fatalf("expected failure for impossible minimum, got %s", result.Detail)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	if err := os.RemoveAll(cfg.Paths.InputDir); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Input directory" {
		t.Fatalf("expected input directory failure, got %+v", failed)
	}

	if RunAll(context.Background(), (*config.Config)(nil)) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(context.Background(), cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected stubbed %s to be available: %s", status.Name, status.Detail)
		}
	}
}
