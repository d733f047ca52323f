package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recoder/internal/services"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerifiedRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := CopyFileVerified(src, dst)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Fatalf("destination was modified: %q", got)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.bin")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveRenamesWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".movie.partial.mkv")
	dst := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(src, []byte("encoded"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if exists, _ := Exists(src); exists {
		t.Fatal("expected source to be gone")
	}
	if got, _ := os.ReadFile(dst); string(got) != "encoded" {
		t.Fatalf("unexpected destination content %q", got)
	}
}

func TestMoveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	dst := filepath.Join(dir, "b.mkv")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := OS{}.Move(src, dst)
	if !errors.Is(err, services.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if got, _ := os.ReadFile(src); string(got) != "a" {
		t.Fatal("source must be untouched")
	}
	if got, _ := os.ReadFile(dst); string(got) != "b" {
		t.Fatal("destination must be untouched")
	}
}

func TestMoveMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Move(filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "dst.mkv"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestExistsAndMkdirAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	fs := OS{}
	if exists, err := fs.Exists(dir); err != nil || exists {
		t.Fatalf("expected missing dir, exists=%v err=%v", exists, err)
	}
	if err := fs.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if exists, err := fs.Exists(dir); err != nil || !exists {
		t.Fatalf("expected dir, exists=%v err=%v", exists, err)
	}
}
