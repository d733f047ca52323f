package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"recoder/internal/testsupport"
)

func TestRunEncodesAndArchives(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.cfg.Paths.InputDir, "show", "ep1.mkv")
	testsupport.WriteFile(t, source, 4096)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Summary")
	requireContains(t, out, "Encoded")

	requireExists(t, filepath.Join(env.cfg.Paths.EncodedDir, "show", "ep1.mkv"), true)
	requireExists(t, filepath.Join(env.cfg.Paths.EncodedDir, "show", ".ep1.partial.mkv"), false)
	requireExists(t, source, false)
	archived := filepath.Join(env.cfg.Paths.ArchiveDir, time.Now().Format("2006-01-02"), "show", "ep1.mkv")
	requireExists(t, archived, true)

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "finished")

	out, _, err = runCLI(t, []string{"history", "--files"}, env.configPath)
	if err != nil {
		t.Fatalf("history --files: %v", err)
	}
	requireContains(t, out, "0:V 0:a:1 0:s:0")
	requireContains(t, out, "encoded")

	out, _, err = runCLI(t, []string{"history", "--prune", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("history --prune: %v", err)
	}
	requireContains(t, out, "Pruned 0 runs")
}

func TestRunLeavesExistingOutputAlone(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.cfg.Paths.InputDir, "movie.mkv")
	testsupport.WriteFile(t, source, 10)
	final := filepath.Join(env.cfg.Paths.EncodedDir, "movie.mkv")
	testsupport.WriteFile(t, final, 3)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to report the failed file")
	}
	requireContains(t, out, "already_exists")
	requireExists(t, source, true)
	if info, statErr := os.Stat(final); statErr != nil || info.Size() != 3 {
		t.Fatalf("existing output must be untouched: %v", statErr)
	}
}

func TestRunEncodeFailureKeepsSource(t *testing.T) {
	env := setupCLITestEnv(t)
	env.setFFmpeg(t, ffmpegFail)
	source := filepath.Join(env.cfg.Paths.InputDir, "movie.mkv")
	testsupport.WriteFile(t, source, 10)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure")
	}
	requireContains(t, out, "encode")
	requireExists(t, source, true)
	requireExists(t, filepath.Join(env.cfg.Paths.EncodedDir, "movie.mkv"), false)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.cfg.Paths.InputDir, "movie.mkv")
	testsupport.WriteFile(t, source, 10)

	out, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "planned")
	requireContains(t, out, "0:V 0:a:1 0:s:0")
	requireExists(t, source, true)
	requireExists(t, filepath.Join(env.cfg.Paths.EncodedDir, "movie.mkv"), false)
	requireExists(t, env.cfg.Paths.EncodedDir, false)
	requireExists(t, env.cfg.Paths.ArchiveDir, false)

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "(dry run)")
}

func TestPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.cfg.Paths.InputDir, "movie.mkv")
	testsupport.WriteFile(t, source, 10)

	out, _, err := runCLI(t, []string{"plan", source}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Maps:     0:V 0:a:1 0:s:0")
	requireContains(t, out, "-map 0:a:1")
	requireContains(t, out, "-crf 20")
	requireContains(t, out, ".movie.partial.mkv")
	requireContains(t, out, "fra")
}

func TestCleanRemovesPartials(t *testing.T) {
	env := setupCLITestEnv(t)
	partial := filepath.Join(env.cfg.Paths.EncodedDir, "show", ".ep1.partial.mkv")
	testsupport.WriteFile(t, partial, 10)

	out, _, err := runCLI(t, []string{"clean", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	requireContains(t, out, partial)
	requireExists(t, partial, true)

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed "+partial)
	requireExists(t, partial, false)
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Input directory")

	if err := os.RemoveAll(env.cfg.Paths.InputDir); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"check"}, env.configPath); err == nil {
		t.Fatal("expected check to fail without an input directory")
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.InputDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireExists(t, target, true)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}
