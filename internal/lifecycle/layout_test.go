package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLayoutPlan(t *testing.T) {
	layout := Layout{InputRoot: "/media/in", EncodedRoot: "/media/out", ArchiveRoot: "/media/orig", DateSubdir: true}
	now := time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC)

	paths, err := layout.Plan("/media/in/Show/S01/ep 1.mkv", now)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := Paths{
		Source:   "/media/in/Show/S01/ep 1.mkv",
		Relative: filepath.Join("Show", "S01", "ep 1.mkv"),
		Temp:     "/media/out/Show/S01/.ep 1.partial.mkv",
		Final:    "/media/out/Show/S01/ep 1.mkv",
		Archive:  "/media/orig/2026-01-02/Show/S01/ep 1.mkv",
	}
	if paths != want {
		t.Fatalf("unexpected paths:\n got %+v\nwant %+v", paths, want)
	}

	again, _ := layout.Plan("/media/in/Show/S01/ep 1.mkv", now)
	if again != paths {
		t.Fatal("Plan must be deterministic")
	}

	layout.DateSubdir = false
	flat, _ := layout.Plan("/media/in/movie.mkv", now)
	if flat.Archive != "/media/orig/movie.mkv" {
		t.Fatalf("unexpected flat archive path %s", flat.Archive)
	}
}

func TestLayoutPlanRejectsOutsideRoot(t *testing.T) {
	layout := Layout{InputRoot: "/media/in", EncodedRoot: "/media/out", ArchiveRoot: "/media/orig"}
	for _, source := range []string{"/media/other/movie.mkv", "/media/in", "/media/input2/x.mkv"} {
		if _, err := layout.Plan(source, time.Now()); err == nil {
			t.Fatalf("expected error for %s", source)
		}
	}
}

func TestIsPartialName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".movie.partial.mkv", true},
		{".movie.partial", true},
		{"movie.partial.mkv", false},
		{".movie.mkv", false},
		{"movie.mkv", false},
	}
	for _, tt := range tests {
		if got := IsPartialName(tt.name); got != tt.want {
			t.Fatalf("IsPartialName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if !IsPartialName(filepath.Base(TempPath("/x/y/Film.mkv"))) {
		t.Fatal("TempPath must produce a partial name")
	}
}

func TestFindAndRemoveStalePartials(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "a", ".old.partial.mkv")
	fresh := filepath.Join(root, "b", ".fresh.partial.mkv")
	keep := filepath.Join(root, "a", "done.mkv")
	for _, path := range []string{old, fresh, keep} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	if err := os.Chtimes(old, now.Add(-48*time.Hour), now.Add(-48*time.Hour)); err != nil {
		t.Fatal(err)
	}

	partials, err := FindStalePartials(root)
	if err != nil {
		t.Fatalf("FindStalePartials: %v", err)
	}
	if len(partials) != 2 || partials[0].Path != old || partials[1].Path != fresh {
		t.Fatalf("unexpected partials %+v", partials)
	}

	removed, err := RemovePartials(partials, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("RemovePartials: %v", err)
	}
	if len(removed) != 1 || removed[0].Path != old {
		t.Fatalf("unexpected removed %+v", removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh partial must remain")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("finished output must remain")
	}

	missing, err := FindStalePartials(filepath.Join(root, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for missing root, got %v err=%v", missing, err)
	}
}
