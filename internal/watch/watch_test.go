package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return cancel, done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcherTriggersOnNewMediaFile(t *testing.T) {
	root := t.TempDir()
	var runs atomic.Int32
	w := &Watcher{
		Root:       root,
		Extensions: []string{".mkv"},
		Debounce:   50 * time.Millisecond,
		Trigger: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	startWatcher(t, w)
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("non-media file must not trigger, got %d runs", runs.Load())
	}

	if err := os.WriteFile(filepath.Join(root, "movie.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "triggered run", func() bool { return runs.Load() == 1 })
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	var runs atomic.Int32
	w := &Watcher{
		Root:       root,
		Extensions: []string{".mkv"},
		Debounce:   50 * time.Millisecond,
		Trigger: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	startWatcher(t, w)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(root, "show")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "directory run", func() bool { return runs.Load() >= 1 })
	before := runs.Load()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "ep1.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "nested file run", func() bool { return runs.Load() > before })
}

func TestWatcherIgnoresExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	encoded := filepath.Join(root, "encoded")
	if err := os.Mkdir(encoded, 0o755); err != nil {
		t.Fatal(err)
	}
	var runs atomic.Int32
	w := &Watcher{
		Root:       root,
		Extensions: []string{".mkv"},
		Exclude:    []string{encoded},
		Debounce:   50 * time.Millisecond,
		Trigger: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	startWatcher(t, w)
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(encoded, "out.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".movie.partial.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("expected no runs, got %d", runs.Load())
	}
}

func TestWatcherRunOnStart(t *testing.T) {
	var runs atomic.Int32
	w := &Watcher{
		Root:       t.TempDir(),
		Debounce:   time.Hour,
		RunOnStart: true,
		Trigger: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	startWatcher(t, w)
	waitFor(t, "initial run", func() bool { return runs.Load() == 1 })
}

func TestWatcherMissingRoot(t *testing.T) {
	w := &Watcher{Root: filepath.Join(t.TempDir(), "missing"), Trigger: func(context.Context) error { return nil }}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing root")
	}
}
