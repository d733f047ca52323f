// Package watch re-runs the batch when new source files appear under the
// input tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"recoder/internal/logging"
)

const defaultDebounce = 30 * time.Second

// Watcher triggers Trigger once the input tree has been quiet for Debounce
// after a relevant change. Triggers never overlap: events that arrive while
// a run is in progress schedule one more run after it.
type Watcher struct {
	Root       string
	Extensions []string
	Exclude    []string
	Debounce   time.Duration
	// RunOnStart triggers a run before waiting for the first event.
	RunOnStart bool
	Trigger    func(ctx context.Context) error
	Logger     *slog.Logger
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Trigger == nil {
		return errors.New("watch: trigger is required")
	}
	logger := logging.NewComponentLogger(w.Logger, "watch")
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, logger, w.Root); err != nil {
		return err
	}
	logger.InfoContext(ctx, "watching input directory",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("input_dir", w.Root),
		logging.Duration("debounce", debounce),
	)

	timer := time.NewTimer(debounce)
	if !w.RunOnStart {
		timer.Stop()
	} else {
		timer.Reset(0)
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(watcher, logger, event) {
				logger.DebugContext(ctx, "change detected", logging.String("path", event.Name), logging.String("op", event.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes may be missed until the next event"),
			)
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(debounce)
			}
		case <-timer.C:
			if err := w.Trigger(ctx); err != nil {
				logging.ErrorWithContext(logger, "triggered run failed", "watch_run_failed", logging.Error(err))
			}
		}
	}
}

// handle updates watches for event and reports whether it should schedule
// a run.
func (w *Watcher) handle(watcher *fsnotify.Watcher, logger *slog.Logger, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") || w.excluded(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if err := w.addTree(watcher, logger, event.Name); err != nil {
			logger.Debug("failed to watch new directory", logging.String("path", event.Name), logging.Error(err))
		}
		return true
	}
	return w.accepts(event.Name)
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, logger *slog.Logger, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.Root && (strings.HasPrefix(d.Name(), ".") || w.excluded(path)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			logger.Debug("failed to watch subdirectory", logging.String("path", path), logging.Error(err))
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.Exclude {
		if dir == "" {
			continue
		}
		dir = filepath.Clean(dir)
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range w.Extensions {
		if strings.ToLower(candidate) == ext {
			return true
		}
	}
	return false
}
