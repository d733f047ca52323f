package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"recoder/internal/encoding"
)

// progressDisplay draws one progress bar per encode on a terminal. On any
// other writer it does nothing; the log carries sampled progress instead.
type progressDisplay struct {
	out     io.Writer
	enabled bool

	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	label string
}

func newProgressDisplay(out io.Writer) *progressDisplay {
	return &progressDisplay{out: out, enabled: out != nil && shouldColorize(out)}
}

func (d *progressDisplay) FileStarted(index, total int, source string) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finishLocked()
	d.label = fmt.Sprintf("[%d/%d] %s", index, total, filepath.Base(source))
}

func (d *progressDisplay) Progress(_ string, p encoding.Progress) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar == nil {
		d.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(d.out),
			progressbar.OptionSetDescription(d.label),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(250*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(d.out) }),
		)
	}
	if p.Percent >= 0 {
		_ = d.bar.Set(int(p.Percent))
	}
	d.bar.Describe(d.label + "  " + p.Message())
	if p.Done {
		d.finishLocked()
	}
}

func (d *progressDisplay) Finish() {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finishLocked()
}

func (d *progressDisplay) finishLocked() {
	if d.bar == nil {
		return
	}
	_ = d.bar.Finish()
	d.bar = nil
}
