package encoding

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"recoder/internal/logging"
)

const stderrTailLines = 20

// FFmpeg runs encodes with the ffmpeg binary.
type FFmpeg struct {
	Binary string
	Logger *slog.Logger
}

func (f *FFmpeg) binary() string {
	if f == nil || strings.TrimSpace(f.Binary) == "" {
		return "ffmpeg"
	}
	return strings.TrimSpace(f.Binary)
}

// Invocation returns the full argument vector used for an encode.
func (f *FFmpeg) Invocation(input, output string, plan Plan) []string {
	args := []string{f.binary(), "-hide_banner", "-nostdin", "-nostats", "-progress", "pipe:1"}
	return append(args, plan.Args(input, output)...)
}

// Encode runs ffmpeg and blocks until it exits. Progress reports are
// delivered on a separate goroutine and are informational only. Any failure
// is returned as *EncodeError.
func (f *FFmpeg) Encode(ctx context.Context, input, output string, plan Plan, progress func(Progress)) error {
	invocation := f.Invocation(input, output, plan)
	logger := f.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.DebugContext(ctx, "ffmpeg invocation", logging.String("command", strings.Join(invocation, " ")))

	cmd := exec.CommandContext(ctx, invocation[0], invocation[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &EncodeError{Message: "attach stdout", Invocation: invocation, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &EncodeError{Message: "attach stderr", Invocation: invocation, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &EncodeError{Message: "start ffmpeg: " + err.Error(), Invocation: invocation, Err: err}
	}

	var (
		duration atomic.Int64
		tail     = newLineTail(stderrTailLines)
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		captureStderr(stderr, tail, func(d time.Duration) { duration.CompareAndSwap(0, int64(d)) })
	}()
	go func() {
		defer wg.Done()
		err := parseProgress(stdout, func() time.Duration { return time.Duration(duration.Load()) }, progress)
		if err != nil {
			logger.DebugContext(ctx, "ffmpeg progress reader stopped", logging.Error(err))
		}
		_, _ = io.Copy(io.Discard, stdout)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		message := tail.String()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &EncodeError{Message: "cancelled", Invocation: invocation, Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && message == "" {
			message = exitErr.String()
		}
		return &EncodeError{Message: message, Invocation: invocation, Err: err}
	}
	return nil
}

func captureStderr(r io.Reader, tail *lineTail, onDuration func(time.Duration)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if d, ok := parseInputDuration(line); ok && d > 0 {
			onDuration(d)
		}
		tail.Add(line)
	}
	_, _ = io.Copy(io.Discard, r)
}

// lineTail keeps the last n lines written to it.
type lineTail struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
