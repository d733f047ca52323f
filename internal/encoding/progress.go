package encoding

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Progress is one ffmpeg -progress report. Percent is -1 while the input
// duration is unknown.
type Progress struct {
	Frame     int64
	FPS       float64
	OutTime   time.Duration
	Duration  time.Duration
	TotalSize int64
	Speed     float64
	Percent   float64
	Done      bool
}

// ETA estimates the remaining wall-clock time, or 0 when unknown.
func (p Progress) ETA() time.Duration {
	if p.Speed <= 0 || p.Duration <= 0 || p.OutTime >= p.Duration {
		return 0
	}
	remaining := float64(p.Duration-p.OutTime) / p.Speed
	return time.Duration(remaining)
}

// Message renders a short status line such as "Encoding 42.0% (ETA 12m3s, @ 1.5x)".
func (p Progress) Message() string {
	if p.Done {
		return "Encoding complete"
	}
	if p.Percent < 0 {
		return fmt.Sprintf("Encoding %s", formatClock(p.OutTime))
	}
	base := fmt.Sprintf("Encoding %.1f%%", p.Percent)
	extras := make([]string, 0, 2)
	if eta := formatETA(p.ETA()); eta != "" {
		extras = append(extras, "ETA "+eta)
	}
	if p.Speed > 0 {
		extras = append(extras, fmt.Sprintf("@ %.1fx", p.Speed))
	}
	if len(extras) == 0 {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.Join(extras, ", "))
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// parseProgress reads key=value blocks from ffmpeg -progress output. Each
// block ends with a progress=continue or progress=end line, at which point
// emit is called. duration reports the input duration when known.
func parseProgress(r io.Reader, duration func() time.Duration, emit func(Progress)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current Progress
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "frame":
			if frame, err := strconv.ParseInt(value, 10, 64); err == nil && frame >= 0 {
				current.Frame = frame
			}
		case "fps":
			if fps, err := strconv.ParseFloat(value, 64); err == nil && fps >= 0 {
				current.FPS = fps
			}
		case "total_size":
			if size, err := strconv.ParseInt(value, 10, 64); err == nil && size >= 0 {
				current.TotalSize = size
			}
		case "out_time_us", "out_time_ms":
			// ffmpeg reports microseconds under both keys.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				current.OutTime = time.Duration(us) * time.Microsecond
			}
		case "out_time":
			if d, ok := parseClock(value); ok {
				current.OutTime = d
			}
		case "speed":
			if speed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil && speed >= 0 {
				current.Speed = speed
			}
		case "progress":
			current.Done = value == "end"
			if duration != nil {
				current.Duration = duration()
			}
			current.Percent = percent(current)
			if emit != nil {
				emit(current)
			}
			current.Done = false
		}
	}
	return scanner.Err()
}

func percent(p Progress) float64 {
	if p.Done {
		return 100
	}
	if p.Duration <= 0 {
		return -1
	}
	pct := float64(p.OutTime) / float64(p.Duration) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

var durationPattern = regexp.MustCompile(`Duration:\s*(\d+:\d{2}:\d{2}(?:\.\d+)?)`)

// parseInputDuration extracts the first "Duration: HH:MM:SS.xx" from an
// ffmpeg log line.
func parseInputDuration(line string) (time.Duration, bool) {
	match := durationPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	return parseClock(match[1])
}

// parseClock parses HH:MM:SS[.fraction].
func parseClock(value string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds*float64(time.Second))
	return total, true
}
