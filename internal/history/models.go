package history

import (
	"time"

	"recoder/internal/lifecycle"
)

// Run is one recorded batch run.
type Run struct {
	ID          string
	InputDir    string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time
	Total       int
	Encoded     int
	Planned     int
	Skipped     int
	Failed      int
	InputBytes  int64
	OutputBytes int64
	Interrupted bool
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Entry is one recorded file outcome.
type Entry struct {
	ID             int64
	RunID          string
	SourcePath     string
	FinalPath      string
	ArchivePath    string
	State          lifecycle.State
	Reason         lifecycle.Reason
	ErrorMessage   string
	MapSpecs       string
	HDR            bool
	InputBytes     int64
	OutputBytes    int64
	EncodeDuration time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Label mirrors lifecycle.Outcome.Label for stored entries.
func (e Entry) Label() string {
	switch e.State {
	case lifecycle.StateArchived:
		return "encoded"
	case lifecycle.StateFailed:
		return "failed"
	case lifecycle.StatePlanning:
		return "planned"
	case lifecycle.StateDiscovered:
		return "skipped"
	default:
		return string(e.State)
	}
}
