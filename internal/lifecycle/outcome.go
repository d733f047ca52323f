package lifecycle

import (
	"time"

	"recoder/internal/encoding"
	"recoder/internal/services"
)

// Transition records one state change.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// Outcome is the result of processing one source file.
type Outcome struct {
	Source         string
	Paths          Paths
	State          State
	Reason         Reason
	Err            error
	Skipped        bool
	DryRun         bool
	Plan           *encoding.Plan
	Transitions    []Transition
	InputBytes     int64
	OutputBytes    int64
	EncodeDuration time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Succeeded reports whether the file was encoded and its original archived.
func (o Outcome) Succeeded() bool {
	return o.State == StateArchived
}

// Failed reports whether processing ended in the failed state.
func (o Outcome) Failed() bool {
	return o.State == StateFailed
}

// NeedsManualReview reports whether the encoded file exists but the original
// could not be archived.
func (o Outcome) NeedsManualReview() bool {
	return o.Failed() && (o.Reason == ReasonArchive || services.NeedsManualReview(o.Err))
}

// Label is a short outcome name for summaries and metrics.
func (o Outcome) Label() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.DryRun:
		return "planned"
	case o.Succeeded():
		return "encoded"
	case o.Failed():
		return "failed"
	default:
		return string(o.State)
	}
}

// transition records a move to state to. Terminal states are final; later
// transitions are dropped.
func (o *Outcome) transition(to State, at time.Time) {
	if o.State.Terminal() {
		return
	}
	o.Transitions = append(o.Transitions, Transition{From: o.State, To: to, At: at})
	o.State = to
}
