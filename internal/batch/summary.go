package batch

import (
	"sort"
	"time"

	"recoder/internal/lifecycle"
)

// Summary aggregates the outcomes of one batch run.
type Summary struct {
	RunID       string
	Total       int
	Encoded     int
	Planned     int
	Skipped     int
	Failed      int
	InputBytes  int64
	OutputBytes int64
	Failures    map[lifecycle.Reason]int
	Outcomes    []lifecycle.Outcome
	Interrupted bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Add folds one outcome into the summary.
func (s *Summary) Add(outcome lifecycle.Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch {
	case outcome.Skipped:
		s.Skipped++
	case outcome.DryRun:
		s.Planned++
	case outcome.Succeeded():
		s.Encoded++
		s.InputBytes += outcome.InputBytes
		s.OutputBytes += outcome.OutputBytes
	case outcome.Failed():
		s.Failed++
		if s.Failures == nil {
			s.Failures = make(map[lifecycle.Reason]int)
		}
		s.Failures[outcome.Reason]++
	}
}

// Processed is the number of files that reached a terminal outcome.
func (s Summary) Processed() int {
	return len(s.Outcomes)
}

// SpaceSaved returns input minus output bytes for encoded files. Negative
// means the outputs grew.
func (s Summary) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// FailureReasons returns the failure reasons seen, sorted by name.
func (s Summary) FailureReasons() []lifecycle.Reason {
	reasons := make([]lifecycle.Reason, 0, len(s.Failures))
	for reason := range s.Failures {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// ManualReview lists outcomes whose encoded output exists but whose original
// was not archived.
func (s Summary) ManualReview() []lifecycle.Outcome {
	var out []lifecycle.Outcome
	for _, outcome := range s.Outcomes {
		if outcome.NeedsManualReview() {
			out = append(out, outcome)
		}
	}
	return out
}
