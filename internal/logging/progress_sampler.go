package logging

// PercentSampler passes one progress value per bucket so a long encode logs
// a handful of lines instead of one per ffmpeg report.
type PercentSampler struct {
	step int
	last int
}

// NewPercentSampler emits whenever percent enters a new multiple of step
// (default 10). The first known value always emits.
func NewPercentSampler(step int) *PercentSampler {
	if step <= 0 {
		step = 10
	}
	return &PercentSampler{step: step, last: -1}
}

// Sample reports whether percent should be logged. Negative values mean the
// duration is unknown and never emit; values above 100 are clamped.
func (s *PercentSampler) Sample(percent float64) bool {
	if s == nil {
		return true
	}
	if percent < 0 {
		return false
	}
	bucket := int(min(percent, 100)) / s.step
	if bucket <= s.last {
		return false
	}
	s.last = bucket
	return true
}
