package logging

import "testing"

func TestPercentSamplerBuckets(t *testing.T) {
	s := NewPercentSampler(25)
	steps := []struct {
		percent float64
		want    bool
	}{
		{-1, false},
		{0, true},
		{10, false},
		{24.9, false},
		{25, true},
		{30, false},
		{20, false},
		{99, true},
		{150, true},
		{100, false},
	}
	for _, step := range steps {
		if got := s.Sample(step.percent); got != step.want {
			t.Fatalf("Sample(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestPercentSamplerDefaultsAndNil(t *testing.T) {
	s := NewPercentSampler(0)
	if s.step != 10 {
		t.Fatalf("default step = %d, want 10", s.step)
	}
	var nilSampler *PercentSampler
	if !nilSampler.Sample(42) {
		t.Fatal("nil sampler should log everything")
	}
}
