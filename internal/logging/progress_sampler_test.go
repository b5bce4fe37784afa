package logging

import "testing"

func TestProgressSamplerDefaults(t *testing.T) {
	if s := NewProgressSampler(0); s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	if s := NewProgressSampler(25); s.bucketSize != 25 {
		t.Fatalf("bucketSize = %v, want 25", s.bucketSize)
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "download") {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		phase   string
		want    bool
	}{
		{0, "download", true},
		{4.5, "download", false},
		{10.2, "download", true},
		{19.9, "download", false},
		{55, "download", true},
		{140, "download", true},
		{100, "download", false},
		{-1, "indexing", true},
		{-1, "indexing", false},
		{-1, "ready", true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.percent, step.phase); got != step.want {
			t.Fatalf("step %d ShouldLog(%v, %q) = %v, want %v", i, step.percent, step.phase, got, step.want)
		}
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "download")
	s.Reset()
	if !s.ShouldLog(50, "download") {
		t.Fatal("expected log after reset")
	}
}
