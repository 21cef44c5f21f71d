package placeholder

import (
	"strings"
	"testing"
	"time"
)

func TestArtifactSizeScalesWithFindings(t *testing.T) {
	s := NewSeeded(1)

	small := s.ArtifactSize(0)
	if !strings.HasSuffix(small, " MB") {
		t.Errorf("ArtifactSize(0) = %q, want MB suffix", small)
	}

	// A very large scan must display larger than the jitter ceiling
	// of an empty one.
	big := s.ArtifactSize(500)
	if !strings.HasSuffix(big, " MB") {
		t.Errorf("ArtifactSize(500) = %q, want MB suffix", big)
	}
	if big == small {
		t.Errorf("ArtifactSize(500) = ArtifactSize(0) = %q", big)
	}
}

func TestArtifactSizeNegativeClamped(t *testing.T) {
	s := NewSeeded(7)
	got := s.ArtifactSize(-10)
	if !strings.HasSuffix(got, " MB") || strings.HasPrefix(got, "-") {
		t.Errorf("ArtifactSize(-10) = %q, want non-negative size", got)
	}
}

func TestGenerationDurationRange(t *testing.T) {
	s := NewSeeded(42)
	for i := 0; i < 100; i++ {
		d := s.GenerationDuration()
		if d < 2*time.Second || d >= 8*time.Second {
			t.Fatalf("GenerationDuration() = %v, want [2s, 8s)", d)
		}
	}
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := NewSeeded(99)
	b := NewSeeded(99)
	if a.ArtifactSize(27) != b.ArtifactSize(27) {
		t.Error("same seed produced different sizes")
	}
	if a.GenerationDuration() != b.GenerationDuration() {
		t.Error("same seed produced different durations")
	}
}
