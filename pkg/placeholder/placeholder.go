// Package placeholder generates the cosmetic display values attached
// to generated reports: artifact size strings and simulated generation
// durations. The dashboard these numbers feed is presentational; they
// carry no business meaning and must never be used for accounting.
// Keeping them here, behind an injectable random source, keeps ad-hoc
// randomness out of the workflow code and lets tests pin the output.
package placeholder

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Source produces the display values for a generated report.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Source seeded from the current time.
func New() *Source {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded creates a deterministic Source for tests.
func NewSeeded(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// ArtifactSize returns a human-readable artifact size string like
// "2.4 MB". The size scales with the finding count so larger scans
// display larger reports, with a small jitter so repeated generations
// don't look copy-pasted.
func (s *Source) ArtifactSize(findingTotal int) string {
	if findingTotal < 0 {
		findingTotal = 0
	}
	s.mu.Lock()
	jitter := s.rng.Float64() * 0.8
	s.mu.Unlock()

	mb := 0.6 + float64(findingTotal)*0.07 + jitter
	if mb < 10 {
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.0f MB", mb)
}

// GenerationDuration returns a simulated wall-clock duration for the
// stats panel, between 2s and 8s. The real elapsed time of the staged
// sequence is pacing, not work, so displaying it would be misleading.
func (s *Source) GenerationDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 2*time.Second + time.Duration(s.rng.Int63n(int64(6*time.Second)))
}
