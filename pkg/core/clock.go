package core

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the generation sequence. The generator waits
// between checkpoints through a Clock so tests can run the full sequence
// without real sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep waits for the given duration or until the context is
	// cancelled, whichever comes first. It returns ctx.Err() on
	// cancellation and nil otherwise.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock is the production Clock backed by the system timer.
type RealClock struct{}

// NewRealClock returns the system clock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ManualClock is a deterministic Clock for tests. Sleep never blocks;
// it advances the internal time by the requested duration and counts
// the calls so tests can assert pacing behavior.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

// Advance moves the clock forward without recording a sleep.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleeps returns the durations passed to Sleep, in order.
func (c *ManualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

var (
	_ Clock = (*RealClock)(nil)
	_ Clock = (*ManualClock)(nil)
)
