package core

import (
	"context"
	"testing"
	"time"
)

func TestManualClockSleepAdvancesWithoutBlocking(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	if err := c.Sleep(context.Background(), 800*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if err := c.Sleep(context.Background(), 200*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}

	if got, want := c.Now(), start.Add(time.Second); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
	if got := c.Sleeps(); len(got) != 2 || got[0] != 800*time.Millisecond {
		t.Errorf("Sleeps() = %v, want [800ms 200ms]", got)
	}
}

func TestManualClockSleepHonorsCancelledContext(t *testing.T) {
	c := NewManualClock(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Second); err != context.Canceled {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if len(c.Sleeps()) != 0 {
		t.Error("cancelled Sleep should not be recorded")
	}
}

func TestRealClockSleepReturnsOnCancel(t *testing.T) {
	c := NewRealClock()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.Sleep(ctx, 5*time.Second)
	if err != context.Canceled {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep did not return promptly on cancel: %v", elapsed)
	}
}

func TestRealClockZeroDuration(t *testing.T) {
	c := NewRealClock()
	if err := c.Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) error = %v", err)
	}
}
