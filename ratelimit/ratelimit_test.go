package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func newTestLimiter(max int, window, margin time.Duration) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := New(max, window, margin)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestAdmitNeverExceedsWindowCap(t *testing.T) {
	const max = 5
	window := 60 * time.Second
	l, clock := newTestLimiter(max, window, 100*time.Millisecond)

	var admitted []time.Time
	for i := 0; i < 20; i++ {
		if err := l.Admit(context.Background(), "test"); err != nil {
			t.Fatalf("Admit returned error: %v", err)
		}
		admitted = append(admitted, clock.current)
		clock.current = clock.current.Add(1 * time.Second)
	}

	// No rolling window of the configured duration may contain more than max
	// admissions.
	for i := range admitted {
		count := 0
		for j := i; j < len(admitted); j++ {
			if admitted[j].Sub(admitted[i]) < window {
				count++
			}
		}
		if count > max {
			t.Errorf("window starting at %v contains %d admissions, cap is %d",
				admitted[i], count, max)
		}
	}
}

func TestAdmitWaitsUntilOldestExitsWindowPlusMargin(t *testing.T) {
	margin := 100 * time.Millisecond
	window := 60 * time.Second
	l, clock := newTestLimiter(1, window, margin)

	if err := l.Admit(context.Background(), "first"); err != nil {
		t.Fatalf("first Admit: %v", err)
	}
	first := clock.current

	if got := l.Remaining(); got != 0 {
		t.Fatalf("Remaining after filling window = %d, want 0", got)
	}

	if err := l.Admit(context.Background(), "second"); err != nil {
		t.Fatalf("second Admit: %v", err)
	}
	second := clock.current

	exit := first.Add(window).Add(margin)
	if !second.After(exit) && !second.Equal(exit) {
		t.Errorf("second admission at %v, want at or after window exit + margin %v", second, exit)
	}
	if len(clock.slept) == 0 {
		t.Error("expected the second caller to be suspended at least once")
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute, 0)
	for i := 0; i < 3; i++ {
		if err := l.Admit(context.Background(), "fill"); err != nil {
			t.Fatalf("Admit: %v", err)
		}
	}
	if got := l.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestRemainingRecoversAfterWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute, 0)
	for i := 0; i < 2; i++ {
		if err := l.Admit(context.Background(), "fill"); err != nil {
			t.Fatalf("Admit: %v", err)
		}
	}
	clock.current = clock.current.Add(61 * time.Second)
	if got := l.Remaining(); got != 2 {
		t.Errorf("Remaining after window elapsed = %d, want 2", got)
	}
}

func TestConsumedCountsAllAdmissions(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute, 0)
	for i := 0; i < 7; i++ {
		if err := l.Admit(context.Background(), "count"); err != nil {
			t.Fatalf("Admit: %v", err)
		}
		clock.current = clock.current.Add(15 * time.Second)
	}
	if got := l.Consumed(); got != 7 {
		t.Errorf("Consumed = %d, want 7", got)
	}
}

func TestAdmitHonorsContextCancellation(t *testing.T) {
	l := New(1, time.Minute, 0)
	if err := l.Admit(context.Background(), "first"); err != nil {
		t.Fatalf("first Admit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Admit(ctx, "second"); err == nil {
		t.Error("Admit with canceled context returned nil, want error")
	}
}
