// Package ratelimit provides the single admission gate every external backend
// call in the pipeline passes through. The gate never rejects a caller; under
// contention it only delays, so contention surfaces as latency rather than error.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Limiter enforces a sliding window of at most max admissions per window.
// All retained timestamps are within now-window; the slice is mutated only by
// the admission check itself.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	margin time.Duration
	stamps []time.Time
	total  int

	// Injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a limiter admitting at most max calls per window. A small safety
// margin is added to computed waits so a retry lands strictly after the oldest
// timestamp has exited the window.
func New(max int, window, margin time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		margin: margin,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Admit blocks until admission is safe, then records a timestamp and returns.
// The wait-then-retry is an explicit loop; each pass prunes expired stamps and
// either records immediately or waits until the oldest stamp exits the window.
func (l *Limiter) Admit(ctx context.Context, caller string) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.pruneLocked(now)

		if len(l.stamps) < l.max {
			l.stamps = append(l.stamps, now)
			l.total++
			l.mu.Unlock()
			return nil
		}

		wait := l.stamps[0].Add(l.window).Sub(now) + l.margin
		l.mu.Unlock()

		log.Printf("⏳ Rate limit reached for %s, waiting %v before retry", caller, wait)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining returns how many admissions are currently available without blocking.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	if r := l.max - len(l.stamps); r > 0 {
		return r
	}
	return 0
}

// Consumed returns the total number of admissions granted over the limiter's
// lifetime. The orchestrator uses a nonzero count as evidence that live
// backend calls, not only fallbacks, contributed to a run.
func (l *Limiter) Consumed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// pruneLocked drops timestamps older than now-window. Caller must hold mu.
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.stamps[:0]
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.stamps = kept
}
