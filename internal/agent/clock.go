package agent

import (
	"context"
	"time"
)

// Sleeper suspends the loop between failed cycles. Injectable so tests
// can drive many cycles without real delay and assert on the backoff
// progression.
type Sleeper interface {
	// Sleep blocks for d or until ctx is cancelled, whichever comes
	// first. Returns ctx.Err() on cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
