package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Backoff bounds for the resilience loop. The delay doubles on every
// consecutive failure up to the ceiling and resets to the floor only on
// success.
const (
	BackoffFloor   = 1 * time.Second
	BackoffCeiling = 30 * time.Second
)

// WithBackoff overrides the backoff floor and ceiling.
func WithBackoff(floor, ceiling time.Duration) Option {
	return func(a *Agent) {
		a.floor = floor
		a.ceiling = ceiling
	}
}

// Run drives cycles until ctx is cancelled. Cycle failure is the
// expected steady state under coordinator unavailability, not a fatal
// condition: every failure is logged with its stage and code, then the
// loop backs off and retries. Run returns only ctx.Err().
func (a *Agent) Run(ctx context.Context) error {
	delay := a.floor

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := a.RunCycle(ctx)
		if err == nil {
			delay = a.floor
			continue
		}

		// Cancellation surfacing through a stage is loop shutdown, not
		// a cycle failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ctx.Err()
		}

		slog.Error("cycle failed",
			"stage", StageOf(err),
			"code", CodeOf(err),
			"backoff", delay,
			"error", err)

		if serr := a.sleeper.Sleep(ctx, delay); serr != nil {
			return serr
		}
		delay = nextBackoff(delay, a.ceiling)
	}
}

// nextBackoff doubles the delay, capped at ceiling.
func nextBackoff(d, ceiling time.Duration) time.Duration {
	d *= 2
	if d > ceiling {
		return ceiling
	}
	return d
}
