package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleeper captures requested delays without sleeping and
// cancels the loop after a fixed number of suspensions.
type recordingSleeper struct {
	delays []time.Duration
	limit  int
	cancel context.CancelFunc
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	if len(s.delays) >= s.limit {
		s.cancel()
	}
	return nil
}

// tokens returns enough fixed tokens for n cycles.
func tokens(n int) *FixedGenerator {
	ts := make([]string, n)
	for i := range ts {
		ts[i] = "cycle"
	}
	return NewFixedGenerator(ts...)
}

func TestRunBackoffDoublesToCeiling(t *testing.T) {
	_, priv := testKey(t)
	id := testIdentity()
	id.APIKey = "" // every cycle fails at FetchJob

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &recordingSleeper{limit: 7, cancel: cancel}
	a := New(id, priv,
		WithSleeper(sleeper),
		WithTokenGenerator(tokens(8)))

	err := a.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	// min(1s * 2^k, 30s) for k = 0..6
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, sleeper.delays)
}

func TestRunSuccessResetsBackoff(t *testing.T) {
	_, priv := testKey(t)

	// fail, fail, fail, succeed, fail, fail then stop.
	boom := errors.New("unreachable")
	source := &scriptedSource{
		jobs: []Job{{}, {}, {}, {ID: "job-1", Payload: map[string]any{}}},
		errs: []error{boom, boom, boom, nil, boom, boom},
	}

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &recordingSleeper{limit: 5, cancel: cancel}
	a := New(testIdentity(), priv,
		WithSource(source),
		WithSleeper(sleeper),
		WithTokenGenerator(tokens(8)))

	err := a.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	// Three failures escalate 1s→2s→4s, the success resets, and the
	// next failure starts over at the floor.
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		1 * time.Second,
		2 * time.Second,
	}, sleeper.delays)
}

func TestRunNeverExitsOnCycleFailure(t *testing.T) {
	_, priv := testKey(t)
	id := testIdentity()
	id.CoordinatorURL = ""

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &recordingSleeper{limit: 50, cancel: cancel}
	a := New(id, priv,
		WithSleeper(sleeper),
		WithTokenGenerator(tokens(51)))

	err := a.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, sleeper.delays, 50)
}

func TestRunStopsOnContextBeforeFirstCycle(t *testing.T) {
	_, priv := testKey(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(testIdentity(), priv)
	err := a.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNextBackoff(t *testing.T) {
	tests := []struct {
		name     string
		current  time.Duration
		expected time.Duration
	}{
		{"floor doubles", 1 * time.Second, 2 * time.Second},
		{"mid doubles", 8 * time.Second, 16 * time.Second},
		{"capped", 16 * time.Second, 30 * time.Second},
		{"stays at ceiling", 30 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextBackoff(tt.current, BackoffCeiling))
		})
	}
}

func TestRealSleeperHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RealSleeper{}.Sleep(ctx, time.Hour)
	assert.True(t, errors.Is(err, context.Canceled))
}
