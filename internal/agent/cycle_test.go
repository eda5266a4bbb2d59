package agent

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh-ai/openmesh-worker/internal/attest"
	"github.com/openmesh-ai/openmesh-worker/internal/identity"
)

func testIdentity() *identity.Identity {
	return &identity.Identity{
		CoordinatorURL: "https://pool.example.com",
		APIKey:         "omk_test",
		Name:           "edge-01",
		Region:         "eu-west",
	}
}

func testKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

// scriptedSource returns queued jobs or errors, counting calls.
type scriptedSource struct {
	jobs  []Job
	errs  []error
	calls int
}

func (s *scriptedSource) Fetch(context.Context, *identity.Identity) (Job, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Job{}, s.errs[i]
	}
	if i < len(s.jobs) {
		return s.jobs[i], nil
	}
	return Job{ID: "job-default", Payload: map[string]any{}}, nil
}

type countingExecutor struct {
	result map[string]any
	err    error
	calls  int
}

func (e *countingExecutor) Execute(_ context.Context, job Job) (map[string]any, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return map[string]any{"job_id": job.ID, "status": "completed", "output": "ok"}, nil
}

type countingSink struct {
	err   error
	calls int
	last  Submission
}

func (s *countingSink) Submit(_ context.Context, sub Submission) error {
	s.calls++
	s.last = sub
	return s.err
}

type memoryRecorder struct {
	records []CycleRecord
}

func (r *memoryRecorder) RecordCycle(_ context.Context, rec CycleRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func TestRunCycleSuccess(t *testing.T) {
	pub, priv := testKey(t)
	sink := &countingSink{}
	a := New(testIdentity(), priv,
		WithSink(sink),
		WithTokenGenerator(NewFixedGenerator("cycle-1")))

	require.NoError(t, a.RunCycle(context.Background()))
	require.Equal(t, 1, sink.calls)

	sub := sink.last
	assert.Equal(t, "cycle-1", sub.CycleToken)
	assert.Equal(t, "job-placeholder", sub.JobID)
	assert.Equal(t,
		`{"job_id":"job-placeholder","output":"ok","status":"completed"}`,
		string(sub.Canonical))
	assert.Equal(t, attest.DigestHex(sub.Canonical), sub.DigestHex)

	sig, err := attest.DecodeSignature(sub.Signature)
	require.NoError(t, err)
	ok, err := attest.Verify(pub, []byte(sub.DigestHex), sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunCycleMissingCoordinator(t *testing.T) {
	_, priv := testKey(t)
	id := testIdentity()
	id.CoordinatorURL = ""

	source := &scriptedSource{}
	exec := &countingExecutor{}
	sink := &countingSink{}
	a := New(id, priv, WithSource(source), WithExecutor(exec), WithSink(sink))

	err := a.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidIdentity, CodeOf(err))
	assert.Equal(t, StageHeartbeat, StageOf(err))

	// Short-circuit: nothing past the failing stage runs.
	assert.Zero(t, source.calls)
	assert.Zero(t, exec.calls)
	assert.Zero(t, sink.calls)
}

func TestRunCycleMissingCredentialShortCircuits(t *testing.T) {
	_, priv := testKey(t)
	id := testIdentity()
	id.APIKey = ""

	source := &scriptedSource{}
	exec := &countingExecutor{}
	sink := &countingSink{}
	a := New(id, priv, WithSource(source), WithExecutor(exec), WithSink(sink))

	err := a.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidCredential, CodeOf(err))
	assert.Equal(t, StageFetchJob, StageOf(err))

	assert.Zero(t, source.calls)
	assert.Zero(t, exec.calls)
	assert.Zero(t, sink.calls)
}

func TestRunCycleFetchFailure(t *testing.T) {
	_, priv := testKey(t)
	source := &scriptedSource{errs: []error{errors.New("coordinator unreachable")}}
	exec := &countingExecutor{}
	a := New(testIdentity(), priv, WithSource(source), WithExecutor(exec))

	err := a.RunCycle(context.Background())
	assert.Equal(t, ErrCodeFetchFailed, CodeOf(err))
	assert.Zero(t, exec.calls)
}

func TestRunCycleMalformedJob(t *testing.T) {
	_, priv := testKey(t)
	source := &scriptedSource{jobs: []Job{{ID: ""}}}
	exec := &countingExecutor{}
	a := New(testIdentity(), priv, WithSource(source), WithExecutor(exec))

	err := a.RunCycle(context.Background())
	assert.Equal(t, ErrCodeMalformedJob, CodeOf(err))
	assert.Equal(t, StageExecuteJob, StageOf(err))
	assert.Zero(t, exec.calls)
}

func TestRunCycleExecutorFailure(t *testing.T) {
	_, priv := testKey(t)
	exec := &countingExecutor{err: errors.New("engine crashed")}
	sink := &countingSink{}
	a := New(testIdentity(), priv, WithExecutor(exec), WithSink(sink))

	err := a.RunCycle(context.Background())
	assert.Equal(t, ErrCodeExecutionFailed, CodeOf(err))
	assert.Zero(t, sink.calls)
}

func TestRunCycleAttestationFailure(t *testing.T) {
	_, priv := testKey(t)
	exec := &countingExecutor{result: map[string]any{"bad": make(chan int)}}
	sink := &countingSink{}
	a := New(testIdentity(), priv, WithExecutor(exec), WithSink(sink))

	err := a.RunCycle(context.Background())
	assert.Equal(t, ErrCodeAttestationFailed, CodeOf(err))
	assert.Equal(t, StageCanonical, StageOf(err))
	assert.Zero(t, sink.calls)
}

func TestRunCycleSubmissionFailure(t *testing.T) {
	_, priv := testKey(t)
	sink := &countingSink{err: errors.New("503")}
	a := New(testIdentity(), priv, WithSink(sink))

	err := a.RunCycle(context.Background())
	assert.Equal(t, ErrCodeSubmissionFailed, CodeOf(err))
	assert.Equal(t, StageSubmit, StageOf(err))
}

func TestRunCycleRecordsOutcomes(t *testing.T) {
	_, priv := testKey(t)
	rec := &memoryRecorder{}
	a := New(testIdentity(), priv,
		WithRecorder(rec),
		WithTokenGenerator(NewFixedGenerator("cycle-1", "cycle-2")))

	require.NoError(t, a.RunCycle(context.Background()))

	// Second cycle fails at the sink.
	a.sink = &countingSink{err: errors.New("503")}
	require.Error(t, a.RunCycle(context.Background()))

	require.Len(t, rec.records, 2)

	success := rec.records[0]
	assert.Equal(t, "cycle-1", success.Token)
	assert.Equal(t, "success", success.Status)
	assert.Equal(t, "job-placeholder", success.JobID)
	assert.Len(t, success.DigestHex, 64)
	assert.NotEmpty(t, success.Signature)

	failed := rec.records[1]
	assert.Equal(t, "cycle-2", failed.Token)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, string(StageSubmit), failed.Stage)
	assert.Equal(t, string(ErrCodeSubmissionFailed), failed.Code)
}
