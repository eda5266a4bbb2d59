package agent

import (
	"context"
	"log/slog"

	"github.com/openmesh-ai/openmesh-worker/internal/identity"
)

// Job is an opaque unit of work. The agent requires a non-empty ID and
// treats everything else as pass-through.
type Job struct {
	ID      string
	Payload map[string]any
}

// JobSource supplies jobs. The production source is a coordinator
// client; until one exists PlaceholderSource stands in.
type JobSource interface {
	Fetch(ctx context.Context, id *identity.Identity) (Job, error)
}

// JobExecutor runs a job and returns its result payload. The payload
// must at least carry job_id, status, and output; the agent does not
// interpret them beyond canonicalization.
type JobExecutor interface {
	Execute(ctx context.Context, job Job) (map[string]any, error)
}

// Submission is the attested tuple handed to the sink after a
// successful cycle.
type Submission struct {
	CycleToken string
	JobID      string
	Canonical  []byte
	DigestHex  string
	Signature  string
	Identity   *identity.Identity
}

// SubmissionSink delivers attested results. The agent does not retry
// submission itself; the resilience loop retries the whole cycle.
type SubmissionSink interface {
	Submit(ctx context.Context, sub Submission) error
}

// PlaceholderSource returns a fixed no-op job. It stands in for the
// coordinator job-fetch transport.
type PlaceholderSource struct{}

func (PlaceholderSource) Fetch(_ context.Context, _ *identity.Identity) (Job, error) {
	return Job{
		ID:      "job-placeholder",
		Payload: map[string]any{"action": "NOOP"},
	}, nil
}

// PlaceholderExecutor produces an "ok" result without doing work. Real
// execution belongs to an external engine.
type PlaceholderExecutor struct{}

func (PlaceholderExecutor) Execute(_ context.Context, job Job) (map[string]any, error) {
	return map[string]any{
		"job_id": job.ID,
		"status": "completed",
		"output": "ok",
	}, nil
}

// LogSink logs each submission instead of delivering it. It stands in
// for the coordinator submit transport. The API key is never logged.
type LogSink struct{}

func (LogSink) Submit(_ context.Context, sub Submission) error {
	slog.Info("result attested",
		"cycle", sub.CycleToken,
		"job_id", sub.JobID,
		"digest", sub.DigestHex,
		"signature", sub.Signature,
		"worker", sub.Identity.Name)
	return nil
}
