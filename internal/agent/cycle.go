// Package agent drives the worker's heartbeat–fetch–execute–attest–submit
// cycle and the resilience loop around it.
//
// The agent is strictly sequential: one cycle in flight, one suspension
// point (the backoff sleep after a failed cycle). Identity and key
// material are read once at startup and immutable for the loop's
// lifetime.
package agent

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"time"

	"github.com/openmesh-ai/openmesh-worker/internal/attest"
	"github.com/openmesh-ai/openmesh-worker/internal/identity"
)

// Recorder observes cycle outcomes, e.g. the SQLite journal. Recorder
// failures are logged, never escalated: local bookkeeping must not fail
// a cycle that the coordinator accepted.
type Recorder interface {
	RecordCycle(ctx context.Context, rec CycleRecord) error
}

// CycleRecord is one journal entry.
type CycleRecord struct {
	Token     string
	JobID     string
	DigestHex string
	Signature string
	Status    string // "success" or "failed"
	Stage     string // failing stage, empty on success
	Code      string // failing code, empty on success
}

// Agent executes cycles against one identity and signing key.
type Agent struct {
	identity *identity.Identity
	key      ed25519.PrivateKey

	source   JobSource
	executor JobExecutor
	sink     SubmissionSink
	tokens   TokenGenerator
	sleeper  Sleeper
	recorder Recorder

	floor   time.Duration
	ceiling time.Duration

	// lastSubmission retains the most recent successful submission for
	// the recorder; overwritten every cycle.
	lastSubmission *Submission
}

// Option configures an Agent.
type Option func(*Agent)

// WithSource replaces the placeholder job source.
func WithSource(s JobSource) Option { return func(a *Agent) { a.source = s } }

// WithExecutor replaces the placeholder job executor.
func WithExecutor(e JobExecutor) Option { return func(a *Agent) { a.executor = e } }

// WithSink replaces the logging submission sink.
func WithSink(s SubmissionSink) Option { return func(a *Agent) { a.sink = s } }

// WithTokenGenerator replaces the UUIDv7 cycle token generator.
func WithTokenGenerator(g TokenGenerator) Option { return func(a *Agent) { a.tokens = g } }

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option { return func(a *Agent) { a.sleeper = s } }

// WithRecorder attaches a cycle recorder.
func WithRecorder(r Recorder) Option { return func(a *Agent) { a.recorder = r } }

// New creates an agent for the given identity and private key.
// Collaborators default to the in-process placeholders.
func New(id *identity.Identity, key ed25519.PrivateKey, opts ...Option) *Agent {
	a := &Agent{
		identity: id,
		key:      key,
		source:   PlaceholderSource{},
		executor: PlaceholderExecutor{},
		sink:     LogSink{},
		tokens:   UUIDv7Generator{},
		sleeper:  RealSleeper{},
		floor:    BackoffFloor,
		ceiling:  BackoffCeiling,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunCycle executes one full cycle. Stages run in strict sequence; the
// first failure short-circuits the rest and is returned as a
// *CycleError. Nil means the cycle reached Submit successfully.
func (a *Agent) RunCycle(ctx context.Context) error {
	token := a.tokens.Generate()

	err := a.runStages(ctx, token)
	a.record(ctx, token, err)
	return err
}

func (a *Agent) runStages(ctx context.Context, token string) error {
	// Heartbeat: liveness placeholder; for now just proves the identity
	// can name a coordinator.
	if a.identity.CoordinatorURL == "" {
		return &CycleError{
			Stage:   StageHeartbeat,
			Code:    ErrCodeInvalidIdentity,
			Message: "identity has no coordinator_url",
		}
	}
	slog.Debug("heartbeat ok", "cycle", token, "coordinator", a.identity.CoordinatorURL)

	// FetchJob.
	if a.identity.APIKey == "" {
		return &CycleError{
			Stage:   StageFetchJob,
			Code:    ErrCodeInvalidCredential,
			Message: "identity has no api_key",
		}
	}
	job, err := a.source.Fetch(ctx, a.identity)
	if err != nil {
		return &CycleError{Stage: StageFetchJob, Code: ErrCodeFetchFailed, Message: "job source failed", Err: err}
	}
	slog.Debug("job fetched", "cycle", token, "job_id", job.ID)

	// ExecuteJob.
	if job.ID == "" {
		return &CycleError{
			Stage:   StageExecuteJob,
			Code:    ErrCodeMalformedJob,
			Message: "job has no identifier",
		}
	}
	result, err := a.executor.Execute(ctx, job)
	if err != nil {
		return &CycleError{Stage: StageExecuteJob, Code: ErrCodeExecutionFailed, Message: "executor failed", Err: err}
	}

	// Canonicalize, digest, sign. attest.Result performs all three;
	// any failure inside it is an attestation failure at the
	// canonicalization stage (digesting and signing are infallible for
	// well-formed input).
	att, err := attest.Result(a.key, result)
	if err != nil {
		return &CycleError{Stage: StageCanonical, Code: ErrCodeAttestationFailed, Message: "attestation failed", Err: err}
	}
	slog.Debug("result attested", "cycle", token, "job_id", job.ID, "digest", att.DigestHex)

	// Submit.
	sub := Submission{
		CycleToken: token,
		JobID:      job.ID,
		Canonical:  att.Canonical,
		DigestHex:  att.DigestHex,
		Signature:  att.Signature,
		Identity:   a.identity,
	}
	if err := a.sink.Submit(ctx, sub); err != nil {
		return &CycleError{Stage: StageSubmit, Code: ErrCodeSubmissionFailed, Message: "submission sink failed", Err: err}
	}

	a.lastSubmission = &sub
	return nil
}

func (a *Agent) record(ctx context.Context, token string, cycleErr error) {
	if a.recorder == nil {
		return
	}

	rec := CycleRecord{Token: token, Status: "success"}
	if cycleErr != nil {
		rec.Status = "failed"
		rec.Stage = string(StageOf(cycleErr))
		rec.Code = string(CodeOf(cycleErr))
	} else if a.lastSubmission != nil {
		rec.JobID = a.lastSubmission.JobID
		rec.DigestHex = a.lastSubmission.DigestHex
		rec.Signature = a.lastSubmission.Signature
	}

	if err := a.recorder.RecordCycle(ctx, rec); err != nil {
		slog.Warn("journal write failed", "cycle", token, "error", err)
	}
}
