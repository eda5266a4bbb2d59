package agent

import (
	"errors"
	"fmt"
)

// Stage names the step of the execution cycle where a failure occurred.
type Stage string

const (
	StageHeartbeat  Stage = "heartbeat"
	StageFetchJob   Stage = "fetch_job"
	StageExecuteJob Stage = "execute_job"
	StageCanonical  Stage = "canonicalize_result"
	StageDigest     Stage = "digest_result"
	StageSignDigest Stage = "sign_digest"
	StageSubmit     Stage = "submit"
)

// ErrorCode categorizes cycle failures. All of them are cycle-local and
// recoverable: the resilience loop logs, backs off, and retries.
type ErrorCode string

const (
	// ErrCodeInvalidIdentity indicates the identity has no coordinator
	// endpoint.
	ErrCodeInvalidIdentity ErrorCode = "INVALID_IDENTITY"

	// ErrCodeInvalidCredential indicates the identity has no API key.
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"

	// ErrCodeFetchFailed indicates the job source could not supply a job.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"

	// ErrCodeMalformedJob indicates the fetched job has no identifier.
	ErrCodeMalformedJob ErrorCode = "MALFORMED_JOB"

	// ErrCodeExecutionFailed indicates the job executor reported failure.
	ErrCodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// ErrCodeAttestationFailed wraps canonicalization, digest, or signing
	// failures.
	ErrCodeAttestationFailed ErrorCode = "ATTESTATION_FAILED"

	// ErrCodeSubmissionFailed indicates the submission sink rejected the
	// attested result.
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
)

// CycleError is the single tagged error a failed cycle returns. The
// stage is the point where the cycle short-circuited; stages after it
// were not invoked. Side effects of earlier stages are not rolled back.
type CycleError struct {
	Stage   Stage
	Code    ErrorCode
	Message string
	Err     error
}

func (e *CycleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (stage=%s): %v", e.Code, e.Message, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s (stage=%s)", e.Code, e.Message, e.Stage)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code from err, or "" if err is not a
// CycleError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// StageOf extracts the failing stage from err, or "" if err is not a
// CycleError.
func StageOf(err error) Stage {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Stage
	}
	return ""
}
