package providers

import (
	"context"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
)

// ForwardOutcome is the result of one best-effort forward.
type ForwardOutcome string

const (
	ForwardSkipped   ForwardOutcome = "skipped"
	ForwardSucceeded ForwardOutcome = "succeeded"
	ForwardFailed    ForwardOutcome = "failed"
)

// ForwardResult reports what a forwarder did with a submission. It is only
// consumed for logging and metrics.
type ForwardResult struct {
	Sink    string
	Outcome ForwardOutcome
	Err     error
}

// SubmissionForwarder mirrors an already persisted submission to a
// non-authoritative sink. Implementations never return failures as errors.
type SubmissionForwarder interface {
	// Name identifies the sink in logs and metrics
	Name() string

	// Forward attempts to mirror the submission once
	Forward(ctx context.Context, submission *entities.Submission) ForwardResult
}
