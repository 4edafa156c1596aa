package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/kinesiogame/encuesta/internal/domain/providers"
	"github.com/kinesiogame/encuesta/internal/domain/repositories"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	apperrors "github.com/kinesiogame/encuesta/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PipelineState is a step of the submission pipeline.
type PipelineState string

const (
	StateReceived         PipelineState = "received"
	StateValidating       PipelineState = "validating"
	StateRejected         PipelineState = "rejected"
	StateValidated        PipelineState = "validated"
	StatePersistedLocally PipelineState = "persisted_locally"
	StateForwardAttempted PipelineState = "forward_attempted"
	StateCompleted        PipelineState = "completed"
)

// SubmissionOutcome describes where a submission ended up. State is either
// StateRejected or StateCompleted.
type SubmissionOutcome struct {
	State      PipelineState
	Rejection  *entities.Rejection
	Submission *entities.Submission
	Forwards   []providers.ForwardResult
}

// SubmissionService runs validate -> journal -> forward for one submission.
type SubmissionService struct {
	validator  *SubmissionValidator
	journal    repositories.SubmissionJournal
	forwarders []providers.SubmissionForwarder
	metrics    *observability.Metrics
}

// NewSubmissionService creates the pipeline. Forwarders run in the given
// order, only after the journal append succeeded.
func NewSubmissionService(
	validator *SubmissionValidator,
	journal repositories.SubmissionJournal,
	forwarders ...providers.SubmissionForwarder,
) *SubmissionService {
	return &SubmissionService{
		validator:  validator,
		journal:    journal,
		forwarders: forwarders,
	}
}

// SetMetrics enables submission metrics
func (s *SubmissionService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Submit processes one posted form. A rejection is reported through the
// outcome, not as an error; the only error is a failed journal append.
func (s *SubmissionService) Submit(ctx context.Context, form FormValues) (*SubmissionOutcome, error) {
	if s.journal == nil {
		return nil, apperrors.NewInternalError("submission journal is not configured", nil)
	}

	// A respondent closing the tab must not cut a submission in half.
	ctx = context.WithoutCancel(ctx)

	ctx, span := observability.StartSpan(ctx, "survey.submit")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	span.AddEvent(string(StateReceived))
	span.AddEvent(string(StateValidating))
	submission, err := s.validator.Validate(form)
	if err != nil {
		var rejection *entities.Rejection
		if !errors.As(err, &rejection) {
			observability.RecordError(span, err)
			return nil, apperrors.NewInternalError("unexpected validation failure", err)
		}
		span.AddEvent(string(StateRejected))
		observability.SetSpanAttributes(span,
			attribute.String("survey.state", string(StateRejected)),
			attribute.String("survey.rejection", string(rejection.Kind)),
		)
		observability.RecordSubmission(ctx, s.metrics, string(StateRejected), string(rejection.Kind))
		logger.Info().
			Str("kind", string(rejection.Kind)).
			Str("field", rejection.Field).
			Msg("Survey submission rejected")
		return &SubmissionOutcome{State: StateRejected, Rejection: rejection}, nil
	}

	span.AddEvent(string(StateValidated))

	started := time.Now()
	if err := s.journal.Append(ctx, submission); err != nil {
		observability.RecordError(span, err)
		observability.RecordSubmission(ctx, s.metrics, "failed", "")
		logger.Error().Err(err).Msg("Failed to persist survey submission")
		if apperrors.IsType(err, apperrors.ErrorTypeInternal) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to persist submission", err)
	}
	observability.RecordJournalAppend(ctx, s.metrics, time.Since(started))

	outcome := &SubmissionOutcome{
		Submission: submission,
		Forwards:   make([]providers.ForwardResult, 0, len(s.forwarders)),
	}
	outcome.transition(span, StatePersistedLocally)

	for _, forwarder := range s.forwarders {
		result := forwarder.Forward(ctx, submission)
		if result.Sink == "" {
			result.Sink = forwarder.Name()
		}
		outcome.Forwards = append(outcome.Forwards, result)
		observability.RecordForward(ctx, s.metrics, result.Sink, string(result.Outcome))
	}
	outcome.transition(span, StateForwardAttempted)
	outcome.transition(span, StateCompleted)

	observability.SetSpanAttributes(span, attribute.String("survey.state", string(outcome.State)))
	observability.RecordSubmission(ctx, s.metrics, string(StateCompleted), "")
	logger.Info().
		Str("timestamp", submission.FormattedTimestamp()).
		Str("forwards", summarizeForwards(outcome.Forwards)).
		Msg("Survey submission accepted")

	return outcome, nil
}

func (o *SubmissionOutcome) transition(span trace.Span, state PipelineState) {
	o.State = state
	span.AddEvent(string(state))
}

func summarizeForwards(results []providers.ForwardResult) string {
	if len(results) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s=%s", r.Sink, r.Outcome))
	}
	return strings.Join(parts, ",")
}
