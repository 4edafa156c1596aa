package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/kinesiogame/encuesta/internal/domain/providers"
	"github.com/kinesiogame/encuesta/internal/infrastructure/clients/postgres"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	apperrors "github.com/kinesiogame/encuesta/pkg/errors"
)

// MirrorSinkName identifies the Postgres mirror in logs and metrics.
const MirrorSinkName = "postgres"

const responsesTable = "survey_responses"

const createResponsesTable = `CREATE TABLE IF NOT EXISTS survey_responses (
	id UUID PRIMARY KEY,
	submitted_at TIMESTAMPTZ NOT NULL,
	nombre TEXT NOT NULL,
	correo TEXT NOT NULL,
	edad INTEGER NOT NULL,
	likert JSONB NOT NULL,
	abiertas JSONB NOT NULL
)`

// SubmissionMirrorAdapter copies accepted submissions into Postgres. It is a
// best-effort mirror; the local journal stays authoritative.
type SubmissionMirrorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	newID  func() string
}

// NewSubmissionMirrorAdapter creates a new mirror adapter.
func NewSubmissionMirrorAdapter(client *postgres.Client) *SubmissionMirrorAdapter {
	return &SubmissionMirrorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		newID:  uuid.NewString,
	}
}

var _ providers.SubmissionForwarder = (*SubmissionMirrorAdapter)(nil)

// Name identifies the sink
func (a *SubmissionMirrorAdapter) Name() string {
	return MirrorSinkName
}

// EnsureSchema creates the mirror table when it does not exist.
func (a *SubmissionMirrorAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, createResponsesTable); err != nil {
		return apperrors.NewInternalError("failed to create survey_responses table", err)
	}
	return nil
}

// Forward inserts one row. Failures are logged and reported in the result.
func (a *SubmissionMirrorAdapter) Forward(ctx context.Context, submission *entities.Submission) providers.ForwardResult {
	ctx, span := observability.StartSpan(ctx, "survey.forward.postgres")
	defer span.End()

	if err := a.insert(ctx, submission); err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Postgres mirror insert failed")
		return providers.ForwardResult{Sink: MirrorSinkName, Outcome: providers.ForwardFailed, Err: err}
	}
	return providers.ForwardResult{Sink: MirrorSinkName, Outcome: providers.ForwardSucceeded}
}

func (a *SubmissionMirrorAdapter) insert(ctx context.Context, submission *entities.Submission) error {
	if submission == nil {
		return apperrors.NewExternalError("submission is nil", fmt.Errorf("submission is nil"))
	}

	likert := make(map[string]string, submission.LikertCount())
	for _, answer := range submission.Likert() {
		likert[entities.LikertFieldName(answer.Index)] = answer.Value
	}
	likertJSON, err := json.Marshal(likert)
	if err != nil {
		return apperrors.NewExternalError("failed to encode likert answers", err)
	}

	open := submission.Open()
	openJSON, err := json.Marshal(map[string]string{
		entities.FieldProblems:   open.Problems,
		entities.FieldAdvantages: open.Advantages,
		entities.FieldOtherGames: open.OtherGames,
	})
	if err != nil {
		return apperrors.NewExternalError("failed to encode open answers", err)
	}

	respondent := submission.Respondent()
	record := goqu.Record{
		"id":           a.newID(),
		"submitted_at": submission.Timestamp(),
		"nombre":       respondent.Name,
		"correo":       respondent.Email,
		"edad":         respondent.Age,
		"likert":       string(likertJSON),
		"abiertas":     string(openJSON),
	}

	query, args, err := a.db.Insert(responsesTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewExternalError("failed to build survey_responses insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to insert survey response", err)
	}
	return nil
}
