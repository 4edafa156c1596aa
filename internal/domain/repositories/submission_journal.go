package repositories

import (
	"context"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
)

// SubmissionJournal is the authoritative, append-only store of accepted submissions.
type SubmissionJournal interface {
	// Append durably records one submission after all existing records.
	Append(ctx context.Context, submission *entities.Submission) error

	// ReadAll returns every recorded submission in append order.
	ReadAll(ctx context.Context) ([]*entities.Submission, error)
}
