package sheets

import (
	"context"
	"strconv"
	"sync"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/kinesiogame/encuesta/internal/domain/providers"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	apperrors "github.com/kinesiogame/encuesta/pkg/errors"
)

// SinkName identifies the Sheets forwarder in logs and metrics.
const SinkName = "google_sheets"

// RowAppender appends one row to a spreadsheet tab.
type RowAppender interface {
	AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error
}

// ClientFactory builds the Sheets client on first use.
type ClientFactory func(ctx context.Context) (RowAppender, error)

// SheetsForwarder mirrors submissions as rows of a Google Sheets tab. It owns
// the lazily created client and shares it across all requests.
type SheetsForwarder struct {
	spreadsheetID string
	sheetName     string
	factory       ClientFactory

	mu     sync.Mutex
	client RowAppender
}

// NewSheetsForwarder creates a forwarder. An empty spreadsheetID disables it.
func NewSheetsForwarder(spreadsheetID, sheetName string, factory ClientFactory) *SheetsForwarder {
	return &SheetsForwarder{
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		factory:       factory,
	}
}

var _ providers.SubmissionForwarder = (*SheetsForwarder)(nil)

// Name identifies the sink
func (f *SheetsForwarder) Name() string {
	return SinkName
}

// Enabled reports whether a spreadsheet identifier is configured
func (f *SheetsForwarder) Enabled() bool {
	return f.spreadsheetID != ""
}

// SpreadsheetID returns the configured spreadsheet
func (f *SheetsForwarder) SpreadsheetID() string {
	return f.spreadsheetID
}

// SheetName returns the configured tab
func (f *SheetsForwarder) SheetName() string {
	return f.sheetName
}

// Forward appends the submission row. Failures are logged and reported in
// the result only.
func (f *SheetsForwarder) Forward(ctx context.Context, submission *entities.Submission) providers.ForwardResult {
	if !f.Enabled() {
		return providers.ForwardResult{Sink: SinkName, Outcome: providers.ForwardSkipped}
	}

	ctx, span := observability.StartSpan(ctx, "survey.forward.sheets")
	defer span.End()

	if err := f.AppendRow(ctx, BuildRow(submission)); err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("spreadsheet_id", f.spreadsheetID).
			Str("tab", f.sheetName).
			Msg("Sheets append failed")
		return providers.ForwardResult{Sink: SinkName, Outcome: providers.ForwardFailed, Err: err}
	}

	return providers.ForwardResult{Sink: SinkName, Outcome: providers.ForwardSucceeded}
}

// AppendRow appends an arbitrary row to the configured tab and returns the
// failure to the caller. Used by Forward and by diagnostics.
func (f *SheetsForwarder) AppendRow(ctx context.Context, row []string) error {
	if !f.Enabled() {
		return apperrors.NewNotConfiguredError("Missing GSHEET_ID")
	}

	client, err := f.getClient(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to initialize sheets client", err)
	}

	if err := client.AppendRow(ctx, f.spreadsheetID, f.sheetName, row); err != nil {
		return apperrors.NewExternalError("sheets append failed", err)
	}
	return nil
}

// getClient creates the client at most once per successful initialization.
// A failed initialization is not cached, the next call tries again.
func (f *SheetsForwarder) getClient(ctx context.Context) (RowAppender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		return f.client, nil
	}
	if f.factory == nil {
		return nil, apperrors.NewNotConfiguredError("sheets client factory is not set")
	}

	client, err := f.factory(ctx)
	if err != nil {
		return nil, err
	}
	f.client = client
	return client, nil
}

// BuildRow flattens a submission: timestamp, name, email, age, likert items
// in index order, then problems, advantages and other games.
func BuildRow(submission *entities.Submission) []string {
	respondent := submission.Respondent()
	open := submission.Open()

	row := make([]string, 0, 4+submission.LikertCount()+3)
	row = append(row,
		submission.FormattedTimestamp(),
		respondent.Name,
		respondent.Email,
		strconv.Itoa(respondent.Age),
	)
	for _, answer := range submission.Likert() {
		row = append(row, answer.Value)
	}
	row = append(row, open.Problems, open.Advantages, open.OtherGames)
	return row
}
