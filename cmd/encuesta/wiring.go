package main

import (
	"context"

	"github.com/kinesiogame/encuesta/internal/adapters/sheets"
	sheetsclient "github.com/kinesiogame/encuesta/internal/infrastructure/clients/sheets"
	"github.com/kinesiogame/encuesta/pkg/config"
)

// newSheetsForwarder builds the Sheets forwarder. The API client is created
// on first use and outlives any single request, so it is not bound to the
// caller's context.
func newSheetsForwarder(cfg *config.SheetsConfig) *sheets.SheetsForwarder {
	return sheets.NewSheetsForwarder(cfg.SpreadsheetID, cfg.Tab, func(ctx context.Context) (sheets.RowAppender, error) {
		return sheetsclient.NewClient(context.Background(), cfg)
	})
}
