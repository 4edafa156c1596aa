package handlers

import (
	"context"
	"net/http"
)

// sheetsCheckRow is the row appended by the diagnostics endpoint.
var sheetsCheckRow = []string{"TEST", "ok"}

// SheetsProbe is the part of the Sheets forwarder used for diagnostics.
type SheetsProbe interface {
	Enabled() bool
	SpreadsheetID() string
	SheetName() string
	AppendRow(ctx context.Context, row []string) error
}

// DebugHandler exposes operator diagnostics.
type DebugHandler struct {
	sheets SheetsProbe
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(sheets SheetsProbe) *DebugHandler {
	return &DebugHandler{sheets: sheets}
}

type sheetsCheckResponse struct {
	OK            bool   `json:"ok"`
	SpreadsheetID string `json:"sheet_id,omitempty"`
	Tab           string `json:"tab,omitempty"`
	Error         string `json:"error,omitempty"`
}

// SheetsCheck handles GET /debug/sheets. It appends a test row
// synchronously and reports the outcome; it always answers 200.
func (h *DebugHandler) SheetsCheck(w http.ResponseWriter, r *http.Request) {
	if h.sheets == nil || !h.sheets.Enabled() {
		respondWithJSON(w, http.StatusOK, sheetsCheckResponse{OK: false, Error: "Missing GSHEET_ID"})
		return
	}

	resp := sheetsCheckResponse{
		SpreadsheetID: h.sheets.SpreadsheetID(),
		Tab:           h.sheets.SheetName(),
	}
	if err := h.sheets.AppendRow(r.Context(), sheetsCheckRow); err != nil {
		resp.Error = err.Error()
	} else {
		resp.OK = true
	}
	respondWithJSON(w, http.StatusOK, resp)
}
