package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSheetsCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets-check",
		Short: "Append a TEST row to the configured spreadsheet tab",
		Long: `Appends the row ["TEST", "ok"] to the tab configured by GSHEET_ID and
GSHEET_TAB using GOOGLE_SERVICE_ACCOUNT_JSON, and reports the outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forwarder := newSheetsForwarder(&a.cfg.Sheets)
			if err := forwarder.AppendRow(cmd.Context(), []string{"TEST", "ok"}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: appended test row to %s (tab %q)\n", forwarder.SpreadsheetID(), forwarder.SheetName())
			return nil
		},
	}
}
