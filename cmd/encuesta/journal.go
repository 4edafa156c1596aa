package main

import (
	"fmt"

	"github.com/kinesiogame/encuesta/internal/adapters/definition"
	"github.com/kinesiogame/encuesta/internal/adapters/journal"
	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local submission journal",
	}

	var path string
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every journal line is a complete submission record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.Survey.JournalPath()
			}

			def, err := definition.Load(a.cfg.Survey.DefinitionPath)
			if err != nil {
				return err
			}

			submissions, err := journal.NewJSONLJournal(path).ReadAll(cmd.Context())
			if err != nil {
				return err
			}

			mismatched := 0
			for _, submission := range submissions {
				if submission.LikertCount() != def.ItemCount() {
					mismatched++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d records\n", path, len(submissions))
			if mismatched > 0 {
				fmt.Fprintf(out, "%d records do not carry %d likert items\n", mismatched, def.ItemCount())
				return fmt.Errorf("journal has %d records with an unexpected item count", mismatched)
			}
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&path, "file", "", "journal to verify (default DATA_DIR/JOURNAL_FILE)")

	journalCmd.AddCommand(verifyCmd)
	return journalCmd
}
