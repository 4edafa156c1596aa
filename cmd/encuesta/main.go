package main

import (
	"os"

	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	"github.com/kinesiogame/encuesta/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const serviceName = "kinesiogame-encuesta"

// app carries state shared by all subcommands once configuration is loaded.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "encuesta",
		Short: "KinesioGame satisfaction survey service",
		Long: `Serves the KinesioGame satisfaction survey.

Every accepted submission is appended to a local JSONL journal first and then
mirrored, best effort, to Google Sheets and optionally to PostgreSQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			observability.InitLogger(serviceName, cfg.Log.Env, cfg.Log.Level)
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(a),
		newSheetsCheckCmd(a),
		newJournalCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
