package main

import (
	"github.com/spf13/cobra"

	"fitbitexport/internal/history"
	"fitbitexport/internal/ratelimit"
	"fitbitexport/internal/services"
)

var processCmd = &cobra.Command{
	Use:   "process <dir>",
	Short: "Regenerate CSV tables from an existing fitbit_data.json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := newEnv()
		if err != nil {
			return err
		}
		defer closeLog()

		hist, err := history.New(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer hist.Close()

		runner := services.NewRunner(cfg, logger, ratelimit.NewTracker(), hist)
		return runner.Process(args[0])
	},
}
