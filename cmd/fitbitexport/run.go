package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"fitbitexport/internal/config"
	"fitbitexport/internal/history"
	"fitbitexport/internal/logging"
	"fitbitexport/internal/ratelimit"
	"fitbitexport/internal/services"
)

const defaultDays = 7

var (
	startFlag string
	endFlag   string
	daysFlag  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Authenticate and export both configured accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), startFlag, endFlag, daysFlag)
	},
}

func init() {
	runCmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	runCmd.Flags().IntVar(&daysFlag, "days", defaultDays, "number of days ending yesterday, ignored when --start/--end are set")
	runCmd.MarkFlagsRequiredTogether("start", "end")
}

// newEnv loads configuration and opens the logger. Configuration problems
// fail here, before any network call.
func newEnv() (config.Config, *log.Logger, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, closeLog, err := logging.New(cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

func runExport(ctx context.Context, start, end string, days int) error {
	cfg, logger, closeLog, err := newEnv()
	if err != nil {
		return err
	}
	defer closeLog()

	var dr services.DateRange
	if start != "" || end != "" {
		dr, err = services.ParseDateRange(start, end)
	} else {
		dr, err = services.RangeFromDays(days)
	}
	if err != nil {
		logger.Error("invalid date range", "err", err)
		return err
	}

	hist, err := history.New(cfg.HistoryDB)
	if err != nil {
		logger.Error("could not open history database", "err", err)
		return err
	}
	defer hist.Close()

	runner := services.NewRunner(cfg, logger, ratelimit.NewTracker(), hist)
	if err := runner.Run(ctx, dr); err != nil {
		return fmt.Errorf("run finished with errors: %w", err)
	}
	return nil
}
