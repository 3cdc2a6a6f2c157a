package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"fitbitexport/internal/config"
	"fitbitexport/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past export runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := history.New(config.HistoryDB())
		if err != nil {
			return err
		}
		defer hist.Close()

		runs, err := hist.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No export runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Email,
				r.StartDate + " to " + r.EndDate,
				strconv.Itoa(r.Days),
				strconv.Itoa(r.RowsWritten),
				fmt.Sprintf("%.1fs", r.Seconds),
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("When", "Account", "Range", "Days", "Rows", "Took").
			Rows(rows...).
			Render()
		fmt.Println(t)
		return nil
	},
}
