package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fitbitexport/internal/browser"
)

var docsFlag bool

var rootCmd = &cobra.Command{
	Use:          "fitbitexport",
	Short:        "Export Fitbit activity and health metrics to JSON, CSV and text files",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if docsFlag {
			return openDocs()
		}
		// Bare invocation behaves like `run` with defaults.
		return runExport(cmd.Context(), "", "", defaultDays)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&docsFlag, "docs", false, "open the generated documentation in a browser")
	rootCmd.AddCommand(runCmd, processCmd, historyCmd)
}

func openDocs() error {
	path, err := filepath.Abs(filepath.Join("docs", "build", "html", "index.html"))
	if err != nil {
		return err
	}
	url := "file://" + path
	if err := browser.Open(url); err != nil {
		return fmt.Errorf("could not open documentation at %s: %w", url, err)
	}
	fmt.Printf("Documentation opened at %s\n", path)
	return nil
}
