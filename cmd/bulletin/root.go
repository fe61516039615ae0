package main

import (
	"github.com/spf13/cobra"

	"github.com/cogc-planning/bulletin/internal/api"
	"github.com/cogc-planning/bulletin/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "bulletin",
	Short: "COGC duty bulletin parsing service",
	Long: `Bulletin parses SNCF duty-roster PDFs into structured planning entries.

The pipeline includes:
  - OCR text extraction with a PDF text-layer fallback
  - Agent metadata extraction (name, personnel number, period)
  - Date-anchored entry extraction against the service-code catalog
  - Night-shift rollover onto the calendar day the agent finishes on`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bulletin/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
