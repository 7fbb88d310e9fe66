package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "superforce",
	Short: "Super Main Force - call-auction heat scoring for A-shares",
	Long: `Super Main Force CLI

Scores every stock at the end of the 09:15-09:25 call auction, boosts
hot themes, and ranks likely limit-up candidates.

Usage:
  go run ./cmd/superforce [command]

Examples:
  go run ./cmd/superforce api
  go run ./cmd/superforce collect --date 2026-08-21
  go run ./cmd/superforce rank --date 2026-08-21 --limit 20
  go run ./cmd/superforce scheduler`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
