// Package cli implements the interviewer commands.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	dbPath     string
	jsonOut    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "interviewer",
	Short:         "Spoken-interview question engine",
	Long:          "Runs, replays, and inspects practice entrance interviews. Transcripts are stored in SQLite.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before environment overrides")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $INTERVIEW_DB or interview.db)")
	RootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON instead of text")
}
