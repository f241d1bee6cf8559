// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sprint-stats",
	Short: "A CLI tool to derive sprint productivity metrics from GitLab.",
	Long: `sprint-stats enumerates the sprints of a GitLab group (epics titled
"Sprint <n>/<m>: <description>"), classifies their discussion comments into
planning and review sections, and derives per-sprint productivity metrics
(MR rate, completion rate, time to merge, review efficiency, scope change,
collaboration, work distribution).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default: $SPRINT_STATS_CONFIG or ./config.yaml)")
}

// newLogger builds the logger for a command run. Progress output is discarded
// unless --verbose is set, in which case it goes to standard error.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	if !verbose {
		return zerolog.New(io.Discard)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
