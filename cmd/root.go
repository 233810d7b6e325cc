// Package cmd implements dialogrt's cobra-based command-line surface, the
// ambient shell around the callparse grammar.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "dialogrt",
	Short: "Parse and inspect streamed @mention call-invocation transcripts",
	Long: `dialogrt parses conversational text containing @mention-addressed
calls and fenced code blocks into an ordered event stream, and provides
tooling to inspect, route, and replay what was parsed.

Examples:
  dialogrt parse transcript.txt
  dialogrt mentions transcript.txt
  dialogrt agents list
  dialogrt replay diff <transcript-id> <call-id-a> <call-id-b>`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	rootCmd.AddCommand(parseCmd, mentionsCmd, agentsCmd, replayCmd)
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
