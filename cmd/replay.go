package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callmesh/dialogrt/internal/config"
	"github.com/callmesh/dialogrt/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Inspect previously recorded transcripts",
}

var replayDiffCmd = &cobra.Command{
	Use:   "diff <transcript-id> <call-id-a> <call-id-b>",
	Short: "Show a unified diff between two recorded call bodies",
	Args:  cobra.ExactArgs(3),
	RunE:  runReplayDiff,
}

func init() {
	replayCmd.AddCommand(replayDiffCmd)
}

func runReplayDiff(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("replay: load config: %w", err)
	}

	ctx := context.Background()
	store, err := replay.NewStore(ctx, cfg.ReplayDB)
	if err != nil {
		return fmt.Errorf("replay: open store: %w", err)
	}
	defer store.Close()

	out, err := store.Diff(ctx, args[0], args[1], args[2])
	if err != nil {
		return fmt.Errorf("replay: diff: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
