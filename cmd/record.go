package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/callmesh/dialogrt/internal/callparse"
	"github.com/callmesh/dialogrt/internal/config"
	"github.com/callmesh/dialogrt/internal/dispatch"
	"github.com/callmesh/dialogrt/internal/replay"
)

var replayRecordCmd = &cobra.Command{
	Use:   "record [file]",
	Short: "Parse a transcript and save it to the replay store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReplayRecord,
}

func init() {
	replayCmd.AddCommand(replayRecordCmd)
}

func runReplayRecord(cmd *cobra.Command, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return fmt.Errorf("record: open input: %w", err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("record: read input: %w", err)
	}

	rec := &replay.RecordingReceiver{}
	p := callparse.New(rec)
	if err := p.Consume(string(data)); err != nil {
		return fmt.Errorf("record: consume: %w", err)
	}
	if err := p.Finish(); err != nil {
		return fmt.Errorf("record: finish: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("record: load config: %w", err)
	}

	reg, err := registryFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("record: load agent registry: %w", err)
	}
	router, err := dispatch.NewRouter(reg, cfg.AllowMention)
	if err != nil {
		return fmt.Errorf("record: build router: %w", err)
	}
	for _, call := range p.CollectedCalls() {
		if d := router.Route(call); !d.Allowed || d.Agent == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "record: "+routeWarning(d))
		}
	}

	ctx := context.Background()
	store, err := replay.NewStore(ctx, cfg.ReplayDB)
	if err != nil {
		return fmt.Errorf("record: open store: %w", err)
	}
	defer store.Close()

	source := "-"
	if len(args) > 0 {
		source = args[0]
	}
	id, err := store.Save(ctx, source, p.CollectedCalls(), rec.CodeBlocks())
	if err != nil {
		return fmt.Errorf("record: save: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

// routeWarning describes an unresolved or denied routing decision for the
// warnings runReplayRecord prints before saving.
func routeWarning(d dispatch.Decision) string {
	if !d.Allowed {
		if d.Suggestion != "" {
			return fmt.Sprintf("@%s is not allow-listed (did you mean @%s?)", d.Call.FirstMention, d.Suggestion)
		}
		return fmt.Sprintf("@%s is not allow-listed", d.Call.FirstMention)
	}
	if d.Suggestion != "" {
		return fmt.Sprintf("no agent named @%s (did you mean @%s?)", d.Call.FirstMention, d.Suggestion)
	}
	return fmt.Sprintf("no agent named @%s", d.Call.FirstMention)
}
