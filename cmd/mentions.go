package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/callmesh/dialogrt/internal/callparse"
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions [file]",
	Short: "List every @mention found in a transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMentions,
}

func runMentions(cmd *cobra.Command, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return fmt.Errorf("mentions: open input: %w", err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("mentions: read input: %w", err)
	}

	for _, m := range callparse.ExtractMentions(string(data)) {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	return nil
}
