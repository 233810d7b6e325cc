package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callmesh/dialogrt/internal/agents"
	"github.com/callmesh/dialogrt/internal/config"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the configured agent registry",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered agent name",
	Args:  cobra.NoArgs,
	RunE:  runAgentsList,
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one agent's configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsShow,
}

func init() {
	agentsCmd.AddCommand(agentsListCmd, agentsShowCmd)
}

func loadRegistry() (*agents.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("agents: load config: %w", err)
	}
	return registryFromConfig(cfg)
}

// registryFromConfig builds a registry from an already-loaded config, so
// callers that need both the config and the registry (parse, record) don't
// load the config file twice.
func registryFromConfig(cfg *config.Config) (*agents.Registry, error) {
	if cfg.AgentsFile == "" {
		return agents.NewRegistry(nil), nil
	}
	doc, err := os.ReadFile(cfg.AgentsFile)
	if err != nil {
		return nil, fmt.Errorf("agents: read %s: %w", cfg.AgentsFile, err)
	}
	list, err := agents.LoadAgents(doc)
	if err != nil {
		return nil, fmt.Errorf("agents: load %s: %w", cfg.AgentsFile, err)
	}
	return agents.NewRegistry(list), nil
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runAgentsShow(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	a, ok := reg.Resolve(args[0])
	if !ok {
		return fmt.Errorf("agents: no agent named %q", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "name: %s\ndescription: %s\nmax_turns: %d\ndefault_prompt: %s\n",
		a.Name, a.Description, a.MaxTurns, a.DefaultPrompt)
	return nil
}
