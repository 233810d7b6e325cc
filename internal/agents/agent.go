// Package agents provides named configuration bundles that a dispatcher
// resolves a call's first mention against.
package agents

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Agent is a named configuration bundle addressable by a call's first
// mention.
type Agent struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	MaxTurns      int    `yaml:"max_turns,omitempty"`
	DefaultPrompt string `yaml:"default_prompt,omitempty"`
}

// LoadAgents parses a YAML document containing a top-level `agents:` list.
func LoadAgents(doc []byte) ([]Agent, error) {
	var parsed struct {
		Agents []Agent `yaml:"agents"`
	}
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("agents: parse: %w", err)
	}
	return parsed.Agents, nil
}

// Registry resolves mention names to agents.
type Registry struct {
	byName map[string]*Agent
}

// NewRegistry builds a registry from a flat list of agents. A later entry
// with a duplicate name replaces an earlier one, so callers can layer a
// project-local list over a built-in one by concatenating built-ins first.
func NewRegistry(agentList []Agent) *Registry {
	r := &Registry{byName: make(map[string]*Agent, len(agentList))}
	for i := range agentList {
		a := agentList[i]
		r.byName[a.Name] = &a
	}
	return r
}

// Resolve looks up an agent by exact mention name.
func (r *Registry) Resolve(name string) (*Agent, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Names returns every registered agent name, sorted for stable display.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
