package agents

import "testing"

func TestLoadAgents(t *testing.T) {
	doc := []byte(`
agents:
  - name: reviewer
    description: "Reviews diffs"
    max_turns: 4
    default_prompt: "review the diff"
  - name: scribe
    description: "Writes notes"
`)
	list, err := LoadAgents(doc)
	if err != nil {
		t.Fatalf("LoadAgents: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(list))
	}
	if list[0].Name != "reviewer" || list[0].MaxTurns != 4 {
		t.Errorf("unexpected first agent: %+v", list[0])
	}
	if list[1].Name != "scribe" || list[1].MaxTurns != 0 {
		t.Errorf("unexpected second agent: %+v", list[1])
	}
}

func TestLoadAgentsMalformed(t *testing.T) {
	if _, err := LoadAgents([]byte("agents: [this is not a list of agents: :")); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestRegistryResolveAndNames(t *testing.T) {
	r := NewRegistry([]Agent{
		{Name: "reviewer", Description: "Reviews diffs"},
		{Name: "scribe", Description: "Writes notes"},
	})

	if _, ok := r.Resolve("missing"); ok {
		t.Error("Resolve(missing) should report not found")
	}
	a, ok := r.Resolve("reviewer")
	if !ok || a.Description != "Reviews diffs" {
		t.Errorf("Resolve(reviewer) = %+v, %v", a, ok)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "reviewer" || names[1] != "scribe" {
		t.Errorf("Names() = %v, want sorted [reviewer scribe]", names)
	}
}

func TestRegistryLaterDuplicateWins(t *testing.T) {
	r := NewRegistry([]Agent{
		{Name: "reviewer", Description: "built-in"},
		{Name: "reviewer", Description: "project override"},
	})
	a, ok := r.Resolve("reviewer")
	if !ok || a.Description != "project override" {
		t.Errorf("expected the later entry to win, got %+v", a)
	}
}
