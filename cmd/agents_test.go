package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadRegistryNoAgentsFileIsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	if len(reg.Names()) != 0 {
		t.Errorf("expected an empty registry, got %v", reg.Names())
	}
}

func TestLoadRegistryFromAgentsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	agentsPath := writeTempFile(t, dir, "agents.yaml", "agents:\n  - name: reviewer\n    description: reviews diffs\n")
	t.Setenv("DIALOGRT_AGENTS_FILE", agentsPath)

	reg, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	if _, ok := reg.Resolve("reviewer"); !ok {
		t.Errorf("expected reviewer to be registered, got %v", reg.Names())
	}
}

func TestRunAgentsListAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	agentsPath := writeTempFile(t, dir, "agents.yaml", "agents:\n  - name: scribe\n    description: writes notes\n    max_turns: 2\n")
	t.Setenv("DIALOGRT_AGENTS_FILE", agentsPath)

	var listOut bytes.Buffer
	agentsListCmd.SetOut(&listOut)
	if err := runAgentsList(agentsListCmd, nil); err != nil {
		t.Fatalf("runAgentsList: %v", err)
	}
	if strings.TrimSpace(listOut.String()) != "scribe" {
		t.Errorf("list output = %q, want scribe", listOut.String())
	}

	var showOut bytes.Buffer
	agentsShowCmd.SetOut(&showOut)
	if err := runAgentsShow(agentsShowCmd, []string{"scribe"}); err != nil {
		t.Fatalf("runAgentsShow: %v", err)
	}
	if !strings.Contains(showOut.String(), "max_turns: 2") {
		t.Errorf("show output missing max_turns, got: %q", showOut.String())
	}
}

func TestRunAgentsShowUnknownName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := runAgentsShow(agentsShowCmd, []string{"nobody"}); err == nil {
		t.Fatal("expected an error for an unregistered agent name")
	}
}
