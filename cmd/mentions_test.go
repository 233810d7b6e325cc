package cmd

import (
	"bytes"
	"testing"
)

func TestRunMentionsListsEachMention(t *testing.T) {
	dir := t.TempDir()
	cmd := mentionsCmd
	var out bytes.Buffer
	cmd.SetOut(&out)

	path := writeTempFile(t, dir, "transcript.txt", "@alice do it\n@bob\nwork\n@/\n")
	if err := runMentions(cmd, []string{path}); err != nil {
		t.Fatalf("runMentions: %v", err)
	}

	got := out.String()
	for _, want := range []string{"alice", "bob"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("output %q missing mention %q", got, want)
		}
	}
}
