package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	in, err := openInput([]string{path})
	if err != nil {
		t.Fatalf("openInput: %v", err)
	}
	defer in.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in); err != nil {
		t.Fatalf("read: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("content = %q, want %q", buf.String(), "hello\n")
	}
}

func TestOpenInputMissingFile(t *testing.T) {
	if _, err := openInput([]string{filepath.Join(t.TempDir(), "missing.txt")}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRenderWidthFallsBackWhenNotATerminal(t *testing.T) {
	// os.Stdout in a test binary is not a terminal, so term.GetSize fails
	// and the configured default should pass through untouched.
	if got := renderWidth(72); got != 72 {
		t.Errorf("renderWidth(72) = %d, want 72", got)
	}
}

func TestRunParseRendersTranscript(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(path, []byte("@reviewer take a look\nlgtm\n@/\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd := parseCmd
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := runParse(cmd, []string{path}); err != nil {
		t.Fatalf("runParse: %v", err)
	}
	if !strings.Contains(out.String(), "reviewer") {
		t.Errorf("output missing rendered mention, got: %q", out.String())
	}
}
