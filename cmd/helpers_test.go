package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/callmesh/dialogrt/internal/callparse"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// parseCallsFor runs the grammar over input with a no-op receiver and
// returns the calls it collected, for tests that need a call's
// content-addressed id without re-deriving it by hand.
func parseCallsFor(t *testing.T, input string) []callparse.Call {
	t.Helper()
	p := callparse.New(callparse.NopReceiver{})
	if err := p.Consume(input); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return p.CollectedCalls()
}
