package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/callmesh/dialogrt/internal/agents"
	"github.com/callmesh/dialogrt/internal/callparse"
	"github.com/callmesh/dialogrt/internal/dispatch"
)

var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiEscapeRe.ReplaceAllString(s, "")
}

func TestTermReceiverRendersCall(t *testing.T) {
	var buf bytes.Buffer
	recv, err := NewTermReceiver(&buf, 80)
	if err != nil {
		t.Fatalf("NewTermReceiver: %v", err)
	}
	p := callparse.New(recv)
	if err := p.Consume("@reviewer please look\nchanges look good\n@/\n"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out := stripANSI(buf.String())
	for _, want := range []string{"@reviewer", "please look", "changes look good", "call "} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q, got: %q", want, out)
		}
	}
}

func TestTermReceiverRendersCodeBlock(t *testing.T) {
	var buf bytes.Buffer
	recv, err := NewTermReceiver(&buf, 80)
	if err != nil {
		t.Fatalf("NewTermReceiver: %v", err)
	}
	p := callparse.New(recv)
	if err := p.Consume("```go\nfmt.Println(\"hi\")\n```\n"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out := stripANSI(buf.String())
	if !strings.Contains(out, "fmt.Println") {
		t.Errorf("rendered output missing code content, got: %q", out)
	}
}

func TestTermReceiverReportsResolvedAgent(t *testing.T) {
	var buf bytes.Buffer
	recv, err := NewTermReceiver(&buf, 80)
	if err != nil {
		t.Fatalf("NewTermReceiver: %v", err)
	}
	reg := agents.NewRegistry([]agents.Agent{{Name: "reviewer", Description: "reviews diffs"}})
	router, err := dispatch.NewRouter(reg, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	recv.Router = router

	p := callparse.New(recv)
	if err := p.Consume("@reviewer take a look\nlgtm\n@/\n"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out := stripANSI(buf.String())
	if !strings.Contains(out, `routed to agent "reviewer"`) {
		t.Errorf("output missing routing outcome, got: %q", out)
	}
}

func TestTermReceiverReportsDeniedMention(t *testing.T) {
	var buf bytes.Buffer
	recv, err := NewTermReceiver(&buf, 80)
	if err != nil {
		t.Fatalf("NewTermReceiver: %v", err)
	}
	reg := agents.NewRegistry([]agents.Agent{{Name: "reviewer", Description: "reviews diffs"}})
	router, err := dispatch.NewRouter(reg, []string{"ops-*"})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	recv.Router = router

	p := callparse.New(recv)
	if err := p.Consume("@reviewer take a look\nlgtm\n@/\n"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out := stripANSI(buf.String())
	if !strings.Contains(out, "denied: @reviewer is not allow-listed") {
		t.Errorf("output missing denial outcome, got: %q", out)
	}
}
