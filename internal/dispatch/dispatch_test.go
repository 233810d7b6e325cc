package dispatch

import (
	"testing"

	"github.com/callmesh/dialogrt/internal/agents"
	"github.com/callmesh/dialogrt/internal/callparse"
)

func newTestRouter(t *testing.T, allow []string) *Router {
	t.Helper()
	reg := agents.NewRegistry([]agents.Agent{
		{Name: "reviewer", Description: "Reviews diffs"},
		{Name: "scribe", Description: "Writes notes"},
	})
	r, err := NewRouter(reg, allow)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func TestRouteResolvesRegisteredAgent(t *testing.T) {
	r := newTestRouter(t, nil)
	d := r.Route(callparse.Call{FirstMention: "reviewer"})
	if !d.Allowed || d.Agent == nil || d.Agent.Name != "reviewer" {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestRouteSuggestsClosestOnUnknownMention(t *testing.T) {
	r := newTestRouter(t, nil)
	d := r.Route(callparse.Call{FirstMention: "reviewerr"})
	if d.Agent != nil {
		t.Errorf("expected no agent resolved, got %+v", d.Agent)
	}
	if d.Suggestion != "reviewer" {
		t.Errorf("Suggestion = %q, want reviewer", d.Suggestion)
	}
}

func TestRouteDeniesUnallowedMention(t *testing.T) {
	r := newTestRouter(t, []string{"rev-*"})
	d := r.Route(callparse.Call{FirstMention: "scribe"})
	if d.Allowed {
		t.Errorf("expected scribe to be denied by allow-list, got %+v", d)
	}
}

func TestRouteAllowsGlobMatch(t *testing.T) {
	r := newTestRouter(t, []string{"rev*"})
	d := r.Route(callparse.Call{FirstMention: "reviewer"})
	if !d.Allowed || d.Agent == nil {
		t.Errorf("expected reviewer to be allowed and resolved, got %+v", d)
	}
}
