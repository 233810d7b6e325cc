// Package dispatch routes finalized calls to a resolved agent, the way the
// teacher's spawn_agent tool resolves an "@agent-name: prompt" line to a
// registry entry, except here the mention and headline arrive pre-parsed
// from callparse instead of being sliced out of a raw string by hand.
package dispatch

import (
	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"

	"github.com/callmesh/dialogrt/internal/agents"
	"github.com/callmesh/dialogrt/internal/callparse"
)

// Decision is the outcome of routing one call.
type Decision struct {
	Call       callparse.Call
	Agent      *agents.Agent
	Allowed    bool
	Suggestion string
}

// Router resolves a call's mention against a registry, subject to a glob
// allow-list of mention patterns an operator has authorized.
type Router struct {
	registry *agents.Registry
	allow    []glob.Glob
}

// NewRouter builds a router. allowPatterns are glob patterns (e.g. "ops-*")
// matched against a mention name; a nil or empty list allows every
// registered agent.
func NewRouter(registry *agents.Registry, allowPatterns []string) (*Router, error) {
	r := &Router{registry: registry}
	for _, pat := range allowPatterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, err
		}
		r.allow = append(r.allow, g)
	}
	return r, nil
}

func (r *Router) allowed(mention string) bool {
	if len(r.allow) == 0 {
		return true
	}
	for _, g := range r.allow {
		if g.Match(mention) {
			return true
		}
	}
	return false
}

type nameSource []string

func (s nameSource) String(i int) string { return s[i] }
func (s nameSource) Len() int            { return len(s) }

// Route resolves call.FirstMention to a registered agent. When the mention
// is not allowed or not found, Decision.Agent is nil and Suggestion names
// the closest registered agent name by fuzzy match, or is empty when no
// registered name matches in either direction.
func (r *Router) Route(call callparse.Call) Decision {
	d := Decision{Call: call}

	if !r.allowed(call.FirstMention) {
		d.Allowed = false
		d.Suggestion = r.closest(call.FirstMention)
		return d
	}
	d.Allowed = true

	agent, ok := r.registry.Resolve(call.FirstMention)
	if ok {
		d.Agent = agent
		return d
	}
	d.Suggestion = r.closest(call.FirstMention)
	return d
}

func (r *Router) closest(mention string) string {
	names := r.registry.Names()
	if len(names) == 0 {
		return ""
	}
	matches := fuzzy.Find(mention, nameSource(names))
	if len(matches) > 0 {
		return matches[0].Str
	}
	// A mention with extra characters (e.g. "reviewerr") never matches as a
	// pattern; fall back to the best name that fits inside the mention.
	best, bestScore := "", 0
	for _, n := range names {
		if m := fuzzy.Find(n, []string{mention}); len(m) > 0 && (best == "" || m[0].Score > bestScore) {
			best, bestScore = n, m[0].Score
		}
	}
	return best
}
