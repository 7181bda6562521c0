// Package highlight computes matched/dimmed visual state for scene nodes
// from a free-text query or an explicit reference-id allow-list.
//
// Highlighting is a pure function of the criteria: every Apply starts from
// a clean slate, so stale state can never accumulate across query changes.
// Non-matching nodes are dimmed, never hidden — edges among dimmed nodes
// stay visible at reduced opacity (the styling layer enforces this).
package highlight

import (
	"encoding/json"
	"strings"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// State is the visual highlight state of one node element.
type State int

const (
	// StateNone means no highlighting is active at all.
	StateNone State = iota
	// StateMatched marks a node hit by the criteria (accent border/glow).
	StateMatched
	// StateDimmed marks the complement of the match set (reduced opacity).
	StateDimmed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateMatched:
		return "matched"
	case StateDimmed:
		return "dimmed"
	default:
		return "none"
	}
}

// Criteria selects the nodes to highlight.
//
// The two modes are mutually exclusive: a non-empty AllowIDs takes
// precedence over Query when both are supplied.
type Criteria struct {
	// Query is a case-insensitive free-text substring matched against each
	// node's label, type, reference id, and flattened metadata JSON.
	Query string
	// AllowIDs is a case-insensitive exact-match set of reference ids,
	// used when a prior backend search already identified the matches.
	AllowIDs []string
	// Focus requests that the viewport move to the matched nodes.
	Focus bool
}

// Empty reports whether the criteria select nothing, which clears all
// highlighting rather than dimming everything.
func (c Criteria) Empty() bool {
	return c.Query == "" && len(c.AllowIDs) == 0
}

// Result is the outcome of one highlight computation.
type Result struct {
	// States holds the state of every node element, keyed by element id.
	States map[string]State
	// MatchedIDs lists matched element ids in scene order.
	MatchedIDs []string
	// Active reports whether non-empty criteria were applied. It stays true
	// even when nothing matched, so renderers dim consistently in the
	// everything-dimmed state.
	Active bool
}

// State returns the state for an element id, StateNone if unknown.
func (r Result) State(id string) State { return r.States[id] }

// HasMatches reports whether any node matched.
func (r Result) HasMatches() bool { return len(r.MatchedIDs) > 0 }

// FocusTarget returns the bounding box of the matched nodes under the given
// positions. It returns false when nothing matched or nothing is positioned
// yet, in which case the viewport stays put.
func (r Result) FocusTarget(pos map[string]scene.Point) (scene.Rect, bool) {
	pts := make([]scene.Point, 0, len(r.MatchedIDs))
	for _, id := range r.MatchedIDs {
		if p, ok := pos[id]; ok {
			pts = append(pts, p)
		}
	}
	return scene.BoundsOf(pts)
}

// Apply computes the highlight state of every node in the scene.
//
// Matching nothing is a valid state: every node is dimmed. Empty criteria
// clear all highlighting instead.
func Apply(s *scene.Scene, c Criteria) Result {
	res := Result{States: make(map[string]State, s.NodeCount())}

	if c.Empty() {
		for _, n := range s.Nodes() {
			res.States[n.ID] = StateNone
		}
		return res
	}
	res.Active = true

	match := matcherFor(c)
	for _, n := range s.Nodes() {
		if match(n) {
			res.States[n.ID] = StateMatched
			res.MatchedIDs = append(res.MatchedIDs, n.ID)
		} else {
			res.States[n.ID] = StateDimmed
		}
	}
	return res
}

func matcherFor(c Criteria) func(scene.NodeElement) bool {
	if len(c.AllowIDs) > 0 {
		allowed := make(map[string]bool, len(c.AllowIDs))
		for _, id := range c.AllowIDs {
			allowed[strings.ToLower(id)] = true
		}
		return func(n scene.NodeElement) bool {
			return allowed[strings.ToLower(n.Node.ReferenceID)]
		}
	}

	q := strings.ToLower(c.Query)
	return func(n scene.NodeElement) bool {
		if strings.Contains(strings.ToLower(n.Node.Label), q) {
			return true
		}
		if strings.Contains(strings.ToLower(string(n.Node.Type)), q) {
			return true
		}
		if strings.Contains(strings.ToLower(n.Node.ReferenceID), q) {
			return true
		}
		return strings.Contains(flattenMeta(n.Node.Meta), q)
	}
}

// flattenMeta stringifies metadata (nested reference_data included) for
// substring search. Marshal failures degrade to no metadata match.
func flattenMeta(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(data))
}
