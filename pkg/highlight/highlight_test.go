package highlight

import (
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

func fraudScene() *scene.Scene {
	return scene.Build(chain.Chain{
		ID: "chain-1",
		Nodes: []chain.Node{
			{ID: "n1", Type: chain.NodeTip, Label: "Insider tip on ACME", ReferenceID: "TIP-001"},
			{ID: "n2", Type: chain.NodeStock, Label: "ACME Corp", ReferenceID: "ACME"},
			{ID: "n3", Type: chain.NodeAdvisor, Label: "J. Doe Advisory", ReferenceID: "ADV-17",
				Meta: chain.Metadata{"region": "southwest"}},
			{ID: "n4", Type: chain.NodeDocument, Label: "Quarterly filing", ReferenceID: "DOC-9"},
		},
		Edges: []chain.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: chain.RelMentions},
			{ID: "e2", From: "n3", To: "n2", Type: chain.RelInvolves},
		},
	})
}

func TestApplyQueryMatchesFields(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		matched []string
	}{
		{"label substring", "acme", []string{"n1", "n2"}},
		{"node type", "advisor", []string{"n3"}},
		{"reference id", "doc-9", []string{"n4"}},
		{"metadata value", "southwest", []string{"n3"}},
		{"no hits", "zzz-nothing", nil},
	}

	s := fraudScene()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(s, Criteria{Query: tt.query})

			if len(res.MatchedIDs) != len(tt.matched) {
				t.Fatalf("MatchedIDs = %v, want %v", res.MatchedIDs, tt.matched)
			}
			for i, id := range tt.matched {
				if res.MatchedIDs[i] != id {
					t.Errorf("MatchedIDs[%d] = %q, want %q", i, res.MatchedIDs[i], id)
				}
			}
			for _, n := range s.Nodes() {
				want := StateDimmed
				for _, id := range tt.matched {
					if n.ID == id {
						want = StateMatched
					}
				}
				if got := res.State(n.ID); got != want {
					t.Errorf("query %q: state(%s) = %v, want %v", tt.query, n.ID, got, want)
				}
			}
		})
	}
}

func TestApplyAllowListPrecedence(t *testing.T) {
	s := fraudScene()

	// The query alone would match n1 and n2; the allow-list wins.
	res := Apply(s, Criteria{Query: "acme", AllowIDs: []string{"adv-17"}})

	if len(res.MatchedIDs) != 1 || res.MatchedIDs[0] != "n3" {
		t.Fatalf("MatchedIDs = %v, want [n3]", res.MatchedIDs)
	}
	if res.State("n1") != StateDimmed || res.State("n2") != StateDimmed {
		t.Error("query matches must be dimmed when allow-list is present")
	}
}

func TestApplyAllowListCaseInsensitive(t *testing.T) {
	res := Apply(fraudScene(), Criteria{AllowIDs: []string{"TIP-001", "Doc-9"}})

	want := []string{"n1", "n4"}
	if len(res.MatchedIDs) != len(want) {
		t.Fatalf("MatchedIDs = %v, want %v", res.MatchedIDs, want)
	}
	for i, id := range want {
		if res.MatchedIDs[i] != id {
			t.Errorf("MatchedIDs[%d] = %q, want %q", i, res.MatchedIDs[i], id)
		}
	}
}

func TestApplyEmptyCriteriaClears(t *testing.T) {
	s := fraudScene()
	res := Apply(s, Criteria{})

	if res.HasMatches() {
		t.Errorf("HasMatches() = true for empty criteria")
	}
	if res.Active {
		t.Error("Active = true for empty criteria")
	}
	for _, n := range s.Nodes() {
		if got := res.State(n.ID); got != StateNone {
			t.Errorf("state(%s) = %v, want StateNone", n.ID, got)
		}
	}
}

func TestApplyZeroMatchesDimsAll(t *testing.T) {
	s := fraudScene()
	res := Apply(s, Criteria{Query: "no-such-thing"})

	if res.HasMatches() {
		t.Error("HasMatches() = true, want false")
	}
	if !res.Active {
		t.Error("Active = false, want true for non-empty criteria")
	}
	for _, n := range s.Nodes() {
		if got := res.State(n.ID); got != StateDimmed {
			t.Errorf("state(%s) = %v, want StateDimmed", n.ID, got)
		}
	}
}

func TestResultStateUnknownID(t *testing.T) {
	res := Apply(fraudScene(), Criteria{Query: "acme"})
	if got := res.State("missing"); got != StateNone {
		t.Errorf("state(missing) = %v, want StateNone", got)
	}
}

func TestFocusTarget(t *testing.T) {
	res := Apply(fraudScene(), Criteria{Query: "acme"})

	pos := map[string]scene.Point{
		"n1": {X: -10, Y: 5},
		"n2": {X: 40, Y: -20},
		"n3": {X: 500, Y: 500}, // dimmed, must not widen the target
	}
	rect, ok := res.FocusTarget(pos)
	if !ok {
		t.Fatal("FocusTarget ok = false, want true")
	}
	want := scene.Rect{MinX: -10, MinY: -20, MaxX: 40, MaxY: 5}
	if rect != want {
		t.Errorf("FocusTarget = %+v, want %+v", rect, want)
	}
}

func TestFocusTargetNoPositions(t *testing.T) {
	res := Apply(fraudScene(), Criteria{Query: "acme"})
	if _, ok := res.FocusTarget(nil); ok {
		t.Error("FocusTarget ok = true with no positions, want false")
	}
}

func TestCriteriaEmpty(t *testing.T) {
	if !(Criteria{}).Empty() {
		t.Error("zero criteria should be empty")
	}
	if (Criteria{Query: "x"}).Empty() {
		t.Error("query criteria should not be empty")
	}
	if (Criteria{AllowIDs: []string{"a"}}).Empty() {
		t.Error("allow-list criteria should not be empty")
	}
}
