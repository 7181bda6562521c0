package scene

import (
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/chain"
)

func singleChain() chain.Chain {
	return chain.Chain{
		ID: "chain-1",
		Nodes: []chain.Node{
			{ID: "n1", Type: chain.NodeTip},
			{ID: "n2", Type: chain.NodeAssessment},
		},
		Edges: []chain.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: chain.RelLeadsTo},
		},
	}
}

func TestBuildSingleChainKeepsRawIDs(t *testing.T) {
	s := Build(singleChain())

	if s.NodeCount() != 2 || s.EdgeCount() != 1 {
		t.Fatalf("counts = %d nodes, %d edges", s.NodeCount(), s.EdgeCount())
	}
	if _, ok := s.Node("n1"); !ok {
		t.Error("single-chain scene should keep raw node ids")
	}
	if s.ChainID() != "chain-1" {
		t.Errorf("ChainID() = %q", s.ChainID())
	}

	e := s.Edges()[0]
	if e.From != "n1" || e.To != "n2" {
		t.Errorf("edge endpoints = %q → %q", e.From, e.To)
	}
}

func TestBuildNamespacesMergedChains(t *testing.T) {
	a := chain.Chain{
		ID:    "chainA",
		Nodes: []chain.Node{{ID: "n1", Type: chain.NodeTip}},
	}
	b := chain.Chain{
		ID:    "chainB",
		Nodes: []chain.Node{{ID: "n1", Type: chain.NodeStock}},
	}

	s := Build(a, b)

	if s.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2 distinct elements", s.NodeCount())
	}
	na, ok := s.Node("chainA:n1")
	if !ok || na.Node.Type != chain.NodeTip {
		t.Errorf("chainA:n1 = %+v, %v", na, ok)
	}
	nb, ok := s.Node("chainB:n1")
	if !ok || nb.Node.Type != chain.NodeStock {
		t.Errorf("chainB:n1 = %+v, %v", nb, ok)
	}
	if _, ok := s.Node("n1"); ok {
		t.Error("merged scene should not expose raw ids")
	}
}

func TestBuildDropsDanglingEdges(t *testing.T) {
	c := singleChain()
	c.Edges = append(c.Edges,
		chain.Edge{ID: "e2", From: "n1", To: "ghost"},
		chain.Edge{ID: "e3", From: "ghost", To: "n2"},
	)

	s := Build(c)
	if s.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, dangling edges should be dropped", s.EdgeCount())
	}
}

func TestBuildKeepsFirstDuplicate(t *testing.T) {
	c := chain.Chain{
		ID: "chain-1",
		Nodes: []chain.Node{
			{ID: "n1", Label: "first"},
			{ID: "n1", Label: "second"},
		},
	}

	s := Build(c)
	if s.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d", s.NodeCount())
	}
	el, _ := s.Node("n1")
	if el.Node.Label != "first" {
		t.Errorf("duplicate id should keep the first occurrence, got %q", el.Node.Label)
	}
}

func TestBuildCopiesStoredPositions(t *testing.T) {
	c := singleChain()
	c.Nodes[0].Position = &chain.Position{X: 10, Y: 20}

	s := Build(c)
	el, _ := s.Node("n1")
	if el.Position == nil || el.Position.X != 10 || el.Position.Y != 20 {
		t.Errorf("Position = %+v, want stored coordinate", el.Position)
	}
	other, _ := s.Node("n2")
	if other.Position != nil {
		t.Error("unpositioned node should carry nil")
	}
}

func TestRect(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 20}

	if r.Width() != 10 || r.Height() != 20 {
		t.Errorf("size = %v x %v", r.Width(), r.Height())
	}
	if c := r.Center(); c.X != 5 || c.Y != 10 {
		t.Errorf("Center() = %+v", c)
	}
	if !r.Contains(Point{X: 10, Y: 20}) {
		t.Error("Contains should be inclusive at the max corner")
	}
	if r.Contains(Point{X: 11, Y: 5}) {
		t.Error("Contains should reject outside points")
	}

	e := r.Expand(5)
	if e.MinX != -5 || e.MaxY != 25 {
		t.Errorf("Expand(5) = %+v", e)
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Error("BoundsOf(nil) should report empty")
	}

	r, ok := BoundsOf([]Point{{X: 1, Y: 5}, {X: -3, Y: 2}, {X: 4, Y: 0}})
	if !ok {
		t.Fatal("BoundsOf returned empty")
	}
	want := Rect{MinX: -3, MinY: 0, MaxX: 4, MaxY: 5}
	if r != want {
		t.Errorf("BoundsOf = %+v, want %+v", r, want)
	}
}
