package scene

import (
	"fmt"

	"github.com/Rishikoli/chaingraph/pkg/chain"
)

// Point is a 2D coordinate in model space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box in model space.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{MinX: r.MinX - pad, MinY: r.MinY - pad, MaxX: r.MaxX + pad, MaxY: r.MaxY + pad}
}

// Contains reports whether the point lies inside the rectangle (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// BoundsOf computes the bounding box of a point set.
// The second return value is false for an empty set.
func BoundsOf(pts []Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r.MinX = min(r.MinX, p.X)
		r.MinY = min(r.MinY, p.Y)
		r.MaxX = max(r.MaxX, p.X)
		r.MaxY = max(r.MaxY, p.Y)
	}
	return r, true
}

// =============================================================================
// Elements
// =============================================================================

// NodeElement is a visual vertex backed by one domain node.
type NodeElement struct {
	ID       string     // Namespaced element id
	ChainID  string     // Owning chain
	Node     chain.Node // Original domain object (for callbacks)
	Position *Point     // Seed position from stored coordinates, nil if unpositioned
}

// EdgeElement is a directed visual connection backed by one domain edge.
// From and To are namespaced element ids resolved within the same scene.
type EdgeElement struct {
	ID      string
	ChainID string
	From    string
	To      string
	Edge    chain.Edge // Original domain object (for callbacks)
}

// Scene is the flat, namespaced element list for one rendered view.
// It is immutable after Build; rebuilding from fresh chains is the only
// way to change it.
type Scene struct {
	nodes   []NodeElement
	edges   []EdgeElement
	byID    map[string]int // element id -> index into nodes
	chainID string         // id of the first chain, used for export filenames
}

// Build converts one or more chains into a Scene.
//
// Build is pure and has no failure mode beyond silently excluding edges
// whose endpoints do not resolve after namespacing.
func Build(chains ...chain.Chain) *Scene {
	s := &Scene{byID: make(map[string]int)}
	namespaced := len(chains) > 1

	for _, c := range chains {
		if s.chainID == "" {
			s.chainID = c.ID
		}
		for _, n := range c.Nodes {
			el := NodeElement{
				ID:      elementID(namespaced, c.ID, n.ID),
				ChainID: c.ID,
				Node:    n,
			}
			if n.Position != nil {
				el.Position = &Point{X: n.Position.X, Y: n.Position.Y}
			}
			if _, dup := s.byID[el.ID]; dup {
				continue // duplicate ids within one id-space keep the first occurrence
			}
			s.byID[el.ID] = len(s.nodes)
			s.nodes = append(s.nodes, el)
		}
	}

	for _, c := range chains {
		for _, e := range c.Edges {
			from := elementID(namespaced, c.ID, e.From)
			to := elementID(namespaced, c.ID, e.To)
			if _, ok := s.byID[from]; !ok {
				continue // dangling edge, dropped
			}
			if _, ok := s.byID[to]; !ok {
				continue
			}
			s.edges = append(s.edges, EdgeElement{
				ID:      elementID(namespaced, c.ID, e.ID),
				ChainID: c.ID,
				From:    from,
				To:      to,
				Edge:    e,
			})
		}
	}

	return s
}

func elementID(namespaced bool, chainID, rawID string) string {
	if !namespaced {
		return rawID
	}
	return fmt.Sprintf("%s:%s", chainID, rawID)
}

// Nodes returns all node elements. The returned slice must not be modified.
func (s *Scene) Nodes() []NodeElement { return s.nodes }

// Edges returns all edge elements. The returned slice must not be modified.
func (s *Scene) Edges() []EdgeElement { return s.edges }

// NodeCount returns the number of node elements.
func (s *Scene) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edge elements.
func (s *Scene) EdgeCount() int { return len(s.edges) }

// Node returns the node element with the given namespaced id.
func (s *Scene) Node(id string) (NodeElement, bool) {
	i, ok := s.byID[id]
	if !ok {
		return NodeElement{}, false
	}
	return s.nodes[i], true
}

// Edge returns the edge element with the given namespaced id.
func (s *Scene) Edge(id string) (EdgeElement, bool) {
	for _, e := range s.edges {
		if e.ID == id {
			return e, true
		}
	}
	return EdgeElement{}, false
}

// ChainID returns the id of the first chain in the scene.
// Raster export derives its filename from it.
func (s *Scene) ChainID() string { return s.chainID }

// NodeIDs returns the namespaced ids of all node elements in scene order.
func (s *Scene) NodeIDs() []string {
	ids := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	return ids
}
