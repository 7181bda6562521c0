// Package layout assigns 2D model-space coordinates to scene elements.
//
// Two interchangeable strategies are provided:
//
//   - [ForceEngine] (default): force-directed simulation that optimizes for
//     organic clustering of related entities.
//   - [LayeredEngine]: rank-based hierarchical layout via Graphviz, useful
//     when relationships are temporally or causally ordered.
//
// The [Orchestrator] wraps a strategy and, on the discrete layout-stop
// event, runs the overlap resolver ([Separate]) and fits the viewport to
// content. Layouts can run to convergence in one call or be advanced frame
// by frame through [Animation] so hosts can animate settling.
//
// Positions are ephemeral view state. They are never written back into the
// domain entities.
package layout

import (
	"context"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// Strategy names accepted by configuration.
const (
	StrategyForce   = "force"
	StrategyLayered = "layered"
)

// Positions maps namespaced element ids to model-space coordinates.
type Positions map[string]scene.Point

// Clone returns an independent copy of the position map.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for id, pt := range p {
		out[id] = pt
	}
	return out
}

// Bounds computes the bounding box of all positions.
// The second return value is false for an empty map.
func (p Positions) Bounds() (scene.Rect, bool) {
	pts := make([]scene.Point, 0, len(p))
	for _, pt := range p {
		pts = append(pts, pt)
	}
	return scene.BoundsOf(pts)
}

// BoundsOf computes the bounding box of the listed elements only.
// Ids without a position are ignored.
func (p Positions) BoundsOf(ids []string) (scene.Rect, bool) {
	pts := make([]scene.Point, 0, len(ids))
	for _, id := range ids {
		if pt, ok := p[id]; ok {
			pts = append(pts, pt)
		}
	}
	return scene.BoundsOf(pts)
}

// Engine computes positions for every node element of a scene.
//
// Engines are not required to be deterministic bit-for-bit when their
// randomization is enabled, but must be repeatable in structure when it is
// disabled.
type Engine interface {
	// Name returns the strategy name ("force" or "layered").
	Name() string

	// Compute runs the layout to convergence. It honors ctx cancellation
	// between iterations and returns a position for every node element.
	Compute(ctx context.Context, s *scene.Scene) (Positions, error)
}

// Stepper is implemented by engines whose layout can be advanced one frame
// at a time, letting a host time-slice convergence across its own
// animation loop.
type Stepper interface {
	Start(s *scene.Scene) Animation
}

// Animation is an in-flight, frame-sliced layout run.
type Animation interface {
	// Step advances one frame and reports whether the layout is still
	// settling. Once it returns false further calls are no-ops.
	Step() bool

	// Positions returns a snapshot of the current coordinates.
	Positions() Positions
}
