// Package interact tracks the tap/hover selection state machine and keeps
// the relationship tooltip anchored under pan and zoom.
//
// A Coordinator belongs to exactly one hosting view and is driven entirely
// from that view's event loop; it holds no locks and spawns no goroutines.
package interact

import (
	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/surface"
)

// State is the interaction state of the hosting view.
type State int

const (
	// StateIdle means nothing is selected or hovered.
	StateIdle State = iota
	// StateNodeSelected means a node holds the exclusive selection.
	StateNodeSelected
	// StateEdgeSelected means an edge holds the exclusive selection and
	// pins its tooltip open.
	StateEdgeSelected
	// StateEdgeHover means an edge tooltip is showing without any change
	// of selection (pointer-capable devices only).
	StateEdgeHover
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateNodeSelected:
		return "node-selected"
	case StateEdgeSelected:
		return "edge-selected"
	case StateEdgeHover:
		return "edge-hover"
	default:
		return "idle"
	}
}

// Tooltip describes the relationship tooltip for a tapped or hovered edge.
// The anchor lives in model space; project it through the camera on every
// pan/zoom event so the tooltip tracks its anchor.
type Tooltip struct {
	Anchor       scene.Point // model space
	EdgeID       string
	Relationship chain.RelationshipType
	FromLabel    string
	ToLabel      string
	Confidence   float64 // clamped to [0,100]
}

// RenderedAnchor projects the tooltip anchor into pixel space under the
// given camera.
func (t Tooltip) RenderedAnchor(cam surface.Camera) scene.Point {
	return cam.Project(t.Anchor)
}

// Callbacks are fired synchronously on taps, carrying the original domain
// objects rather than scene elements.
type Callbacks struct {
	OnNodeClick func(chain.Node)
	OnEdgeClick func(chain.Edge)
}

// Coordinator runs the selection/hover/tooltip state machine for one view.
type Coordinator struct {
	scene     *scene.Scene
	callbacks Callbacks

	state      State
	selectedID string
	tooltip    *Tooltip
}

// NewCoordinator creates a coordinator over the given scene.
func NewCoordinator(s *scene.Scene, cb Callbacks) *Coordinator {
	return &Coordinator{scene: s, callbacks: cb}
}

// State returns the current interaction state.
func (c *Coordinator) State() State { return c.state }

// SelectedID returns the namespaced id of the selected element, empty when
// idle or hovering.
func (c *Coordinator) SelectedID() string { return c.selectedID }

// Tooltip returns the open tooltip, nil if none.
func (c *Coordinator) Tooltip() *Tooltip { return c.tooltip }

// Reset clears all interaction state, e.g. when the displayed chain
// changes and the scene is rebuilt.
func (c *Coordinator) Reset(s *scene.Scene) {
	c.scene = s
	c.state = StateIdle
	c.selectedID = ""
	c.tooltip = nil
}

// TapNode gives the node the exclusive selection and fires OnNodeClick.
// Unknown ids are ignored.
func (c *Coordinator) TapNode(id string) {
	el, ok := c.scene.Node(id)
	if !ok {
		return
	}
	c.state = StateNodeSelected
	c.selectedID = id
	c.tooltip = nil
	if c.callbacks.OnNodeClick != nil {
		c.callbacks.OnNodeClick(el.Node)
	}
}

// TapEdge gives the edge the exclusive selection, opens its tooltip
// anchored at the tap point (model space), and fires OnEdgeClick.
// Unknown ids are ignored.
func (c *Coordinator) TapEdge(id string, at scene.Point) {
	el, ok := c.scene.Edge(id)
	if !ok {
		return
	}
	c.state = StateEdgeSelected
	c.selectedID = id
	c.tooltip = c.tooltipFor(el, at)
	if c.callbacks.OnEdgeClick != nil {
		c.callbacks.OnEdgeClick(el.Edge)
	}
}

// HoverEdge opens the edge tooltip anchored at the edge midpoint without
// changing the selection. A pinned edge-selected tooltip is left alone.
func (c *Coordinator) HoverEdge(id string, midpoint scene.Point) {
	if c.state == StateEdgeSelected {
		return
	}
	el, ok := c.scene.Edge(id)
	if !ok {
		return
	}
	c.state = StateEdgeHover
	c.tooltip = c.tooltipFor(el, midpoint)
}

// LeaveEdge clears a hover tooltip. Selections are unaffected.
func (c *Coordinator) LeaveEdge() {
	if c.state != StateEdgeHover {
		return
	}
	c.tooltip = nil
	if c.selectedID != "" {
		c.state = StateNodeSelected
	} else {
		c.state = StateIdle
	}
}

// TapCanvas clears the selection and any tooltip.
func (c *Coordinator) TapCanvas() {
	c.state = StateIdle
	c.selectedID = ""
	c.tooltip = nil
}

func (c *Coordinator) tooltipFor(el scene.EdgeElement, anchor scene.Point) *Tooltip {
	t := &Tooltip{
		Anchor:       anchor,
		EdgeID:       el.ID,
		Relationship: el.Edge.Type,
		Confidence:   chain.ClampConfidence(el.Edge.Confidence),
	}
	if from, ok := c.scene.Node(el.From); ok {
		t.FromLabel = from.Node.DisplayLabel()
	}
	if to, ok := c.scene.Node(el.To); ok {
		t.ToLabel = to.Node.DisplayLabel()
	}
	return t
}

// Midpoint returns the model-space midpoint of an edge under the given
// positions, the hover anchor for pointer devices.
func Midpoint(el scene.EdgeElement, pos map[string]scene.Point) (scene.Point, bool) {
	from, okF := pos[el.From]
	to, okT := pos[el.To]
	if !okF || !okT {
		return scene.Point{}, false
	}
	return scene.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}, true
}
