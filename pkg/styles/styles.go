// Package styles maps element attributes to visual style records.
//
// Styling is a pure per-paint computation: no mutable stylesheet, no
// rendering-library types. Both the SVG and PNG sinks call [NodeStyle] and
// [EdgeStyle] on every paint, so the mapping is unit-testable in isolation
// from any surface.
package styles

import (
	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
)

// StyleRecord is a resolved visual style for one element.
// Colors are CSS hex strings shared by the SVG and raster sinks.
type StyleRecord struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64 // [0,1]
	Radius      float64 // node circle radius, 0 for edges
	Glow        bool    // accent halo for matched nodes
	LabelColor  string
}

// NodeAttrs carries everything node styling depends on.
type NodeAttrs struct {
	Type      chain.NodeType
	Highlight highlight.State
	Selected  bool
}

// EdgeAttrs carries everything edge styling depends on.
type EdgeAttrs struct {
	Type       chain.RelationshipType
	Confidence float64 // raw; clamped here for width/opacity mapping
	Dimmed     bool    // both endpoints outside the highlight match set
	Selected   bool
}

// Palette constants. One accent per node type; unknown types fall back to
// neutral instead of erroring.
const (
	colorTip        = "#f59e0b"
	colorAssessment = "#8b5cf6"
	colorDocument   = "#3b82f6"
	colorStock      = "#10b981"
	colorComplaint  = "#ef4444"
	colorAdvisor    = "#14b8a6"
	colorNeutral    = "#9ca3af"

	colorEdge     = "#64748b"
	colorAccent   = "#facc15"
	colorSelected = "#0ea5e9"
	colorLabel    = "#1f2937"

	// BackgroundColor is the fixed export background.
	BackgroundColor = "#ffffff"
)

// DefaultNodeRadius is the base node circle radius in model units.
const DefaultNodeRadius = 18.0

const dimmedOpacity = 0.25

// NodeFill returns the accent color for a node type, neutral for unknown
// values.
func NodeFill(t chain.NodeType) string {
	switch t {
	case chain.NodeTip:
		return colorTip
	case chain.NodeAssessment:
		return colorAssessment
	case chain.NodeDocument:
		return colorDocument
	case chain.NodeStock:
		return colorStock
	case chain.NodeComplaint:
		return colorComplaint
	case chain.NodeAdvisor:
		return colorAdvisor
	default:
		return colorNeutral
	}
}

// NodeStyle computes the style for one node element.
func NodeStyle(a NodeAttrs) StyleRecord {
	rec := StyleRecord{
		Fill:        NodeFill(a.Type),
		Stroke:      "#ffffff",
		StrokeWidth: 2,
		Opacity:     1,
		Radius:      DefaultNodeRadius,
		LabelColor:  colorLabel,
	}

	switch a.Highlight {
	case highlight.StateMatched:
		rec.Stroke = colorAccent
		rec.StrokeWidth = 4
		rec.Glow = true
	case highlight.StateDimmed:
		rec.Opacity = dimmedOpacity
	}

	if a.Selected {
		rec.Stroke = colorSelected
		rec.StrokeWidth = 4
	}
	return rec
}

// EdgeStyle computes the style for one edge element. Width and opacity
// scale with the clamped confidence; dimmed edges stay visible at reduced
// opacity, never hidden.
func EdgeStyle(a EdgeAttrs) StyleRecord {
	conf := chain.ClampConfidence(a.Confidence) / chain.MaxConfidence
	rec := StyleRecord{
		Stroke:      colorEdge,
		StrokeWidth: 1 + 3*conf,
		Opacity:     0.35 + 0.65*conf,
		LabelColor:  colorLabel,
	}
	if a.Type == chain.RelSimilarPattern {
		rec.Stroke = colorNeutral // pattern similarity reads as a softer link
	}
	if a.Dimmed {
		rec.Opacity *= dimmedOpacity
	}
	if a.Selected {
		rec.Stroke = colorSelected
		rec.StrokeWidth += 1.5
	}
	return rec
}
