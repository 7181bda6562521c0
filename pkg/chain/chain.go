package chain

import (
	"time"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType categorizes the domain entity a node represents.
type NodeType string

// Node types recognized by the styling and highlight layers.
// Unknown values are valid and rendered with a neutral fallback style.
const (
	NodeTip        NodeType = "tip"
	NodeAssessment NodeType = "assessment"
	NodeDocument   NodeType = "document"
	NodeStock      NodeType = "stock"
	NodeComplaint  NodeType = "complaint"
	NodeAdvisor    NodeType = "advisor"
)

// RelationshipType categorizes the inferred connection between two nodes.
type RelationshipType string

// Relationship types recognized by the styling layer.
// Unknown values are valid and rendered with a neutral fallback style.
const (
	RelLeadsTo        RelationshipType = "leads_to"
	RelReferences     RelationshipType = "references"
	RelMentions       RelationshipType = "mentions"
	RelInvolves       RelationshipType = "involves"
	RelSimilarPattern RelationshipType = "similar_pattern"
	RelEscalatesTo    RelationshipType = "escalates_to"
)

// KnownNodeTypes is the closed enumeration of node types with dedicated styling.
var KnownNodeTypes = map[NodeType]bool{
	NodeTip:        true,
	NodeAssessment: true,
	NodeDocument:   true,
	NodeStock:      true,
	NodeComplaint:  true,
	NodeAdvisor:    true,
}

// KnownRelationshipTypes is the closed enumeration of relationship types
// with dedicated styling.
var KnownRelationshipTypes = map[RelationshipType]bool{
	RelLeadsTo:        true,
	RelReferences:     true,
	RelMentions:       true,
	RelInvolves:       true,
	RelSimilarPattern: true,
	RelEscalatesTo:    true,
}

// Confidence bounds used for clamping before rendering.
const (
	MinConfidence = 0.0
	MaxConfidence = 100.0
)

// MetaReferenceData is the metadata key under which backend entities nest
// their reference payload. The highlight engine descends into it when
// matching free-text queries.
const MetaReferenceData = "reference_data"

// =============================================================================
// Metadata
// =============================================================================

// Metadata stores arbitrary structured payload attached to nodes and edges.
// It is opaque to the engine except for free-text matching, where it is
// flattened to a string. Metadata maps may be nil.
type Metadata map[string]any

// Clone creates a shallow copy of the metadata to avoid mutation.
// Returns nil for nil input.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// =============================================================================
// Domain Types
// =============================================================================

// Position is an explicit stored 2D coordinate carried by a node.
// When present it seeds (but never constrains) the layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents one domain entity in a fraud chain: a tip, an AI
// assessment, a document, a stock symbol, a complaint, or an advisor.
type Node struct {
	ID          string     `json:"id"`
	Type        NodeType   `json:"node_type"`
	ReferenceID string     `json:"reference_id,omitempty"` // Backend entity id
	Label       string     `json:"label,omitempty"`
	Meta        Metadata   `json:"metadata,omitempty"`
	Position    *Position  `json:"position,omitempty"` // Optional stored coordinate
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge represents a directed, confidence-scored relationship between two
// nodes of the same chain.
type Edge struct {
	ID         string           `json:"id"`
	From       string           `json:"from_node_id"`
	To         string           `json:"to_node_id"`
	Type       RelationshipType `json:"relationship_type"`
	Confidence float64          `json:"confidence"` // [0,100]; clamped for rendering, never rejected
	Meta       Metadata         `json:"metadata,omitempty"`
	CreatedAt  *time.Time       `json:"created_at,omitempty"`
}

// Chain is a cluster of related entities linked by inferred relationships.
// Node and edge order carries no meaning.
type Chain struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// =============================================================================
// Helpers
// =============================================================================

// ClampConfidence bounds a confidence value to [0,100] for rendering
// purposes. Out-of-range input is never treated as an error.
func ClampConfidence(v float64) float64 {
	return max(MinConfidence, min(MaxConfidence, v))
}

// Node returns the node with the given raw ID and true, or a zero Node and
// false if the chain does not contain it.
func (c Chain) Node(id string) (Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeCount returns the number of nodes in the chain.
func (c Chain) NodeCount() int { return len(c.Nodes) }

// EdgeCount returns the number of edges in the chain.
func (c Chain) EdgeCount() int { return len(c.Edges) }
