package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// RankDir controls the flow direction of the layered layout.
type RankDir string

// Rank directions accepted by LayeredOptions.
const (
	RankTopBottom RankDir = "TB"
	RankBottomTop RankDir = "BT"
	RankLeftRight RankDir = "LR"
	RankRightLeft RankDir = "RL"
)

// LayeredOptions tunes the hierarchical layout.
type LayeredOptions struct {
	// RankDir is the flow direction, default top-to-bottom.
	RankDir RankDir
	// NodeSep is the separation between nodes in the same rank, in points.
	NodeSep float64
	// RankSep is the separation between ranks, in points.
	RankSep float64
	// EdgeSep is the minimum separation between parallel edges, in points.
	EdgeSep float64
}

// DefaultLayeredOptions returns the documented defaults.
func DefaultLayeredOptions() LayeredOptions {
	return LayeredOptions{RankDir: RankTopBottom, NodeSep: 40, RankSep: 70, EdgeSep: 10}
}

// LayeredEngine lays the scene out in ranked layers using the Graphviz dot
// engine. It is the strategy of choice when relationships are temporally or
// causally ordered (leads_to / escalates_to chains).
type LayeredEngine struct {
	Options LayeredOptions
}

// NewLayeredEngine creates a layered engine with the given options.
// Zero-valued fields fall back to DefaultLayeredOptions.
func NewLayeredEngine(opts LayeredOptions) *LayeredEngine {
	def := DefaultLayeredOptions()
	if opts.RankDir == "" {
		opts.RankDir = def.RankDir
	}
	if opts.NodeSep <= 0 {
		opts.NodeSep = def.NodeSep
	}
	if opts.RankSep <= 0 {
		opts.RankSep = def.RankSep
	}
	if opts.EdgeSep <= 0 {
		opts.EdgeSep = def.EdgeSep
	}
	return &LayeredEngine{Options: opts}
}

// Name returns "layered".
func (e *LayeredEngine) Name() string { return StrategyLayered }

// Compute renders the scene through the dot engine and reads the computed
// node positions back into model space. Layered layout is deterministic, so
// no randomization toggle exists here.
func (e *LayeredEngine) Compute(ctx context.Context, s *scene.Scene) (Positions, error) {
	if s.NodeCount() == 0 {
		return Positions{}, nil
	}

	dot := BuildDOT(s, e.Options)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "dot layout")
	}

	pos := ParsePositions(buf.String())

	// Every node element must come back positioned; a miss means the DOT
	// round-trip broke, which is an engine fault rather than bad data.
	for _, n := range s.Nodes() {
		if _, ok := pos[n.ID]; !ok {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "no position for element %s", n.ID)
		}
	}
	return pos, nil
}

var _ Engine = (*LayeredEngine)(nil)

// BuildDOT converts a scene to Graphviz DOT input for the dot engine.
// Node ids are quoted verbatim; labels are omitted since only geometry is
// read back.
func BuildDOT(s *scene.Scene, opts LayeredOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chain {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	fmt.Fprintf(&buf, "  nodesep=%s;\n", points(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", points(opts.RankSep))
	fmt.Fprintf(&buf, "  esep=%s;\n", points(opts.EdgeSep))
	buf.WriteString("  node [shape=circle, width=0.6, fixedsize=true, label=\"\"];\n\n")

	for _, n := range s.Nodes() {
		fmt.Fprintf(&buf, "  %q;\n", n.ID)
	}
	buf.WriteString("\n")
	for _, e := range s.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// points formats a length in graphviz inches (72 points per inch).
func points(v float64) string {
	return strconv.FormatFloat(v/72.0, 'f', 4, 64)
}

var posAttrRe = regexp.MustCompile(`pos="(-?[0-9.]+),(-?[0-9.]+)"`)

// ParsePositions extracts node positions from attributed DOT (xdot) output.
//
// Graphviz's y axis points up while model space points down, so y is
// negated to keep top-to-bottom flow rendering downward.
func ParsePositions(xdot string) Positions {
	pos := make(Positions)

	// Attribute lists wrap with backslash continuations; re-join first.
	joined := strings.ReplaceAll(xdot, "\\\n", "")

	for _, stmt := range splitStatements(joined) {
		if indexUnquoted(stmt, "->") >= 0 {
			continue // edge statement
		}
		open := indexUnquoted(stmt, "[")
		if open < 0 {
			continue
		}
		id := parseDOTID(strings.TrimSpace(stmt[:open]))
		if id == "" || id == "graph" || id == "node" || id == "edge" {
			continue
		}
		m := posAttrRe.FindStringSubmatch(stmt[open:])
		if m == nil {
			continue
		}
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		pos[id] = scene.Point{X: x, Y: -y}
	}
	return pos
}

// splitStatements splits DOT text on semicolons, ignoring semicolons inside
// quoted identifiers so ids carrying punctuation survive the round trip.
func splitStatements(src string) []string {
	var (
		stmts   []string
		start   int
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			stmts = append(stmts, src[start:i])
			start = i + 1
		}
	}
	return append(stmts, src[start:])
}

// indexUnquoted returns the index of the first occurrence of sub outside
// quoted identifiers, or -1.
func indexUnquoted(s, sub string) int {
	var quoted, escaped bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case !quoted && strings.HasPrefix(s[i:], sub):
			return i
		}
	}
	return -1
}

// parseDOTID unquotes a DOT identifier, handling escaped quotes.
func parseDOTID(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		inner := raw[1 : len(raw)-1]
		inner = strings.ReplaceAll(inner, `\"`, `"`)
		return inner
	}
	return raw
}
