package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/styles"
)

// SVGSink paints frames as standalone SVG documents. It holds only the
// destination writer; all paint state arrives with the frame.
type SVGSink struct {
	w io.Writer
}

// NewSVGSink creates a sink writing to w.
func NewSVGSink(w io.Writer) *SVGSink { return &SVGSink{w: w} }

// Paint writes one frame as a complete SVG document.
func (s *SVGSink) Paint(f Frame) error {
	var b strings.Builder
	writeSVG(&b, f)
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "write svg")
	}
	return nil
}

// RenderSVG renders one frame to an SVG document in memory.
func RenderSVG(f Frame) []byte {
	var b strings.Builder
	writeSVG(&b, f)
	return []byte(b.String())
}

func writeSVG(b *strings.Builder, f Frame) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(f.Width), num(f.Height), num(f.Width), num(f.Height))
	fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.BackgroundColor)

	if f.Scene == nil {
		b.WriteString("</svg>\n")
		return
	}

	// Edges under nodes.
	for _, el := range f.Scene.Edges() {
		from, okF := f.Positions[el.From]
		to, okT := f.Positions[el.To]
		if !okF || !okT {
			continue
		}
		rec := styles.EdgeStyle(styles.EdgeAttrs{
			Type:       el.Edge.Type,
			Confidence: el.Edge.Confidence,
			Dimmed:     edgeDimmed(f, el),
			Selected:   el.ID == f.SelectedID,
		})
		p1 := f.Camera.Project(from)
		p2 := f.Camera.Project(to)
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" opacity="%s"/>`+"\n",
			num(p1.X), num(p1.Y), num(p2.X), num(p2.Y), rec.Stroke, num(rec.StrokeWidth), num(rec.Opacity))
	}

	// Nodes in element order, then labels on top.
	for _, el := range f.Scene.Nodes() {
		pos, ok := f.Positions[el.ID]
		if !ok {
			continue
		}
		rec := styles.NodeStyle(styles.NodeAttrs{
			Type:      el.Node.Type,
			Highlight: f.Highlight.State(el.ID),
			Selected:  el.ID == f.SelectedID,
		})
		p := f.Camera.Project(pos)
		r := rec.Radius * f.Camera.Zoom()

		if rec.Glow {
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="0.3"/>`+"\n",
				num(p.X), num(p.Y), num(r*1.6), rec.Stroke)
		}
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s" opacity="%s"/>`+"\n",
			num(p.X), num(p.Y), num(r), rec.Fill, rec.Stroke, num(rec.StrokeWidth), num(rec.Opacity))
		fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" font-size="%s" fill="%s" opacity="%s">%s</text>`+"\n",
			num(p.X), num(p.Y+r+14), num(12*f.Camera.Zoom()), rec.LabelColor, num(rec.Opacity),
			escapeText(el.Node.DisplayLabel()))
	}

	b.WriteString("</svg>\n")
}

// edgeDimmed reports whether the edge should render dimmed: a highlight is
// active and neither endpoint is in the match set. A query that matched
// nothing dims every node, and the edges follow.
func edgeDimmed(f Frame, el scene.EdgeElement) bool {
	if !f.Highlight.Active {
		return false
	}
	return f.Highlight.State(el.From) != highlight.StateMatched &&
		f.Highlight.State(el.To) != highlight.StateMatched
}

func num(v float64) string {
	out := fmt.Sprintf("%.2f", v)
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeText(s string) string { return textEscaper.Replace(s) }
