package surface

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/styles"
)

const labelFontSize = 12.0

var (
	fontOnce   sync.Once
	labelFont  *truetype.Font
	fontErr    error
	faceCache  = map[float64]font.Face{}
	faceCacheM sync.Mutex
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		labelFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, fontErr, "parse label font")
	}
	faceCacheM.Lock()
	defer faceCacheM.Unlock()
	if face, ok := faceCache[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(labelFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faceCache[size] = face
	return face, nil
}

// EncodePNG rasterizes one frame and writes it to w as PNG. The scale
// multiplies the pixel density without changing the framing, so exports
// stay sharp on dense displays.
func EncodePNG(w io.Writer, f Frame, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Ceil(f.Width * scale))
	height := int(math.Ceil(f.Height * scale))
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeRenderFailed, "viewport has no size")
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(styles.BackgroundColor)
	dc.Clear()

	if f.Scene != nil {
		face, err := labelFace(labelFontSize * f.Camera.Zoom() * scale)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		drawFrame(dc, f, scale)
	}

	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "encode png")
	}
	return nil
}

func drawFrame(dc *gg.Context, f Frame, scale float64) {
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
		p1 := projectScaled(f.Camera, from, scale)
		p2 := projectScaled(f.Camera, to, scale)

		setColor(dc, rec.Stroke, rec.Opacity)
		dc.SetLineWidth(rec.StrokeWidth * scale)
		dc.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
		dc.Stroke()
		drawArrowhead(dc, p1, p2, f.Camera.Zoom()*scale)
	}

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
		p := projectScaled(f.Camera, pos, scale)
		r := rec.Radius * f.Camera.Zoom() * scale

		if rec.Glow {
			setColor(dc, rec.Stroke, 0.3)
			dc.DrawCircle(p.X, p.Y, r*1.6)
			dc.Fill()
		}
		setColor(dc, rec.Fill, rec.Opacity)
		dc.DrawCircle(p.X, p.Y, r)
		dc.Fill()
		setColor(dc, rec.Stroke, rec.Opacity)
		dc.SetLineWidth(rec.StrokeWidth * scale)
		dc.DrawCircle(p.X, p.Y, r)
		dc.Stroke()

		setColor(dc, rec.LabelColor, rec.Opacity)
		dc.DrawStringAnchored(el.Node.DisplayLabel(), p.X, p.Y+r+6*scale, 0.5, 1)
	}
}

// drawArrowhead paints a small triangle at the target end of an edge,
// pulled back by the node radius so it meets the circle border.
func drawArrowhead(dc *gg.Context, from, to scene.Point, zoom float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	ux, uy := dx/dist, dy/dist
	tip := scene.Point{
		X: to.X - ux*styles.DefaultNodeRadius*zoom,
		Y: to.Y - uy*styles.DefaultNodeRadius*zoom,
	}
	size := 6 * zoom
	left := scene.Point{X: tip.X - ux*size - uy*size*0.5, Y: tip.Y - uy*size + ux*size*0.5}
	right := scene.Point{X: tip.X - ux*size + uy*size*0.5, Y: tip.Y - uy*size - ux*size*0.5}

	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(left.X, left.Y)
	dc.LineTo(right.X, right.Y)
	dc.ClosePath()
	dc.Fill()
}

func projectScaled(cam Camera, p scene.Point, scale float64) scene.Point {
	out := cam.Project(p)
	return scene.Point{X: out.X * scale, Y: out.Y * scale}
}

// setColor applies a CSS hex color with an explicit alpha.
func setColor(dc *gg.Context, hex string, alpha float64) {
	r, g, b := parseHexColor(hex)
	dc.SetRGBA(r, g, b, alpha)
}

func parseHexColor(hex string) (r, g, b float64) {
	var ri, gi, bi int
	if len(hex) == 7 {
		fmt.Sscanf(hex, "#%02x%02x%02x", &ri, &gi, &bi)
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255
}
