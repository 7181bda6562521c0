package surface

import (
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// Camera maps between model space and rendered (pixel) space.
//
// The transform is renderedX = modelX*zoom + panX, and analogously for Y.
// Tooltip anchors and hit targets are stored in model space and projected
// through the camera on every pan/zoom so they track content instead of
// drifting.
type Camera struct {
	width  float64
	height float64
	zoom   float64
	panX   float64
	panY   float64
}

// Camera zoom limits and the fixed step applied by ZoomIn/ZoomOut.
const (
	MinZoom    = 0.2
	MaxZoom    = 5.0
	ZoomFactor = 1.2
)

// NewCamera creates a camera for a viewport of the given pixel size.
func NewCamera(width, height float64) Camera {
	return Camera{width: width, height: height, zoom: 1}
}

// Size returns the viewport dimensions in pixels.
func (c Camera) Size() (w, h float64) { return c.width, c.height }

// Zoom returns the current zoom level.
func (c Camera) Zoom() float64 { return c.zoom }

// Pan returns the current pan offsets in pixels.
func (c Camera) Pan() (x, y float64) { return c.panX, c.panY }

// Project converts a model-space point to rendered pixel coordinates.
func (c Camera) Project(p scene.Point) scene.Point {
	return scene.Point{X: p.X*c.zoom + c.panX, Y: p.Y*c.zoom + c.panY}
}

// Unproject converts rendered pixel coordinates back to model space.
func (c Camera) Unproject(p scene.Point) scene.Point {
	if c.zoom == 0 {
		return scene.Point{}
	}
	return scene.Point{X: (p.X - c.panX) / c.zoom, Y: (p.Y - c.panY) / c.zoom}
}

// Viewport returns the model-space rectangle currently visible.
func (c Camera) Viewport() scene.Rect {
	tl := c.Unproject(scene.Point{})
	br := c.Unproject(scene.Point{X: c.width, Y: c.height})
	return scene.Rect{MinX: tl.X, MinY: tl.Y, MaxX: br.X, MaxY: br.Y}
}

// FitRect returns a camera that frames the rectangle with the given padding
// on every side. A zero-size viewport leaves the camera unchanged; the next
// resize-triggered re-fit self-corrects.
func (c Camera) FitRect(r scene.Rect, padding float64) Camera {
	if c.width <= 0 || c.height <= 0 {
		return c
	}
	r = r.Expand(padding)
	w, h := r.Width(), r.Height()
	zoom := 1.0
	if w > 0 || h > 0 {
		zoom = MaxZoom
		if w > 0 {
			zoom = min(zoom, c.width/w)
		}
		if h > 0 {
			zoom = min(zoom, c.height/h)
		}
	}
	zoom = clampZoom(zoom)

	center := r.Center()
	c.zoom = zoom
	c.panX = c.width/2 - center.X*zoom
	c.panY = c.height/2 - center.Y*zoom
	return c
}

// ZoomIn multiplies the zoom by the fixed factor, anchored at the viewport
// center.
func (c Camera) ZoomIn() Camera { return c.zoomBy(ZoomFactor) }

// ZoomOut divides the zoom by the fixed factor, anchored at the viewport
// center.
func (c Camera) ZoomOut() Camera { return c.zoomBy(1 / ZoomFactor) }

func (c Camera) zoomBy(factor float64) Camera {
	anchor := c.Unproject(scene.Point{X: c.width / 2, Y: c.height / 2})
	c.zoom = clampZoom(c.zoom * factor)
	c.panX = c.width/2 - anchor.X*c.zoom
	c.panY = c.height/2 - anchor.Y*c.zoom
	return c
}

// PanBy shifts the viewport by the given pixel offsets.
func (c Camera) PanBy(dx, dy float64) Camera {
	c.panX += dx
	c.panY += dy
	return c
}

// WithSize returns the camera re-measured to new viewport dimensions.
func (c Camera) WithSize(width, height float64) Camera {
	c.width = width
	c.height = height
	return c
}

func clampZoom(z float64) float64 {
	return max(MinZoom, min(MaxZoom, z))
}
