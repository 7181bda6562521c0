// Package surface is the render surface adapter: it owns the camera for
// one hosted view, paints frames through pluggable sinks, and handles
// export and teardown.
//
// Pan, zoom, and fit are view-only operations — they move the camera and
// never recompute the layout. Resizing the viewport re-fits to content;
// it does not trigger a re-layout either.
package surface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/observability"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// DefaultFitPadding is the model-space margin kept around content when
// fitting the viewport.
const DefaultFitPadding = 40.0

// ExportScale is the pixel density multiplier for raster exports.
const ExportScale = 2.0

// focusSteps is the frame count of an animated focus transition.
const focusSteps = 12

// Frame is one paintable view of the scene: geometry, highlight states,
// selection, and the camera that maps it to pixels. Sinks consume frames
// and hold no state of their own.
type Frame struct {
	Scene      *scene.Scene
	Positions  layout.Positions
	Highlight  highlight.Result
	SelectedID string
	Camera     Camera
	Width      float64
	Height     float64
}

// Sink paints frames. The SVG and PNG sinks implement it.
type Sink interface {
	Paint(f Frame) error
}

// Surface owns the camera and paint state for a single hosted view.
// It is driven from the hosting view's event loop and is not safe for
// concurrent use.
type Surface struct {
	scn        *scene.Scene
	positions  layout.Positions
	hl         highlight.Result
	selectedID string

	cam        Camera
	fitPadding float64

	pendingFit bool // fit requested before the viewport had a size
	focus      *focusTween
	closed     bool
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithFitPadding overrides the fit-to-content padding.
func WithFitPadding(p float64) SurfaceOption {
	return func(s *Surface) { s.fitPadding = p }
}

// NewSurface creates a mounted surface for a viewport of the given pixel
// size. Zero dimensions are valid; fits requested before the first real
// resize are deferred and applied when the size arrives.
func NewSurface(width, height float64, opts ...SurfaceOption) *Surface {
	s := &Surface{
		cam:        NewCamera(width, height),
		fitPadding: DefaultFitPadding,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetScene installs the scene and its computed positions, clearing
// highlight and selection state from the previous scene.
func (s *Surface) SetScene(scn *scene.Scene, pos layout.Positions) {
	if s.closed {
		return
	}
	s.scn = scn
	s.positions = pos
	s.hl = highlight.Result{}
	s.selectedID = ""
	s.focus = nil
}

// SetPositions replaces the node coordinates, e.g. per animation frame.
func (s *Surface) SetPositions(pos layout.Positions) {
	if s.closed {
		return
	}
	s.positions = pos
}

// SetHighlight installs the current highlight result.
func (s *Surface) SetHighlight(r highlight.Result) {
	if s.closed {
		return
	}
	s.hl = r
}

// SetSelected marks the element holding the selection, empty to clear.
func (s *Surface) SetSelected(id string) {
	if s.closed {
		return
	}
	s.selectedID = id
}

// Camera returns the current camera.
func (s *Surface) Camera() Camera { return s.cam }

// FitToRect frames the given model-space rectangle. It satisfies
// [layout.Fitter] so the orchestrator can fit on the layout stop event.
func (s *Surface) FitToRect(r scene.Rect) {
	if s.closed {
		return
	}
	w, h := s.cam.Size()
	if w <= 0 || h <= 0 {
		s.pendingFit = true
		return
	}
	s.focus = nil
	s.cam = s.cam.FitRect(r, s.fitPadding)
}

// FitToContent frames the bounding box of all positioned nodes.
func (s *Surface) FitToContent() {
	if r, ok := s.positions.Bounds(); ok {
		s.FitToRect(r)
	}
}

// ZoomIn steps the zoom in, anchored at the viewport center.
func (s *Surface) ZoomIn() {
	if s.closed {
		return
	}
	s.focus = nil
	s.cam = s.cam.ZoomIn()
}

// ZoomOut steps the zoom out, anchored at the viewport center.
func (s *Surface) ZoomOut() {
	if s.closed {
		return
	}
	s.focus = nil
	s.cam = s.cam.ZoomOut()
}

// PanBy shifts the viewport by pixel offsets.
func (s *Surface) PanBy(dx, dy float64) {
	if s.closed {
		return
	}
	s.focus = nil
	s.cam = s.cam.PanBy(dx, dy)
}

// Resize re-measures the viewport and re-fits to content. The layout is
// untouched.
func (s *Surface) Resize(width, height float64) {
	if s.closed {
		return
	}
	s.cam = s.cam.WithSize(width, height)
	if s.pendingFit || s.scn != nil {
		s.pendingFit = false
		s.FitToContent()
	}
}

// Focus frames the given rectangle. With animate set the camera eases
// toward the target over a short tween driven by [Surface.StepFocus];
// otherwise it snaps immediately.
func (s *Surface) Focus(r scene.Rect, animate bool) {
	if s.closed {
		return
	}
	target := s.cam.FitRect(r, s.fitPadding)
	if !animate {
		s.focus = nil
		s.cam = target
		return
	}
	s.focus = &focusTween{from: s.cam, to: target, steps: focusSteps}
}

// StepFocus advances an in-flight focus tween by one frame and reports
// whether another frame remains. Idle surfaces return false.
func (s *Surface) StepFocus() bool {
	if s.closed || s.focus == nil {
		return false
	}
	s.cam = s.focus.step()
	if s.focus.done() {
		s.cam = s.focus.to
		s.focus = nil
		return false
	}
	return true
}

// Frame snapshots the current paint state for a sink.
func (s *Surface) Frame() Frame {
	w, h := s.cam.Size()
	return Frame{
		Scene:      s.scn,
		Positions:  s.positions,
		Highlight:  s.hl,
		SelectedID: s.selectedID,
		Camera:     s.cam,
		Width:      w,
		Height:     h,
	}
}

// Paint renders the current frame through the given sink.
func (s *Surface) Paint(sink Sink) error {
	if s.closed || s.scn == nil {
		return nil
	}
	return sink.Paint(s.Frame())
}

// ExportPNG writes the current view to dir as a raster image at export
// density on the fixed background. The file is named after the displayed
// chain. An unmounted surface exports nothing and returns an empty path.
func (s *Surface) ExportPNG(ctx context.Context, dir string) (string, error) {
	if s.closed || s.scn == nil {
		return "", nil
	}

	hooks := observability.Render()
	formats := []string{"png"}
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	name := fmt.Sprintf("fraud_chain_%s.png", s.scn.ChainID())
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeRenderFailed, err, "create export file")
		hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
		return "", err
	}
	defer f.Close()

	if err := EncodePNG(f, s.Frame(), ExportScale); err != nil {
		hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
		return "", err
	}
	hooks.OnRenderComplete(ctx, formats, time.Since(start), nil)
	return path, nil
}

// Close unmounts the surface: pending fits and focus tweens are dropped
// and all later calls become no-ops. Close is idempotent.
func (s *Surface) Close() {
	s.closed = true
	s.pendingFit = false
	s.focus = nil
}

// Closed reports whether the surface has been torn down.
func (s *Surface) Closed() bool { return s.closed }

// focusTween eases the camera toward a target framing over a fixed number
// of frames.
type focusTween struct {
	from  Camera
	to    Camera
	steps int
	frame int
}

func (t *focusTween) done() bool { return t.frame >= t.steps }

func (t *focusTween) step() Camera {
	t.frame++
	p := float64(t.frame) / float64(t.steps)
	// ease-out cubic
	p = 1 - (1-p)*(1-p)*(1-p)

	cam := t.from
	cam.zoom = lerp(t.from.zoom, t.to.zoom, p)
	cam.panX = lerp(t.from.panX, t.to.panX, p)
	cam.panY = lerp(t.from.panY, t.to.panY, p)
	return cam
}

func lerp(a, b, p float64) float64 { return a + (b-a)*p }
