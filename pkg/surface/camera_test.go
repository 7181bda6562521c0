package surface

import (
	"math"
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

func almostEqual(a, b scene.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestCameraProjectTransform(t *testing.T) {
	cam := Camera{width: 800, height: 600, zoom: 2, panX: 30, panY: -10}

	p := cam.Project(scene.Point{X: 5, Y: 7})
	// renderedX = modelX*zoom + panX
	want := scene.Point{X: 5*2 + 30, Y: 7*2 + -10}
	if !almostEqual(p, want) {
		t.Errorf("Project = %+v, want %+v", p, want)
	}
}

func TestCameraProjectUnprojectRoundTrip(t *testing.T) {
	cam := NewCamera(800, 600).ZoomIn().PanBy(120, -45)

	pts := []scene.Point{{}, {X: 10, Y: 20}, {X: -300.5, Y: 999}}
	for _, p := range pts {
		back := cam.Unproject(cam.Project(p))
		if !almostEqual(back, p) {
			t.Errorf("round trip of %+v = %+v", p, back)
		}
	}
}

func TestCameraFitRectContainsContent(t *testing.T) {
	cam := NewCamera(800, 600)
	content := scene.Rect{MinX: -100, MinY: -50, MaxX: 300, MaxY: 250}

	cam = cam.FitRect(content, 40)

	for _, corner := range []scene.Point{
		{X: content.MinX, Y: content.MinY},
		{X: content.MaxX, Y: content.MinY},
		{X: content.MinX, Y: content.MaxY},
		{X: content.MaxX, Y: content.MaxY},
	} {
		p := cam.Project(corner)
		if p.X < 0 || p.X > 800 || p.Y < 0 || p.Y > 600 {
			t.Errorf("corner %+v projects outside viewport: %+v", corner, p)
		}
	}

	center := cam.Project(content.Center())
	if !almostEqual(center, scene.Point{X: 400, Y: 300}) {
		t.Errorf("content center projects to %+v, want viewport center", center)
	}
}

func TestCameraFitRectZeroViewportUnchanged(t *testing.T) {
	cam := NewCamera(0, 0)
	fitted := cam.FitRect(scene.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, 40)
	if fitted != cam {
		t.Errorf("zero-size viewport changed camera: %+v", fitted)
	}
}

func TestCameraFitRectSinglePoint(t *testing.T) {
	cam := NewCamera(400, 400)
	// A degenerate rect (one node) must not blow the zoom past the cap.
	cam = cam.FitRect(scene.Rect{MinX: 10, MinY: 10, MaxX: 10, MaxY: 10}, 0)

	if cam.Zoom() > MaxZoom {
		t.Errorf("zoom = %v, want <= %v", cam.Zoom(), MaxZoom)
	}
	center := cam.Project(scene.Point{X: 10, Y: 10})
	if !almostEqual(center, scene.Point{X: 200, Y: 200}) {
		t.Errorf("point projects to %+v, want viewport center", center)
	}
}

func TestCameraZoomClamps(t *testing.T) {
	cam := NewCamera(800, 600)
	for i := 0; i < 50; i++ {
		cam = cam.ZoomIn()
	}
	if cam.Zoom() != MaxZoom {
		t.Errorf("zoom after repeated ZoomIn = %v, want %v", cam.Zoom(), MaxZoom)
	}
	for i := 0; i < 100; i++ {
		cam = cam.ZoomOut()
	}
	if cam.Zoom() != MinZoom {
		t.Errorf("zoom after repeated ZoomOut = %v, want %v", cam.Zoom(), MinZoom)
	}
}

func TestCameraZoomAnchorsViewportCenter(t *testing.T) {
	cam := NewCamera(800, 600).PanBy(55, 77)
	before := cam.Unproject(scene.Point{X: 400, Y: 300})

	cam = cam.ZoomIn()
	after := cam.Unproject(scene.Point{X: 400, Y: 300})

	if !almostEqual(before, after) {
		t.Errorf("viewport center moved under zoom: %+v -> %+v", before, after)
	}
}

func TestCameraPanBy(t *testing.T) {
	cam := NewCamera(800, 600)
	p0 := cam.Project(scene.Point{X: 1, Y: 2})

	cam = cam.PanBy(15, -25)
	p1 := cam.Project(scene.Point{X: 1, Y: 2})

	if !almostEqual(p1, scene.Point{X: p0.X + 15, Y: p0.Y - 25}) {
		t.Errorf("pan moved projection to %+v from %+v", p1, p0)
	}
}

func TestCameraViewport(t *testing.T) {
	cam := Camera{width: 800, height: 600, zoom: 2, panX: 100, panY: 50}
	vp := cam.Viewport()

	want := scene.Rect{MinX: -50, MinY: -25, MaxX: 350, MaxY: 275}
	if vp != want {
		t.Errorf("Viewport = %+v, want %+v", vp, want)
	}
}
