package surface

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

func testScene() *scene.Scene {
	return scene.Build(chain.Chain{
		ID: "chain-42",
		Nodes: []chain.Node{
			{ID: "n1", Type: chain.NodeTip, Label: "Tip"},
			{ID: "n2", Type: chain.NodeStock, Label: "Stock"},
		},
		Edges: []chain.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: chain.RelMentions, Confidence: 75},
		},
	})
}

func testPositions() layout.Positions {
	return layout.Positions{
		"n1": scene.Point{X: 0, Y: 0},
		"n2": scene.Point{X: 200, Y: 100},
	}
}

func TestSurfaceDeferredFit(t *testing.T) {
	surf := NewSurface(0, 0)
	surf.SetScene(testScene(), testPositions())

	before := surf.Camera()
	surf.FitToContent()
	if surf.Camera() != before {
		t.Error("fit with zero viewport should not move the camera")
	}

	surf.Resize(800, 600)
	cam := surf.Camera()
	if w, h := cam.Size(); w != 800 || h != 600 {
		t.Fatalf("size = %v x %v, want 800 x 600", w, h)
	}
	// The deferred fit ran: both nodes are inside the viewport now.
	for id, p := range testPositions() {
		proj := cam.Project(p)
		if proj.X < 0 || proj.X > 800 || proj.Y < 0 || proj.Y > 600 {
			t.Errorf("node %s projects outside viewport after deferred fit: %+v", id, proj)
		}
	}
}

func TestSurfaceResizeKeepsPositions(t *testing.T) {
	surf := NewSurface(800, 600)
	pos := testPositions()
	surf.SetScene(testScene(), pos)
	surf.FitToContent()

	surf.Resize(400, 300)

	f := surf.Frame()
	for id, want := range pos {
		if f.Positions[id] != want {
			t.Errorf("resize changed model position of %s: %+v", id, f.Positions[id])
		}
	}
}

func TestSurfaceSetSceneClearsViewState(t *testing.T) {
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())
	surf.SetSelected("n1")
	surf.SetHighlight(highlight.Result{
		States:     map[string]highlight.State{"n1": highlight.StateMatched},
		MatchedIDs: []string{"n1"},
	})

	surf.SetScene(testScene(), testPositions())

	f := surf.Frame()
	if f.SelectedID != "" {
		t.Errorf("SelectedID = %q after scene swap, want empty", f.SelectedID)
	}
	if f.Highlight.HasMatches() {
		t.Error("highlight survived scene swap")
	}
}

func TestSurfaceFocusSnap(t *testing.T) {
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())

	target := scene.Rect{MinX: 0, MinY: 0, MaxX: 200, MaxY: 100}
	surf.Focus(target, false)

	if surf.StepFocus() {
		t.Error("snap focus should leave no tween")
	}
	center := surf.Camera().Project(target.Center())
	if !almostEqual(center, scene.Point{X: 400, Y: 300}) {
		t.Errorf("target center projects to %+v, want viewport center", center)
	}
}

func TestSurfaceFocusAnimated(t *testing.T) {
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())
	start := surf.Camera()

	target := scene.Rect{MinX: 0, MinY: 0, MaxX: 200, MaxY: 100}
	surf.Focus(target, true)

	steps := 0
	for surf.StepFocus() {
		steps++
		if steps > 100 {
			t.Fatal("focus tween never finished")
		}
	}
	if steps == 0 {
		t.Fatal("animated focus finished without intermediate frames")
	}
	if surf.Camera() == start {
		t.Error("camera did not move")
	}
	want := start.FitRect(target, DefaultFitPadding)
	if surf.Camera() != want {
		t.Errorf("camera = %+v, want fitted %+v", surf.Camera(), want)
	}
}

func TestSurfacePanCancelsFocus(t *testing.T) {
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())
	surf.Focus(scene.Rect{MaxX: 200, MaxY: 100}, true)

	surf.PanBy(10, 0)
	if surf.StepFocus() {
		t.Error("manual pan should cancel the focus tween")
	}
}

func TestSurfaceExportPNG(t *testing.T) {
	dir := t.TempDir()
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())
	surf.FitToContent()

	path, err := surf.ExportPNG(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportPNG error: %v", err)
	}
	if got, want := filepath.Base(path), "fraud_chain_chain-42.png"; got != want {
		t.Errorf("export file = %q, want %q", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if info.Size() == 0 {
		t.Error("export file is empty")
	}
}

func TestSurfaceExportPNGUnmounted(t *testing.T) {
	surf := NewSurface(800, 600)
	path, err := surf.ExportPNG(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("ExportPNG error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q for unmounted surface, want empty", path)
	}
}

func TestSurfaceCloseIdempotent(t *testing.T) {
	surf := NewSurface(800, 600)
	surf.SetScene(testScene(), testPositions())
	cam := surf.Camera()

	surf.Close()
	surf.Close()
	if !surf.Closed() {
		t.Fatal("Closed() = false after Close")
	}

	surf.ZoomIn()
	surf.PanBy(100, 100)
	surf.Resize(100, 100)
	if surf.Camera() != cam {
		t.Error("camera moved after Close")
	}

	path, err := surf.ExportPNG(context.Background(), t.TempDir())
	if err != nil || path != "" {
		t.Errorf("ExportPNG after Close = (%q, %v), want no-op", path, err)
	}
}
