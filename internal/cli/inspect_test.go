package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/interact"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/surface"
)

func testInspectModel(t *testing.T, controls bool) *inspectModel {
	t.Helper()

	s := scene.Build(chain.Chain{
		ID: "chain-9",
		Nodes: []chain.Node{
			{ID: "n1", Type: chain.NodeTip, Label: "Tip"},
			{ID: "n2", Type: chain.NodeStock, Label: "ACME"},
		},
		Edges: []chain.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: chain.RelMentions, Confidence: 80},
		},
	})

	surf := surface.NewSurface(80, 24)
	orc := layout.NewOrchestrator(layout.NewForceEngine(layout.DefaultForceOptions()), layout.WithFitter(surf))
	run, err := orc.Animate(context.Background(), s)
	if err != nil {
		t.Fatalf("Animate error: %v", err)
	}
	t.Cleanup(func() {
		run.Cancel()
		surf.Close()
	})

	m := newInspectModel(context.Background(), s, surf, run, controls)
	m.positions = layout.Positions{
		"n1": scene.Point{X: 0, Y: 0},
		"n2": scene.Point{X: 100, Y: 0},
	}
	m.width, m.height = 80, 24
	return m
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestInspectViewControls(t *testing.T) {
	m := testInspectModel(t, true)
	view := m.View()
	if !strings.Contains(view, "h hover edge") {
		t.Error("controls view missing the key help row")
	}
	if !strings.Contains(view, "layout settling") {
		t.Error("controls view missing the status row")
	}

	m = testInspectModel(t, false)
	view = m.View()
	if strings.Contains(view, "j/k select") {
		t.Error("help row rendered with controls disabled")
	}
	if strings.Contains(view, "layout settling") {
		t.Error("status row rendered with controls disabled")
	}
}

func TestInspectControlsCanvasHeight(t *testing.T) {
	with := testInspectModel(t, true)
	without := testInspectModel(t, false)
	if without.canvasHeight() <= with.canvasHeight() {
		t.Errorf("canvas height %d with controls off, want more than %d",
			without.canvasHeight(), with.canvasHeight())
	}
}

func TestInspectHoverKeyTogglesTooltip(t *testing.T) {
	m := testInspectModel(t, true)

	m.updateKeys(keyPress('h'))
	if got := m.coord.State(); got != interact.StateEdgeHover {
		t.Fatalf("state after hover = %v, want edge-hover", got)
	}
	tip := m.coord.Tooltip()
	if tip == nil || tip.FromLabel != "Tip" || tip.ToLabel != "ACME" {
		t.Fatalf("tooltip = %+v, want Tip/ACME", tip)
	}

	view := m.View()
	if !strings.Contains(view, "████████░░") || !strings.Contains(view, "80%") {
		t.Errorf("tooltip view missing the confidence gauge:\n%s", view)
	}

	m.updateKeys(keyPress('h'))
	if m.coord.Tooltip() != nil {
		t.Error("tooltip still open after hover-out")
	}
	if got := m.coord.State(); got != interact.StateIdle {
		t.Errorf("state after hover-out = %v, want idle", got)
	}
}

func TestInspectHoverOutKeepsNodeSelection(t *testing.T) {
	m := testInspectModel(t, true)

	m.updateKeys(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.coord.State(); got != interact.StateNodeSelected {
		t.Fatalf("state after tap = %v, want node-selected", got)
	}

	m.updateKeys(keyPress('h'))
	m.updateKeys(keyPress('h'))
	if got := m.coord.State(); got != interact.StateNodeSelected {
		t.Errorf("state after hover round trip = %v, want node-selected", got)
	}
}

func TestConfidenceBar(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{80, "████████░░"},
		{100, "██████████"},
		{130, "██████████"}, // clamped
		{-5, "░░░░░░░░░░"},  // clamped
	}
	for _, tt := range tests {
		if got := confidenceBar(tt.confidence, 10); got != tt.want {
			t.Errorf("confidenceBar(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}
