package layout

import (
	"context"
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// stackedEngine places every node at the same spot so the orchestrator's
// overlap pass has real work to do.
type stackedEngine struct{}

func (stackedEngine) Name() string { return "stacked" }

func (stackedEngine) Compute(_ context.Context, s *scene.Scene) (Positions, error) {
	pos := make(Positions)
	for i, n := range s.Nodes() {
		pos[n.ID] = scene.Point{X: float64(i), Y: 0}
	}
	return pos, nil
}

type recordingFitter struct {
	calls  int
	bounds scene.Rect
}

func (f *recordingFitter) FitToRect(r scene.Rect) {
	f.calls++
	f.bounds = r
}

func TestEngineFor(t *testing.T) {
	tests := []struct {
		strategy string
		wantName string
	}{
		{"", StrategyForce},
		{StrategyForce, StrategyForce},
		{StrategyLayered, StrategyLayered},
	}
	for _, tt := range tests {
		engine, err := EngineFor(tt.strategy, DefaultForceOptions(), DefaultLayeredOptions())
		if err != nil {
			t.Errorf("EngineFor(%q) error: %v", tt.strategy, err)
			continue
		}
		if engine.Name() != tt.wantName {
			t.Errorf("EngineFor(%q).Name() = %q, want %q", tt.strategy, engine.Name(), tt.wantName)
		}
	}
}

func TestEngineForUnknownStrategy(t *testing.T) {
	_, err := EngineFor("radial", DefaultForceOptions(), DefaultLayeredOptions())
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if !errors.Is(err, errors.ErrCodeInvalidStrategy) {
		t.Errorf("error code = %v, want ErrCodeInvalidStrategy", errors.GetCode(err))
	}
}

func TestOrchestratorRunSeparatesOverlaps(t *testing.T) {
	s := linearScene()
	orc := NewOrchestrator(stackedEngine{})

	pos, err := orc.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// Bounded relaxation may leave a small residual on heavily stacked
	// input; anything near the target shows the resolver ran.
	if got, want := minPairDistance(pos, false), DefaultSeparateOptions().MinSeparation; got < want-1 {
		t.Errorf("min pair distance = %v, want ~%v", got, want)
	}
}

func TestOrchestratorRunFitsViewport(t *testing.T) {
	fitter := &recordingFitter{}
	orc := NewOrchestrator(stackedEngine{}, WithFitter(fitter))

	pos, err := orc.Run(context.Background(), linearScene())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if fitter.calls != 1 {
		t.Fatalf("FitToRect called %d times, want 1", fitter.calls)
	}
	bounds, ok := pos.Bounds()
	if !ok {
		t.Fatal("no bounds for positions")
	}
	if fitter.bounds != bounds {
		t.Errorf("fitted rect = %+v, want %+v", fitter.bounds, bounds)
	}
}

func TestAnimateStopsExactlyOnce(t *testing.T) {
	fitter := &recordingFitter{}
	orc := NewOrchestrator(NewForceEngine(DefaultForceOptions()), WithFitter(fitter))

	run, err := orc.Animate(context.Background(), linearScene())
	if err != nil {
		t.Fatalf("Animate error: %v", err)
	}

	steps := 0
	for run.Step() {
		steps++
		if steps > DefaultForceOptions().MaxIterations {
			t.Fatal("animation never settled")
		}
	}
	if !run.Settled() {
		t.Error("run not settled after final step")
	}
	if fitter.calls != 1 {
		t.Errorf("FitToRect called %d times, want 1", fitter.calls)
	}

	// Further steps are no-ops.
	if run.Step() {
		t.Error("Step returned true after settling")
	}
	if fitter.calls != 1 {
		t.Errorf("FitToRect called %d times after extra step, want 1", fitter.calls)
	}
	if got, want := minPairDistance(run.Positions(), false), DefaultSeparateOptions().MinSeparation; got < want-1 {
		t.Errorf("min pair distance = %v, want ~%v", got, want)
	}
}

func TestAnimateNonSteppingEngineCompletesImmediately(t *testing.T) {
	fitter := &recordingFitter{}
	orc := NewOrchestrator(stackedEngine{}, WithFitter(fitter))

	run, err := orc.Animate(context.Background(), linearScene())
	if err != nil {
		t.Fatalf("Animate error: %v", err)
	}
	if !run.Settled() {
		t.Error("non-stepping run should settle immediately")
	}
	if run.Step() {
		t.Error("Step returned true for an already-settled run")
	}
	if fitter.calls != 1 {
		t.Errorf("FitToRect called %d times, want 1", fitter.calls)
	}
}

func TestAnimateCancelSkipsStopEvent(t *testing.T) {
	fitter := &recordingFitter{}
	orc := NewOrchestrator(NewForceEngine(DefaultForceOptions()), WithFitter(fitter))

	run, err := orc.Animate(context.Background(), linearScene())
	if err != nil {
		t.Fatalf("Animate error: %v", err)
	}
	if !run.Step() {
		t.Fatal("expected at least one settling frame")
	}

	run.Cancel()
	run.Cancel() // idempotent
	if run.Step() {
		t.Error("Step returned true after Cancel")
	}
	if run.Settled() {
		t.Error("canceled run reported settled")
	}
	if fitter.calls != 0 {
		t.Errorf("FitToRect called %d times after cancel, want 0", fitter.calls)
	}
	if run.Positions() == nil {
		t.Error("positions should expose the in-flight frame after cancel")
	}
}
