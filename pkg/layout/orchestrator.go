package layout

import (
	"context"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/observability"
	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// Fitter receives the post-layout bounding box so the owning view can fit
// its viewport to content. The render surface implements it.
type Fitter interface {
	FitToRect(r scene.Rect)
}

// Orchestrator runs a layout strategy over a scene and performs the
// discrete stop-event work: one overlap-resolver pass, then a viewport fit.
//
// An Orchestrator is owned by a single view and is not safe for concurrent
// use. Switching strategy or scene requires a fresh Run — layouts are never
// patched incrementally.
type Orchestrator struct {
	engine  Engine
	overlap SeparateOptions
	fitter  Fitter
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOverlapOptions overrides the overlap resolver settings.
func WithOverlapOptions(o SeparateOptions) OrchestratorOption {
	return func(orc *Orchestrator) { orc.overlap = o }
}

// WithFitter attaches the viewport that should be fitted after layout.
func WithFitter(f Fitter) OrchestratorOption {
	return func(orc *Orchestrator) { orc.fitter = f }
}

// NewOrchestrator creates an orchestrator for the given engine.
func NewOrchestrator(engine Engine, opts ...OrchestratorOption) *Orchestrator {
	orc := &Orchestrator{
		engine:  engine,
		overlap: DefaultSeparateOptions(),
	}
	for _, opt := range opts {
		opt(orc)
	}
	return orc
}

// EngineFor resolves a strategy name to a configured engine.
// Returns ErrCodeInvalidStrategy for unknown names.
func EngineFor(strategy string, force ForceOptions, layered LayeredOptions) (Engine, error) {
	switch strategy {
	case "", StrategyForce:
		return NewForceEngine(force), nil
	case StrategyLayered:
		return NewLayeredEngine(layered), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy: %q (must be %q or %q)", strategy, StrategyForce, StrategyLayered)
	}
}

// Engine returns the active layout strategy.
func (orc *Orchestrator) Engine() Engine { return orc.engine }

// Run executes the full layout to convergence, resolves overlaps once, fits
// the viewport, and returns the final positions.
func (orc *Orchestrator) Run(ctx context.Context, s *scene.Scene) (Positions, error) {
	observability.Layout().OnLayoutStart(ctx, orc.engine.Name(), s.NodeCount())
	pos, err := orc.engine.Compute(ctx, s)
	observability.Layout().OnLayoutComplete(ctx, orc.engine.Name(), err)
	if err != nil {
		return nil, err
	}
	orc.stop(ctx, pos)
	return pos, nil
}

// Animate starts a frame-sliced layout run for engines that support it.
// Engines without a stepping mode (the layered strategy) complete in a
// single step. The stop-event work runs exactly once, inside the final
// Step call.
func (orc *Orchestrator) Animate(ctx context.Context, s *scene.Scene) (*AnimatedRun, error) {
	run := &AnimatedRun{orc: orc, ctx: ctx}

	if stepper, ok := orc.engine.(Stepper); ok {
		run.anim = stepper.Start(s)
		observability.Layout().OnLayoutStart(ctx, orc.engine.Name(), s.NodeCount())
		return run, nil
	}

	pos, err := orc.Run(ctx, s)
	if err != nil {
		return nil, err
	}
	run.final = pos
	run.settled = true
	return run, nil
}

// stop is the discrete layout-stop event: a single overlap-resolver pass,
// then a fit to content.
func (orc *Orchestrator) stop(ctx context.Context, pos Positions) {
	passes := Separate(pos, orc.overlap)
	observability.Layout().OnOverlapResolve(ctx, len(pos), passes)
	if orc.fitter == nil {
		return
	}
	if bounds, ok := pos.Bounds(); ok {
		orc.fitter.FitToRect(bounds)
	}
}

// AnimatedRun is an orchestrated layout advanced frame by frame by a host's
// animation loop.
type AnimatedRun struct {
	orc      *Orchestrator
	ctx      context.Context
	anim     Animation
	final    Positions
	settled  bool
	canceled bool
}

// Step advances one frame and reports whether the layout is still settling.
// The final frame triggers the overlap resolver and viewport fit. Canceled
// runs stop immediately without the stop-event work.
func (r *AnimatedRun) Step() bool {
	if r.settled || r.canceled {
		return false
	}
	if r.ctx != nil && r.ctx.Err() != nil {
		r.canceled = true
		return false
	}
	if r.anim.Step() {
		return true
	}
	r.final = r.anim.Positions()
	observability.Layout().OnLayoutComplete(r.ctx, r.orc.engine.Name(), nil)
	r.orc.stop(r.ctx, r.final)
	r.settled = true
	return false
}

// Cancel stops the run; navigating away from a chain mid-layout must not
// leave a settling animation behind. Cancel is idempotent.
func (r *AnimatedRun) Cancel() { r.canceled = true }

// Settled reports whether the run converged and the stop event fired.
func (r *AnimatedRun) Settled() bool { return r.settled }

// Positions returns the current coordinates: the in-flight frame while
// settling, the separated layout afterward, nil if canceled before any
// frame ran.
func (r *AnimatedRun) Positions() Positions {
	if r.settled {
		return r.final
	}
	if r.anim != nil {
		return r.anim.Positions()
	}
	return nil
}
