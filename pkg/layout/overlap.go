package layout

import (
	"math"
	"slices"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// SeparateOptions tunes the post-layout overlap resolver.
// The defaults preserve the engine's default visual density; both knobs are
// deliberately configuration rather than hardcoded literals.
type SeparateOptions struct {
	// MinSeparation is the minimum allowed distance between node centers.
	MinSeparation float64
	// MaxPasses bounds the relaxation; each pass visits every unordered pair.
	MaxPasses int
	// Epsilon is the distance below which a pair counts as coincident and
	// is skipped to avoid dividing by zero.
	Epsilon float64
}

// DefaultSeparateOptions returns the documented defaults: 60 units of
// separation enforced over at most 4 passes.
func DefaultSeparateOptions() SeparateOptions {
	return SeparateOptions{MinSeparation: 60, MaxPasses: 4, Epsilon: 1e-9}
}

func (o SeparateOptions) withDefaults() SeparateOptions {
	def := DefaultSeparateOptions()
	if o.MinSeparation <= 0 {
		o.MinSeparation = def.MinSeparation
	}
	if o.MaxPasses <= 0 {
		o.MaxPasses = def.MaxPasses
	}
	if o.Epsilon <= 0 {
		o.Epsilon = def.Epsilon
	}
	return o
}

// Separate relaxes positions in place until every pair of node centers is
// at least MinSeparation apart or the pass cap is hit, and returns the
// number of passes that actually moved something.
//
// Separate is a single discrete post-process: it runs once per layout-stop
// event and never interleaves with the layout engine's own physics. It is
// idempotent — a second call over an already-separated layout returns 0.
//
// Coincident pairs (distance <= Epsilon) are skipped rather than nudged
// apart; pushing them in an arbitrary direction would fabricate structure
// the layout never produced.
func Separate(pos Positions, opts SeparateOptions) int {
	opts = opts.withDefaults()

	// Pair iteration in sorted id order keeps the pass deterministic.
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	passes := 0
	for range opts.MaxPasses {
		moved := false
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				a, b := pos[ids[i]], pos[ids[j]]
				dx := b.X - a.X
				dy := b.Y - a.Y
				dist := math.Hypot(dx, dy)
				if dist >= opts.MinSeparation || dist <= opts.Epsilon {
					continue
				}
				overlap := (opts.MinSeparation - dist) / 2
				ux, uy := dx/dist, dy/dist
				pos[ids[i]] = scene.Point{X: a.X - ux*overlap, Y: a.Y - uy*overlap}
				pos[ids[j]] = scene.Point{X: b.X + ux*overlap, Y: b.Y + uy*overlap}
				moved = true
			}
		}
		if !moved {
			break
		}
		passes++
	}
	return passes
}
