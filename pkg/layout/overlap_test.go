package layout

import (
	"math"
	"testing"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// minPairDistance returns the smallest distance between any two positions,
// ignoring coincident pairs when skipCoincident is set.
func minPairDistance(pos Positions, skipCoincident bool) float64 {
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	min := math.Inf(1)
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			a, b := pos[ids[i]], pos[ids[j]]
			d := math.Hypot(b.X-a.X, b.Y-a.Y)
			if skipCoincident && d == 0 {
				continue
			}
			if d < min {
				min = d
			}
		}
	}
	return min
}

func TestSeparateEnforcesMinSeparation(t *testing.T) {
	pos := Positions{
		"a": {X: 0, Y: 0},
		"b": {X: 10, Y: 0},
		"c": {X: 20, Y: 5},
		"d": {X: 500, Y: 500},
	}

	passes := Separate(pos, SeparateOptions{MinSeparation: 60, MaxPasses: 4})
	if passes == 0 {
		t.Fatal("Separate should report moving passes for crowded input")
	}
	// The pass cap bounds the relaxation, so a tiny residual violation can
	// remain on crowded input.
	if got := minPairDistance(pos, false); got < 60-0.01 {
		t.Errorf("min pair distance = %v, want ~60", got)
	}
}

func TestSeparateIdempotent(t *testing.T) {
	pos := Positions{
		"a": {X: 0, Y: 0},
		"b": {X: 15, Y: 0},
		"c": {X: 0, Y: 15},
	}
	opts := SeparateOptions{MinSeparation: 60, MaxPasses: 4}

	Separate(pos, opts)
	before := pos.Clone()

	if passes := Separate(pos, opts); passes != 0 {
		t.Errorf("second Separate moved in %d passes, want 0", passes)
	}
	for id, p := range pos {
		if p != before[id] {
			t.Errorf("position %s changed on idempotent pass: %+v → %+v", id, before[id], p)
		}
	}
}

func TestSeparateSkipsCoincidentPairs(t *testing.T) {
	pos := Positions{
		"a": {X: 100, Y: 100},
		"b": {X: 100, Y: 100},
	}

	passes := Separate(pos, SeparateOptions{MinSeparation: 60, MaxPasses: 4})
	if passes != 0 {
		t.Errorf("coincident-only input should terminate without movement, got %d passes", passes)
	}
	if pos["a"] != (scene.Point{X: 100, Y: 100}) || pos["b"] != (scene.Point{X: 100, Y: 100}) {
		t.Error("coincident pair should not be nudged apart")
	}
}

func TestSeparateDeterministic(t *testing.T) {
	build := func() Positions {
		return Positions{
			"n3": {X: 5, Y: 5},
			"n1": {X: 0, Y: 0},
			"n2": {X: 12, Y: -3},
		}
	}

	a := build()
	b := build()
	Separate(a, SeparateOptions{})
	Separate(b, SeparateOptions{})

	for id := range a {
		if a[id] != b[id] {
			t.Errorf("position %s differs between identical runs: %+v vs %+v", id, a[id], b[id])
		}
	}
}

func TestSeparatePassCapBoundsWork(t *testing.T) {
	// A long tight row cannot fully relax in one pass; the cap must still
	// stop the loop.
	pos := Positions{}
	for i := 0; i < 8; i++ {
		pos[string(rune('a'+i))] = scene.Point{X: float64(i), Y: 0}
	}

	passes := Separate(pos, SeparateOptions{MinSeparation: 60, MaxPasses: 1})
	if passes != 1 {
		t.Errorf("passes = %d, want exactly the cap", passes)
	}
}

func TestDefaultSeparateOptionsApplied(t *testing.T) {
	pos := Positions{
		"a": {X: 0, Y: 0},
		"b": {X: 1, Y: 0},
	}
	Separate(pos, SeparateOptions{}) // zero options fall back to defaults

	if got := minPairDistance(pos, false); got < 60-1e-6 {
		t.Errorf("min pair distance = %v, want default 60", got)
	}
}
