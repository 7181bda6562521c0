package layout

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/Rishikoli/chaingraph/pkg/scene"
)

// ForceOptions tunes the force-directed simulation.
// The zero value is not usable; use DefaultForceOptions as a base.
type ForceOptions struct {
	// IdealEdgeLength is the rest length of the spring between connected nodes.
	IdealEdgeLength float64
	// Repulsion scales the pairwise push between all nodes.
	Repulsion float64
	// Gravity pulls nodes toward their component's centroid to prevent drift.
	Gravity float64
	// ComponentSpacing is the gap left between disconnected components
	// when they are packed side by side after convergence.
	ComponentSpacing float64
	// CoolingFactor shrinks the per-frame displacement cap; must be in (0,1).
	CoolingFactor float64
	// Randomize scatters the initial placement. When false, initialization
	// is a deterministic circle so repeated runs produce the same clusters
	// and relative ordering.
	Randomize bool
	// Seed drives the scatter when Randomize is set.
	Seed uint64
	// MaxIterations caps the simulation length.
	MaxIterations int
}

// DefaultForceOptions returns the documented defaults.
// Physics constants follow the usual spring/repulsion/damping shape of
// interactive graph viewers; they are configuration, not hardcoded behavior.
func DefaultForceOptions() ForceOptions {
	return ForceOptions{
		IdealEdgeLength:  120,
		Repulsion:        4500,
		Gravity:          0.05,
		ComponentSpacing: 80,
		CoolingFactor:    0.95,
		Randomize:        false,
		Seed:             42,
		MaxIterations:    300,
	}
}

// ForceEngine is the default layout strategy. It runs a Fruchterman-
// Reingold style simulation per connected component and packs the
// components side by side.
type ForceEngine struct {
	Options ForceOptions
}

// NewForceEngine creates a force engine with the given options.
// Zero-valued fields fall back to DefaultForceOptions.
func NewForceEngine(opts ForceOptions) *ForceEngine {
	def := DefaultForceOptions()
	if opts.IdealEdgeLength <= 0 {
		opts.IdealEdgeLength = def.IdealEdgeLength
	}
	if opts.Repulsion <= 0 {
		opts.Repulsion = def.Repulsion
	}
	if opts.Gravity <= 0 {
		opts.Gravity = def.Gravity
	}
	if opts.ComponentSpacing <= 0 {
		opts.ComponentSpacing = def.ComponentSpacing
	}
	if opts.CoolingFactor <= 0 || opts.CoolingFactor >= 1 {
		opts.CoolingFactor = def.CoolingFactor
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Seed == 0 {
		opts.Seed = def.Seed
	}
	return &ForceEngine{Options: opts}
}

// Name returns "force".
func (e *ForceEngine) Name() string { return StrategyForce }

// Compute runs the simulation to convergence.
func (e *ForceEngine) Compute(ctx context.Context, s *scene.Scene) (Positions, error) {
	run := e.Start(s)
	for run.Step() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
	return run.Positions(), nil
}

// Start begins a frame-sliced simulation over the scene.
func (e *ForceEngine) Start(s *scene.Scene) Animation {
	return newSimulation(s, e.Options)
}

var _ Engine = (*ForceEngine)(nil)
var _ Stepper = (*ForceEngine)(nil)

// =============================================================================
// Simulation
// =============================================================================

type simulation struct {
	opts  ForceOptions
	ids   []string
	index map[string]int
	pos   []scene.Point
	edges [][2]int // index pairs
	comp  []int    // component id per node
	ncomp int

	temperature float64
	iteration   int
	done        bool
}

func newSimulation(s *scene.Scene, opts ForceOptions) *simulation {
	nodes := s.Nodes()
	sim := &simulation{
		opts:  opts,
		ids:   make([]string, len(nodes)),
		index: make(map[string]int, len(nodes)),
		pos:   make([]scene.Point, len(nodes)),
	}

	// Stable node order keeps unrandomized runs repeatable in structure.
	ordered := slices.Clone(nodes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i, n := range ordered {
		sim.ids[i] = n.ID
		sim.index[n.ID] = i
	}
	for _, e := range s.Edges() {
		from, okF := sim.index[e.From]
		to, okT := sim.index[e.To]
		if okF && okT && from != to {
			sim.edges = append(sim.edges, [2]int{from, to})
		}
	}

	sim.assignComponents()
	sim.initialize(ordered)
	sim.temperature = opts.IdealEdgeLength
	if len(nodes) < 2 {
		sim.done = true
	}
	return sim
}

func (sim *simulation) assignComponents() {
	n := len(sim.ids)
	sim.comp = make([]int, n)
	for i := range sim.comp {
		sim.comp[i] = -1
	}
	adj := make([][]int, n)
	for _, e := range sim.edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}

	id := 0
	for start := range n {
		if sim.comp[start] != -1 {
			continue
		}
		queue := []int{start}
		sim.comp[start] = id
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if sim.comp[next] == -1 {
					sim.comp[next] = id
					queue = append(queue, next)
				}
			}
		}
		id++
	}
	sim.ncomp = id
}

// initialize places nodes on a deterministic circle, scatters them when
// randomization is enabled, and lets explicit stored positions win.
func (sim *simulation) initialize(ordered []scene.NodeElement) {
	n := len(sim.ids)
	radius := sim.opts.IdealEdgeLength * math.Max(1, float64(n)/math.Pi)

	var rng *rand.Rand
	if sim.opts.Randomize {
		rng = rand.New(rand.NewPCG(sim.opts.Seed, sim.opts.Seed^0xbadc0ffee))
	}

	for i := range n {
		if rng != nil {
			sim.pos[i] = scene.Point{
				X: (rng.Float64()*2 - 1) * radius,
				Y: (rng.Float64()*2 - 1) * radius,
			}
		} else {
			angle := 2 * math.Pi * float64(i) / float64(max(n, 1))
			sim.pos[i] = scene.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
		}
	}

	// Stored coordinates seed the simulation but do not constrain it.
	for _, el := range ordered {
		if el.Position != nil {
			sim.pos[sim.index[el.ID]] = *el.Position
		}
	}
}

// Step advances one frame of the simulation.
func (sim *simulation) Step() bool {
	if sim.done {
		return false
	}
	n := len(sim.ids)
	disp := make([]scene.Point, n)
	k := sim.opts.IdealEdgeLength

	// Repulsion between every pair within the same component.
	for i := range n {
		for j := i + 1; j < n; j++ {
			if sim.comp[i] != sim.comp[j] {
				continue
			}
			dx := sim.pos[j].X - sim.pos[i].X
			dy := sim.pos[j].Y - sim.pos[i].Y
			distSq := dx*dx + dy*dy
			if distSq < 1e-6 {
				// Coincident points repel along a fixed axis.
				dx, dy, distSq = 0.1, 0.1, 0.02
			}
			dist := math.Sqrt(distSq)
			force := sim.opts.Repulsion / distSq
			fx, fy := dx/dist*force, dy/dist*force
			disp[i].X -= fx
			disp[i].Y -= fy
			disp[j].X += fx
			disp[j].Y += fy
		}
	}

	// Spring attraction along edges.
	for _, e := range sim.edges {
		a, b := e[0], e[1]
		dx := sim.pos[b].X - sim.pos[a].X
		dy := sim.pos[b].Y - sim.pos[a].Y
		dist := math.Hypot(dx, dy)
		if dist < 1e-9 {
			continue
		}
		force := (dist - k) / k
		fx, fy := dx/dist*force*k*0.5, dy/dist*force*k*0.5
		disp[a].X += fx
		disp[a].Y += fy
		disp[b].X -= fx
		disp[b].Y -= fy
	}

	// Gravity toward the component centroid.
	centroids := sim.centroids()
	for i := range n {
		c := centroids[sim.comp[i]]
		disp[i].X += (c.X - sim.pos[i].X) * sim.opts.Gravity
		disp[i].Y += (c.Y - sim.pos[i].Y) * sim.opts.Gravity
	}

	// Apply displacements capped by the current temperature.
	for i := range n {
		d := math.Hypot(disp[i].X, disp[i].Y)
		if d < 1e-9 {
			continue
		}
		step := math.Min(d, sim.temperature)
		sim.pos[i].X += disp[i].X / d * step
		sim.pos[i].Y += disp[i].Y / d * step
	}

	sim.temperature *= sim.opts.CoolingFactor
	sim.iteration++
	if sim.iteration >= sim.opts.MaxIterations || sim.temperature < 0.5 {
		sim.packComponents()
		sim.done = true
	}
	return !sim.done
}

func (sim *simulation) centroids() []scene.Point {
	sums := make([]scene.Point, sim.ncomp)
	counts := make([]int, sim.ncomp)
	for i, c := range sim.comp {
		sums[c].X += sim.pos[i].X
		sums[c].Y += sim.pos[i].Y
		counts[c]++
	}
	for c := range sums {
		if counts[c] > 0 {
			sums[c].X /= float64(counts[c])
			sums[c].Y /= float64(counts[c])
		}
	}
	return sums
}

// packComponents arranges disconnected components left to right with the
// configured spacing, vertically centered on a shared axis.
func (sim *simulation) packComponents() {
	if sim.ncomp <= 1 {
		return
	}
	bounds := make([]scene.Rect, sim.ncomp)
	seen := make([]bool, sim.ncomp)
	for i, c := range sim.comp {
		p := sim.pos[i]
		if !seen[c] {
			bounds[c] = scene.Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			seen[c] = true
			continue
		}
		bounds[c].MinX = min(bounds[c].MinX, p.X)
		bounds[c].MinY = min(bounds[c].MinY, p.Y)
		bounds[c].MaxX = max(bounds[c].MaxX, p.X)
		bounds[c].MaxY = max(bounds[c].MaxY, p.Y)
	}

	cursor := 0.0
	offsets := make([]scene.Point, sim.ncomp)
	for c := range sim.ncomp {
		offsets[c] = scene.Point{
			X: cursor - bounds[c].MinX,
			Y: -bounds[c].Center().Y,
		}
		cursor += bounds[c].Width() + sim.opts.ComponentSpacing
	}
	for i, c := range sim.comp {
		sim.pos[i].X += offsets[c].X
		sim.pos[i].Y += offsets[c].Y
	}
}

// Positions returns the current coordinates keyed by element id.
func (sim *simulation) Positions() Positions {
	out := make(Positions, len(sim.ids))
	for i, id := range sim.ids {
		out[id] = sim.pos[i]
	}
	return out
}
