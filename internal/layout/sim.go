// Package layout assigns 2D coordinates to visible graph nodes. It provides
// an iterative force-directed solver plus two deterministic one-shot
// placements (radial rings, layered tree), all orchestrated by an Engine
// that owns the active layout mode.
package layout

import (
	"math"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// SimState is the solver lifecycle state.
type SimState int

const (
	SimIdle SimState = iota
	SimRunning
	SimSettled
)

// ForceConfig tunes the force-directed solver.
type ForceConfig struct {
	// ChargeStrength is the pairwise repulsion strength (negative repels).
	ChargeStrength float64 `yaml:"charge_strength"`
	// ChargeMaxDistance caps the repulsion interaction range to bound cost.
	ChargeMaxDistance float64 `yaml:"charge_max_distance"`
	// LinkDistance is the spring rest length.
	LinkDistance float64 `yaml:"link_distance"`
	// LinkStrength is the aggregate spring strength.
	LinkStrength float64 `yaml:"link_strength"`
	// CollideRadius is the minimum node-to-node separation radius.
	CollideRadius float64 `yaml:"collide_radius"`
	// CenterStrength pulls the whole graph toward canvas center.
	CenterStrength float64 `yaml:"center_strength"`
	// AxisStrength is the weak independent pull toward center on each axis.
	AxisStrength float64 `yaml:"axis_strength"`

	VelocityDecay float64 `yaml:"velocity_decay"`
	AlphaMin      float64 `yaml:"alpha_min"`
	AlphaDecay    float64 `yaml:"alpha_decay"`
}

// DefaultForceConfig returns solver defaults tuned for a few hundred nodes.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		ChargeStrength:    -300,
		ChargeMaxDistance: 400,
		LinkDistance:      120,
		LinkStrength:      0.4,
		CollideRadius:     28,
		CenterStrength:    0.05,
		AxisStrength:      0.02,
		VelocityDecay:     0.6,
		AlphaMin:          0.001,
		AlphaDecay:        1 - math.Pow(0.001, 1.0/300),
	}
}

// Simulation advances a shared set of node positions under competing forces
// until its temperature (alpha) decays below AlphaMin. It has a single
// external mutation surface (Step, Start, Stop, SetAlphaTarget); the caller
// is responsible for serializing access so the tick step remains the only
// writer of node coordinates.
type Simulation struct {
	cfg           ForceConfig
	width, height float64

	nodes []*graph.Node
	links []*graph.Link
	vx    []float64
	vy    []float64
	index map[*graph.Node]int

	linkStrength float64
	alpha        float64
	alphaTarget  float64
	state        SimState
}

// NewSimulation creates an idle solver for the given canvas.
func NewSimulation(cfg ForceConfig, width, height float64) *Simulation {
	return &Simulation{
		cfg:          cfg,
		width:        width,
		height:       height,
		linkStrength: cfg.LinkStrength,
		state:        SimIdle,
	}
}

// initialRadius/initialAngle seed unpositioned nodes on a phyllotaxis
// spiral so the first ticks do not start from a degenerate all-at-origin
// configuration.
const (
	initialRadius = 10.0
	initialAngle  = math.Pi * (3 - 1.7320508075688772) // ~ golden angle
)

// SetGraph installs the node/link working set and resets velocities. Nodes
// that have never been positioned are seeded near canvas center; nodes with
// existing coordinates keep them so filter changes do not scramble an
// already-settled layout.
func (s *Simulation) SetGraph(nodes []*graph.Node, links []*graph.Link) {
	s.nodes = nodes
	s.links = links
	s.vx = make([]float64, len(nodes))
	s.vy = make([]float64, len(nodes))
	s.index = make(map[*graph.Node]int, len(nodes))

	cx, cy := s.width/2, s.height/2
	for i, n := range nodes {
		s.index[n] = i
		if !n.Positioned {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X = cx + r*math.Cos(a)
			n.Y = cy + r*math.Sin(a)
			n.Positioned = true
		}
	}
}

// Resize updates the canvas dimensions used by the centering forces.
func (s *Simulation) Resize(width, height float64) {
	s.width, s.height = width, height
}

// SetLinkStrength overrides the spring strength. Zero disables link forces,
// used by the deterministic layouts that only need the solver to paint.
func (s *Simulation) SetLinkStrength(v float64) { s.linkStrength = v }

// SetAlphaTarget raises or lowers the activity floor. A non-zero target
// keeps the solver iterating (drag interaction); zero lets it settle.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Start moves the solver to Running at the given temperature.
func (s *Simulation) Start(alpha float64) {
	if alpha <= 0 {
		alpha = 1
	}
	s.alpha = alpha
	s.state = SimRunning
}

// Stop halts the solver immediately.
func (s *Simulation) Stop() {
	s.state = SimIdle
	s.alphaTarget = 0
}

// State returns the current lifecycle state.
func (s *Simulation) State() SimState { return s.state }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Step advances the solver by one tick: decay alpha toward the target,
// accumulate forces into velocities, integrate, and copy pinned coordinates
// over. Returns false once the solver is no longer running, at which point
// the state is Settled (natural convergence) or Idle (stopped).
func (s *Simulation) Step() bool {
	if s.state != SimRunning {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	if s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin {
		s.state = SimSettled
		return false
	}

	s.applyLinks()
	s.applyCharge()
	s.applyAxis()
	s.applyCollide()
	s.applyCenter()

	for i, n := range s.nodes {
		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			s.vx[i], s.vy[i] = 0, 0
			continue
		}
		s.vx[i] *= s.cfg.VelocityDecay
		s.vy[i] *= s.cfg.VelocityDecay
		n.X += s.vx[i]
		n.Y += s.vy[i]
	}
	return true
}

// applyLinks pulls linked nodes toward the spring rest length.
func (s *Simulation) applyLinks() {
	if s.linkStrength == 0 {
		return
	}
	for _, l := range s.links {
		si, ok := s.index[l.Source]
		if !ok {
			continue
		}
		ti, ok := s.index[l.Target]
		if !ok {
			continue
		}
		src, tgt := s.nodes[si], s.nodes[ti]
		dx := tgt.X + s.vx[ti] - src.X - s.vx[si]
		dy := tgt.Y + s.vy[ti] - src.Y - s.vy[si]
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dist, dx = 1e-6, 1e-6
		}
		f := (dist - s.cfg.LinkDistance) / dist * s.alpha * s.linkStrength
		s.vx[ti] -= dx * f / 2
		s.vy[ti] -= dy * f / 2
		s.vx[si] += dx * f / 2
		s.vy[si] += dy * f / 2
	}
}

// applyCharge applies pairwise inverse-distance repulsion, skipping pairs
// beyond the interaction cap.
func (s *Simulation) applyCharge() {
	maxSq := s.cfg.ChargeMaxDistance * s.cfg.ChargeMaxDistance
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			distSq := dx*dx + dy*dy
			if distSq > maxSq {
				continue
			}
			if distSq == 0 {
				distSq, dx = 1e-6, 1e-3
			}
			w := -s.cfg.ChargeStrength * s.alpha / distSq
			s.vx[j] += dx * w
			s.vy[j] += dy * w
			s.vx[i] -= dx * w
			s.vy[i] -= dy * w
		}
	}
}

// applyAxis nudges every node toward canvas center on each axis
// independently to prevent disconnected components drifting away.
func (s *Simulation) applyAxis() {
	cx, cy := s.width/2, s.height/2
	for i, n := range s.nodes {
		s.vx[i] += (cx - n.X) * s.cfg.AxisStrength * s.alpha
		s.vy[i] += (cy - n.Y) * s.cfg.AxisStrength * s.alpha
	}
}

// applyCollide separates overlapping nodes to the minimum radius.
func (s *Simulation) applyCollide() {
	minDist := s.cfg.CollideRadius * 2
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				continue
			}
			if dist == 0 {
				dist, dx = 1e-6, 1e-3
			}
			push := (minDist - dist) / dist / 2
			s.vx[j] += dx * push
			s.vy[j] += dy * push
			s.vx[i] -= dx * push
			s.vy[i] -= dy * push
		}
	}
}

// applyCenter shifts the whole graph so its centroid tracks canvas center.
func (s *Simulation) applyCenter() {
	if len(s.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range s.nodes {
		sx += n.X
		sy += n.Y
	}
	dx := (s.width/2 - sx/float64(len(s.nodes))) * s.cfg.CenterStrength
	dy := (s.height/2 - sy/float64(len(s.nodes))) * s.cfg.CenterStrength
	for _, n := range s.nodes {
		if n.Pinned {
			continue
		}
		n.X += dx
		n.Y += dy
	}
}
