package layout

import (
	"fmt"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// Mode selects which algorithm owns node position assignment.
type Mode string

const (
	ModeForce  Mode = "force"
	ModeRadial Mode = "radial"
	ModeTree   Mode = "tree"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeForce, ModeRadial, ModeTree:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown layout mode %q", s)
}

// dragAlphaTarget keeps the solver hot while a node is being dragged.
const dragAlphaTarget = 0.3

// paintAlpha is the brief run used by the deterministic layouts: every node
// is already pinned, the solver only ticks a few frames so the new
// positions get rendered.
const paintAlpha = 0.3

// Engine is the layout mode state machine. Transitions happen only through
// SetMode; switching tears down the running solver before installing the
// new mode. The engine performs no locking of its own — the owning session
// serializes all calls, including Step from the scheduler tick.
type Engine struct {
	cfg  ForceConfig
	sim  *Simulation
	mode Mode

	nodes []*graph.Node
	links []*graph.Link

	// held tracks nodes with an in-progress drag; they stay pinned across
	// a switch back to force mode.
	held map[string]bool

	width, height float64
}

// NewEngine creates an engine in force mode for the given canvas.
func NewEngine(cfg ForceConfig, width, height float64) *Engine {
	return &Engine{
		cfg:    cfg,
		sim:    NewSimulation(cfg, width, height),
		mode:   ModeForce,
		held:   make(map[string]bool),
		width:  width,
		height: height,
	}
}

// Mode returns the active layout mode.
func (e *Engine) Mode() Mode { return e.mode }

// State exposes the solver lifecycle state.
func (e *Engine) State() SimState { return e.sim.State() }

// Active reports whether the solver still has ticks to run.
func (e *Engine) Active() bool { return e.sim.State() == SimRunning }

// Alpha exposes the solver temperature.
func (e *Engine) Alpha() float64 { return e.sim.Alpha() }

// SetSnapshot installs a new visible node/link set and re-runs the current
// mode's placement at the given reheat temperature (force mode only; the
// deterministic modes always repaint fully).
func (e *Engine) SetSnapshot(nodes []*graph.Node, links []*graph.Link, reheat float64) {
	e.nodes = nodes
	e.links = links
	e.restart(reheat)
}

// SetMode switches the layout algorithm. Switching away from force pins
// every node at its deterministic slot; switching back to force unpins all
// nodes except those with an in-progress drag.
func (e *Engine) SetMode(m Mode) {
	if m == e.mode {
		return
	}
	e.mode = m
	e.restart(1)
}

// Resize updates the canvas dimensions. Deterministic layouts are recomputed
// for the new canvas; force mode just re-centers.
func (e *Engine) Resize(width, height float64) {
	e.width, e.height = width, height
	e.sim.Resize(width, height)
	if e.mode != ModeForce {
		e.restart(1)
	}
}

// Step advances the active solver by one tick.
func (e *Engine) Step() bool { return e.sim.Step() }

func (e *Engine) restart(reheat float64) {
	e.sim.Stop()

	switch e.mode {
	case ModeForce:
		for _, n := range e.nodes {
			if !e.held[n.ID] {
				n.Unpin()
			}
		}
		e.sim.SetLinkStrength(e.cfg.LinkStrength)
		e.sim.SetGraph(e.nodes, e.links)
		e.sim.Start(reheat)

	case ModeRadial:
		radialPlace(e.nodes, e.width, e.height)
		e.sim.SetLinkStrength(0)
		e.sim.SetGraph(e.nodes, e.links)
		e.sim.Start(paintAlpha)

	case ModeTree:
		treePlace(e.nodes, e.width, e.height)
		e.sim.SetLinkStrength(0)
		e.sim.SetGraph(e.nodes, e.links)
		e.sim.Start(paintAlpha)
	}
}

// DragStart pins the node at its current position and, in force mode,
// raises the activity target so the solver keeps iterating around it.
func (e *Engine) DragStart(n *graph.Node) {
	e.held[n.ID] = true
	n.Pin(n.X, n.Y)
	if e.mode == ModeForce {
		e.sim.SetAlphaTarget(dragAlphaTarget)
		if e.sim.State() != SimRunning {
			e.sim.Start(dragAlphaTarget)
		}
	}
}

// DragMove updates the pinned coordinates to the pointer location. The
// solver treats them as authoritative on every tick.
func (e *Engine) DragMove(n *graph.Node, x, y float64) {
	n.FX, n.FY = x, y
	n.X, n.Y = x, y
}

// DragEnd releases the node back to the simulation in force mode; in the
// deterministic modes the node stays where the user left it.
func (e *Engine) DragEnd(n *graph.Node) {
	delete(e.held, n.ID)
	if e.mode == ModeForce {
		e.sim.SetAlphaTarget(0)
		n.Unpin()
	}
}
