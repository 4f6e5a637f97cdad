package layout

import (
	"math"
	"testing"

	"github.com/fabriclens/fabriclens/internal/graph"
)

func testNodes() ([]*graph.Node, []*graph.Link) {
	w := &graph.Node{ID: "W1", Label: "Analytics", Kind: graph.KindWorkspace}
	i1 := &graph.Node{ID: "I1", Label: "Lakehouse", Kind: graph.KindItem, ItemType: "Lakehouse", WorkspaceID: "W1"}
	i2 := &graph.Node{ID: "I2", Label: "Notebook", Kind: graph.KindItem, ItemType: "Notebook", WorkspaceID: "W1"}
	s := &graph.Node{ID: "S1", Label: "ADLS", Kind: graph.KindSource, SourceType: "ADLS"}
	nodes := []*graph.Node{w, i1, i2, s}
	links := []*graph.Link{
		{ID: "E1", SourceID: "I1", TargetID: "S1", Source: i1, Target: s},
		{ID: "E2", SourceID: "I2", TargetID: "I1", Source: i2, Target: i1},
	}
	return nodes, links
}

func TestSimSeedsUnpositionedNodes(t *testing.T) {
	nodes, links := testNodes()
	sim := NewSimulation(DefaultForceConfig(), 800, 600)
	sim.SetGraph(nodes, links)

	for _, n := range nodes {
		if !n.Positioned {
			t.Errorf("node %s not seeded", n.ID)
		}
	}

	// Seeds spiral outward from canvas center, all distinct.
	seen := map[[2]float64]bool{}
	for _, n := range nodes {
		key := [2]float64{n.X, n.Y}
		if seen[key] {
			t.Errorf("node %s seeded on top of another", n.ID)
		}
		seen[key] = true
	}
}

func TestSimKeepsExistingCoordinates(t *testing.T) {
	nodes, links := testNodes()
	nodes[0].X, nodes[0].Y, nodes[0].Positioned = 123, 456, true

	sim := NewSimulation(DefaultForceConfig(), 800, 600)
	sim.SetGraph(nodes, links)

	if nodes[0].X != 123 || nodes[0].Y != 456 {
		t.Errorf("positioned node moved during SetGraph: (%v, %v)", nodes[0].X, nodes[0].Y)
	}
}

func TestSimSettles(t *testing.T) {
	nodes, links := testNodes()
	sim := NewSimulation(DefaultForceConfig(), 800, 600)
	sim.SetGraph(nodes, links)
	sim.Start(1)

	if sim.State() != SimRunning {
		t.Fatalf("state = %v, want running", sim.State())
	}

	// Default decay reaches alphaMin in ~300 ticks.
	steps := 0
	for sim.Step() {
		steps++
		if steps > 1000 {
			t.Fatal("simulation never settled")
		}
	}
	if sim.State() != SimSettled {
		t.Errorf("state = %v, want settled", sim.State())
	}
	if sim.Alpha() >= sim.cfg.AlphaMin {
		t.Errorf("alpha = %v, want below %v", sim.Alpha(), sim.cfg.AlphaMin)
	}
}

func TestSimPinnedNodeStaysPut(t *testing.T) {
	nodes, links := testNodes()
	sim := NewSimulation(DefaultForceConfig(), 800, 600)
	sim.SetGraph(nodes, links)
	nodes[1].Pin(100, 100)
	sim.Start(1)

	for i := 0; i < 50; i++ {
		sim.Step()
	}
	if nodes[1].X != 100 || nodes[1].Y != 100 {
		t.Errorf("pinned node drifted to (%v, %v)", nodes[1].X, nodes[1].Y)
	}
}

func TestSimChargeRepelsUnlinkedNodes(t *testing.T) {
	a := &graph.Node{ID: "A", Kind: graph.KindItem, X: 350, Y: 300, Positioned: true}
	b := &graph.Node{ID: "B", Kind: graph.KindItem, X: 450, Y: 300, Positioned: true}

	// Charge only: zero the centering and collision forces so nothing
	// else moves the pair.
	cfg := DefaultForceConfig()
	cfg.CenterStrength = 0
	cfg.AxisStrength = 0
	cfg.CollideRadius = 0

	sim := NewSimulation(cfg, 800, 600)
	sim.SetGraph([]*graph.Node{a, b}, nil)
	sim.Start(1)

	before := math.Hypot(b.X-a.X, b.Y-a.Y)
	for i := 0; i < 10; i++ {
		sim.Step()
	}
	after := math.Hypot(b.X-a.X, b.Y-a.Y)

	if after <= before {
		t.Errorf("unlinked nodes moved closer under charge: %v -> %v", before, after)
	}
}

func TestSimLinkedPairSettlesNearLinkDistance(t *testing.T) {
	a := &graph.Node{ID: "A", Kind: graph.KindItem, X: 250, Y: 300, Positioned: true}
	b := &graph.Node{ID: "B", Kind: graph.KindItem, X: 550, Y: 300, Positioned: true}
	links := []*graph.Link{{ID: "E", SourceID: "A", TargetID: "B", Source: a, Target: b}}

	// Spring only: the pair should contract from 300 apart to the rest
	// length.
	cfg := DefaultForceConfig()
	cfg.ChargeStrength = 0
	cfg.CenterStrength = 0
	cfg.AxisStrength = 0
	cfg.CollideRadius = 0

	sim := NewSimulation(cfg, 800, 600)
	sim.SetGraph([]*graph.Node{a, b}, links)
	sim.Start(1)
	for sim.Step() {
	}

	got := math.Hypot(b.X-a.X, b.Y-a.Y)
	if math.Abs(got-cfg.LinkDistance) > 5 {
		t.Errorf("settled separation = %v, want near %v", got, cfg.LinkDistance)
	}
}

func TestSimAlphaTargetKeepsRunning(t *testing.T) {
	nodes, links := testNodes()
	sim := NewSimulation(DefaultForceConfig(), 800, 600)
	sim.SetGraph(nodes, links)
	sim.Start(1)
	sim.SetAlphaTarget(0.3)

	for i := 0; i < 500; i++ {
		if !sim.Step() {
			t.Fatal("solver settled despite nonzero alpha target")
		}
	}
	// Alpha converges toward the target, never below min.
	if sim.Alpha() < 0.25 {
		t.Errorf("alpha = %v, want near 0.3", sim.Alpha())
	}
}

func TestRadialPlaceRings(t *testing.T) {
	var items []*graph.Node
	for _, id := range []string{"A", "B", "C", "D"} {
		items = append(items, &graph.Node{ID: id, Kind: graph.KindItem})
	}
	w := &graph.Node{ID: "W", Kind: graph.KindWorkspace}
	s := &graph.Node{ID: "S", Kind: graph.KindSource}
	all := append([]*graph.Node{w, s}, items...)

	width, height := 800.0, 600.0
	radialPlace(all, width, height)

	cx, cy := width/2, height/2
	maxR := math.Min(width, height)/2 - 40

	dist := func(n *graph.Node) float64 {
		return math.Hypot(n.X-cx, n.Y-cy)
	}

	if d := dist(w); math.Abs(d-maxR*0.30) > 1e-9 {
		t.Errorf("workspace radius = %v, want %v", d, maxR*0.30)
	}
	if d := dist(s); math.Abs(d-maxR*0.90) > 1e-9 {
		t.Errorf("source radius = %v, want %v", d, maxR*0.90)
	}
	for _, n := range items {
		if d := dist(n); math.Abs(d-maxR*0.60) > 1e-9 {
			t.Errorf("item %s radius = %v, want %v", n.ID, d, maxR*0.60)
		}
	}

	// Four items: first at the top, then every 90° clockwise.
	r := maxR * 0.60
	wantAngles := []float64{-math.Pi / 2, 0, math.Pi / 2, math.Pi}
	for i, n := range items {
		wx := cx + r*math.Cos(wantAngles[i])
		wy := cy + r*math.Sin(wantAngles[i])
		if math.Abs(n.X-wx) > 1e-9 || math.Abs(n.Y-wy) > 1e-9 {
			t.Errorf("item %d at (%v, %v), want (%v, %v)", i, n.X, n.Y, wx, wy)
		}
	}

	for _, n := range all {
		if !n.Pinned {
			t.Errorf("node %s not pinned after radial placement", n.ID)
		}
	}
}

func TestTreePlaceHierarchy(t *testing.T) {
	nodes, _ := testNodes()
	treePlace(nodes, 800, 600)

	byID := map[string]*graph.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
		if !n.Pinned {
			t.Errorf("node %s not pinned after tree placement", n.ID)
		}
	}

	w, i1, i2, s := byID["W1"], byID["I1"], byID["I2"], byID["S1"]

	// Workspace row above its items; the source hangs directly under root
	// so it shares the workspace row.
	if w.Y >= i1.Y || w.Y >= i2.Y {
		t.Errorf("workspace y = %v, items at %v, %v", w.Y, i1.Y, i2.Y)
	}
	if s.Y != w.Y {
		t.Errorf("source y = %v, want workspace row %v", s.Y, w.Y)
	}

	// Parent centered over its children.
	mid := (i1.X + i2.X) / 2
	if math.Abs(w.X-mid) > 1e-9 {
		t.Errorf("workspace x = %v, want children midpoint %v", w.X, mid)
	}
}

func TestTreePlaceOrphanItemUnderRoot(t *testing.T) {
	orphan := &graph.Node{ID: "I9", Kind: graph.KindItem, WorkspaceID: "GONE"}
	w := &graph.Node{ID: "W1", Kind: graph.KindWorkspace}
	member := &graph.Node{ID: "I1", Kind: graph.KindItem, WorkspaceID: "W1"}
	treePlace([]*graph.Node{w, member, orphan}, 800, 600)

	if orphan.Y != w.Y {
		t.Errorf("orphan y = %v, want root row %v", orphan.Y, w.Y)
	}
	if member.Y <= w.Y {
		t.Errorf("member y = %v, want below %v", member.Y, w.Y)
	}
}

func TestEngineModeSwitchPinsAndUnpins(t *testing.T) {
	nodes, links := testNodes()
	e := NewEngine(DefaultForceConfig(), 800, 600)
	e.SetSnapshot(nodes, links, 1)

	e.SetMode(ModeRadial)
	for _, n := range nodes {
		if !n.Pinned {
			t.Errorf("node %s not pinned in radial mode", n.ID)
		}
	}

	e.SetMode(ModeForce)
	for _, n := range nodes {
		if n.Pinned {
			t.Errorf("node %s still pinned after switch to force", n.ID)
		}
	}
	if e.State() != SimRunning {
		t.Errorf("state = %v, want running after mode switch", e.State())
	}
}

func TestEngineDragSurvivesModeSwitch(t *testing.T) {
	nodes, links := testNodes()
	e := NewEngine(DefaultForceConfig(), 800, 600)
	e.SetSnapshot(nodes, links, 1)

	dragged := nodes[1]
	e.DragStart(dragged)
	e.DragMove(dragged, 50, 60)

	// A held node stays pinned across a round trip through radial mode.
	e.SetMode(ModeRadial)
	e.SetMode(ModeForce)
	if !dragged.Pinned {
		t.Error("held node lost its pin across mode switch")
	}
	for _, n := range nodes {
		if n != dragged && n.Pinned {
			t.Errorf("node %s should be unpinned in force mode", n.ID)
		}
	}

	e.DragEnd(dragged)
	if dragged.Pinned {
		t.Error("node still pinned after drag end in force mode")
	}
}

func TestEngineDragEndKeepsPinInRadial(t *testing.T) {
	nodes, links := testNodes()
	e := NewEngine(DefaultForceConfig(), 800, 600)
	e.SetSnapshot(nodes, links, 1)
	e.SetMode(ModeRadial)

	n := nodes[2]
	e.DragStart(n)
	e.DragMove(n, 10, 20)
	e.DragEnd(n)

	if !n.Pinned || n.X != 10 || n.Y != 20 {
		t.Errorf("radial drag should leave node pinned at drop point, got pinned=%v (%v, %v)", n.Pinned, n.X, n.Y)
	}
}

func TestParseMode(t *testing.T) {
	for _, ok := range []string{"force", "radial", "tree"} {
		if _, err := ParseMode(ok); err != nil {
			t.Errorf("ParseMode(%q) = %v", ok, err)
		}
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Error("ParseMode(spiral) should fail")
	}
}
