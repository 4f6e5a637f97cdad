package view

import (
	"testing"

	"github.com/fabriclens/fabriclens/internal/graph"
)

func minimapSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	g := graph.Build(&graph.Payload{
		Workspaces: []graph.WorkspaceRecord{{ID: "W1", Name: "Analytics"}},
		Items: []graph.ItemRecord{
			{ID: "I1", Name: "Lakehouse", ItemType: "Lakehouse", WorkspaceID: "W1"},
		},
		Edges: []graph.EdgeRecord{
			{ID: "E1", SourceID: "W1", TargetID: "I1", EdgeType: "contains"},
		},
	})
	coords := map[string][2]float64{"W1": {0, 0}, "I1": {100, 100}}
	for _, n := range g.Nodes {
		c := coords[n.ID]
		n.X, n.Y, n.Positioned = c[0], c[1], true
	}
	return graph.Apply(g, graph.NewFilterState(g))
}

func TestProjectMinimap(t *testing.T) {
	snap := minimapSnapshot(t)
	cfg := DefaultMinimapConfig()
	m := ProjectMinimap(snap, Identity(), 800, 600, cfg)

	if m.Width != cfg.Width || m.Height != cfg.Height {
		t.Errorf("surface = %v x %v", m.Width, m.Height)
	}
	if len(m.Nodes) != 2 {
		t.Fatalf("projected nodes = %d, want 2", len(m.Nodes))
	}
	if len(m.Links) != 1 {
		t.Fatalf("projected links = %d, want 1", len(m.Links))
	}

	// Everything lands inside the minimap surface.
	for _, n := range m.Nodes {
		if n.X < 0 || n.X > cfg.Width || n.Y < 0 || n.Y > cfg.Height {
			t.Errorf("node %s projected off-surface to (%v, %v)", n.ID, n.X, n.Y)
		}
	}

	// Uniform scale: the projected diagonal keeps its aspect ratio.
	var w1, i1 MinimapNode
	for _, n := range m.Nodes {
		switch n.ID {
		case "W1":
			w1 = n
		case "I1":
			i1 = n
		}
	}
	dx, dy := i1.X-w1.X, i1.Y-w1.Y
	if !almost(dx, dy) {
		t.Errorf("projection not uniform: dx = %v, dy = %v", dx, dy)
	}

	// The link endpoints coincide with the projected nodes.
	l := m.Links[0]
	if !almost(l.X1, w1.X) || !almost(l.Y1, w1.Y) || !almost(l.X2, i1.X) || !almost(l.Y2, i1.Y) {
		t.Errorf("link endpoints = %+v, nodes at (%v,%v) (%v,%v)", l, w1.X, w1.Y, i1.X, i1.Y)
	}
}

func TestProjectMinimapViewportTracksZoom(t *testing.T) {
	snap := minimapSnapshot(t)
	cfg := DefaultMinimapConfig()

	wide := ProjectMinimap(snap, Transform{K: 0.5}, 800, 600, cfg)
	tight := ProjectMinimap(snap, Transform{K: 2}, 800, 600, cfg)

	// Zooming the main view in shrinks the viewport indicator.
	if tight.Viewport.W >= wide.Viewport.W || tight.Viewport.H >= wide.Viewport.H {
		t.Errorf("viewport did not shrink: wide = %+v, tight = %+v", wide.Viewport, tight.Viewport)
	}
	if wide.Viewport.W/tight.Viewport.W != 4 {
		t.Errorf("viewport ratio = %v, want 4", wide.Viewport.W/tight.Viewport.W)
	}
}

func TestProjectMinimapEmpty(t *testing.T) {
	m := ProjectMinimap(nil, Identity(), 800, 600, DefaultMinimapConfig())
	if len(m.Nodes) != 0 || len(m.Links) != 0 {
		t.Errorf("nil snapshot projected content: %+v", m)
	}

	g := graph.Build(&graph.Payload{})
	empty := graph.Apply(g, graph.NewFilterState(g))
	m = ProjectMinimap(empty, Identity(), 800, 600, DefaultMinimapConfig())
	if len(m.Nodes) != 0 {
		t.Errorf("empty snapshot projected nodes: %+v", m.Nodes)
	}
}
