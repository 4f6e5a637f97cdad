package view

import (
	"math"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// MinimapConfig fixes the overview surface dimensions.
type MinimapConfig struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Padding float64 `yaml:"padding"`
}

// DefaultMinimapConfig returns the standard overview size.
func DefaultMinimapConfig() MinimapConfig {
	return MinimapConfig{Width: 200, Height: 150, Padding: 10}
}

// MinimapNode is a node projected into minimap coordinates.
type MinimapNode struct {
	ID   string     `json:"id"`
	Kind graph.Kind `json:"kind"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

// MinimapLink is a link segment projected into minimap coordinates.
type MinimapLink struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Minimap is one read-only overview frame: every visible positioned node
// and link at minimap scale, plus the main viewport's visible region.
type Minimap struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Nodes    []MinimapNode `json:"nodes"`
	Links    []MinimapLink `json:"links"`
	Viewport Rect          `json:"viewport"`
}

// ProjectMinimap maps the visible graph and the current viewport into the
// fixed minimap surface. The scale is uniform: the padded bounding box of
// all positioned nodes fits both minimap dimensions, centered. The viewport
// rectangle is derived by inverting the main zoom/pan transform over the
// canvas and projecting the resulting graph-space region.
func ProjectMinimap(snap *graph.Snapshot, t Transform, canvasW, canvasH float64, cfg MinimapConfig) Minimap {
	m := Minimap{Width: cfg.Width, Height: cfg.Height}
	if snap == nil {
		return m
	}

	b, ok := Bounds(snap.Nodes)
	if !ok {
		return m
	}
	b.X -= cfg.Padding
	b.Y -= cfg.Padding
	b.W += 2 * cfg.Padding
	b.H += 2 * cfg.Padding

	scale := 1.0
	if b.W > 0 && b.H > 0 {
		scale = math.Min(cfg.Width/b.W, cfg.Height/b.H)
	}
	ox := (cfg.Width-scale*b.W)/2 - scale*b.X
	oy := (cfg.Height-scale*b.H)/2 - scale*b.Y

	project := func(x, y float64) (float64, float64) {
		return x*scale + ox, y*scale + oy
	}

	for _, n := range snap.Nodes {
		if !n.Positioned {
			continue
		}
		x, y := project(n.X, n.Y)
		m.Nodes = append(m.Nodes, MinimapNode{ID: n.ID, Kind: n.Kind, X: x, Y: y})
	}
	for _, l := range snap.Links {
		if l.Source == nil || l.Target == nil || !l.Source.Positioned || !l.Target.Positioned {
			continue
		}
		x1, y1 := project(l.Source.X, l.Source.Y)
		x2, y2 := project(l.Target.X, l.Target.Y)
		m.Links = append(m.Links, MinimapLink{X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	vis := t.VisibleRect(canvasW, canvasH)
	vx, vy := project(vis.X, vis.Y)
	m.Viewport = Rect{X: vx, Y: vy, W: vis.W * scale, H: vis.H * scale}

	return m
}
