// Package view isolates coordinate-space conversions: the main viewport's
// zoom/pan transform (screen ↔ graph) and the minimap's uniform scale
// projection. Everything here is pure and independent of any rendering
// surface.
package view

import (
	"math"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// Zoom and framing bounds.
const (
	MinScale   = 0.1
	MaxScale   = 4.0
	FitMaxZoom = 2.0
	FitSafety  = 0.85
	FitPadding = 40.0
	FocusScale = 1.5
	ZoomStep   = 1.2
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Transform maps graph space to screen space: screen = graph·K + (TX, TY).
type Transform struct {
	K  float64 `json:"k"`
	TX float64 `json:"x"`
	TY float64 `json:"y"`
}

// Identity is the neutral transform.
func Identity() Transform { return Transform{K: 1} }

// Apply converts a graph-space point to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.TX, y*t.K + t.TY
}

// Invert converts a screen-space point back to graph space.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.TX) / t.K, (y - t.TY) / t.K
}

// VisibleRect returns the graph-space region covered by a canvas of the
// given size under this transform.
func (t Transform) VisibleRect(width, height float64) Rect {
	x0, y0 := t.Invert(0, 0)
	x1, y1 := t.Invert(width, height)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// StepZoom zooms in (dir > 0) or out (dir < 0) by one step, keeping the
// graph point at canvas center fixed.
func (t Transform) StepZoom(dir int, width, height float64) Transform {
	factor := ZoomStep
	if dir < 0 {
		factor = 1 / ZoomStep
	}
	k := clampScale(t.K * factor)
	gx, gy := t.Invert(width/2, height/2)
	return Transform{K: k, TX: width/2 - k*gx, TY: height/2 - k*gy}
}

func clampScale(k float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, k))
}

// Bounds computes the bounding box of all positioned nodes, skipping nodes
// that have not been assigned coordinates yet. ok is false when nothing is
// drawable.
func Bounds(nodes []*graph.Node) (Rect, bool) {
	first := true
	var minX, minY, maxX, maxY float64
	for _, n := range nodes {
		if !n.Positioned {
			continue
		}
		if first {
			minX, maxX = n.X, n.X
			minY, maxY = n.Y, n.Y
			first = false
			continue
		}
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	if first {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// Fit returns the transform that frames the padded bounding box inside the
// canvas at up to FitMaxZoom, scaled down by the safety factor to avoid
// clipping at the edges.
func Fit(b Rect, width, height float64) Transform {
	b.X -= FitPadding
	b.Y -= FitPadding
	b.W += 2 * FitPadding
	b.H += 2 * FitPadding

	k := FitMaxZoom
	if b.W > 0 && b.H > 0 {
		k = math.Min(FitMaxZoom, FitSafety*math.Min(width/b.W, height/b.H))
	}
	k = clampScale(k)

	cx, cy := b.X+b.W/2, b.Y+b.H/2
	return Transform{K: k, TX: width/2 - k*cx, TY: height/2 - k*cy}
}

// Focus returns the transform centering the viewport on a graph-space point
// at the fixed focus zoom level.
func Focus(x, y, width, height float64) Transform {
	return Transform{K: FocusScale, TX: width/2 - FocusScale*x, TY: height/2 - FocusScale*y}
}
