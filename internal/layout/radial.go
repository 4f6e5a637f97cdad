package layout

import (
	"math"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// Ring radius fractions per node kind: workspaces form the inner ring,
// items the middle, sources the outer.
const (
	ringWorkspace = 0.30
	ringItem      = 0.60
	ringSource    = 0.90
)

// radialPlace pins every node onto a concentric ring for its kind, spread
// evenly by angle starting at the top (-90°) and proceeding clockwise.
func radialPlace(nodes []*graph.Node, width, height float64) {
	cx, cy := width/2, height/2
	maxR := math.Min(width, height)/2 - 40
	if maxR < 20 {
		maxR = 20
	}

	byKind := map[graph.Kind][]*graph.Node{}
	for _, n := range nodes {
		byKind[n.Kind] = append(byKind[n.Kind], n)
	}

	place := func(ring []*graph.Node, radius float64) {
		n := len(ring)
		for i, node := range ring {
			angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
			node.Pin(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle))
		}
	}

	place(byKind[graph.KindWorkspace], maxR*ringWorkspace)
	place(byKind[graph.KindItem], maxR*ringItem)
	place(byKind[graph.KindSource], maxR*ringSource)
}
