package layout

import "github.com/fabriclens/fabriclens/internal/graph"

// treeNode is a transient hierarchy node. The root is synthetic (node nil)
// and only exists to anchor the layout; its coordinates are discarded.
type treeNode struct {
	node     *graph.Node
	children []*treeNode
}

// buildHierarchy arranges the visible nodes as: synthetic root → one child
// per workspace → that workspace's items as grandchildren. Sources and items
// whose workspace is not part of the visible set attach directly under root.
func buildHierarchy(nodes []*graph.Node) *treeNode {
	root := &treeNode{}
	workspaces := map[string]*treeNode{}

	for _, n := range nodes {
		if n.Kind == graph.KindWorkspace {
			tn := &treeNode{node: n}
			workspaces[n.ID] = tn
			root.children = append(root.children, tn)
		}
	}
	for _, n := range nodes {
		switch n.Kind {
		case graph.KindItem:
			if parent, ok := workspaces[n.WorkspaceID]; ok {
				parent.children = append(parent.children, &treeNode{node: n})
			} else {
				root.children = append(root.children, &treeNode{node: n})
			}
		case graph.KindSource:
			root.children = append(root.children, &treeNode{node: n})
		}
	}
	return root
}

// treePlace assigns layered tree coordinates sized to the canvas and pins
// every real node there. Leaves are distributed across equal horizontal
// slots in traversal order; each parent is centered over its children;
// depth maps to evenly spaced rows.
func treePlace(nodes []*graph.Node, width, height float64) {
	root := buildHierarchy(nodes)
	if len(root.children) == 0 {
		return
	}

	leaves := countLeaves(root)
	depth := maxDepth(root)

	const pad = 40.0
	slotW := (width - 2*pad) / float64(leaves)
	rowH := (height - 2*pad) / float64(depth)

	nextSlot := 0
	var place func(t *treeNode, level int) float64
	place = func(t *treeNode, level int) float64 {
		var x float64
		if len(t.children) == 0 {
			x = pad + slotW*(float64(nextSlot)+0.5)
			nextSlot++
		} else {
			var sum float64
			for _, c := range t.children {
				sum += place(c, level+1)
			}
			x = sum / float64(len(t.children))
		}
		if t.node != nil {
			t.node.Pin(x, pad+rowH*float64(level))
		}
		return x
	}
	place(root, 0)
}

func countLeaves(t *treeNode) int {
	if len(t.children) == 0 {
		return 1
	}
	n := 0
	for _, c := range t.children {
		n += countLeaves(c)
	}
	return n
}

func maxDepth(t *treeNode) int {
	deepest := 0
	for _, c := range t.children {
		if d := maxDepth(c) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}
