// Package graph holds the lineage graph model: typed nodes and links built
// from the raw provider payload, and the filter engine that derives the
// visible snapshot eligible for layout and rendering.
package graph

// Kind tags the node variant.
type Kind string

const (
	KindWorkspace Kind = "workspace"
	KindItem      Kind = "item"
	KindSource    Kind = "source"
)

// Node is a visual entity in the lineage graph. Exactly one variant applies,
// selected by Kind: ItemType/WorkspaceID are meaningful only for KindItem,
// SourceType only for KindSource. WorkspaceID is a weak reference (relation,
// not ownership).
//
// X/Y are owned by the active layout and are meaningless until Positioned is
// set; consumers must skip unpositioned nodes rather than fail. When Pinned,
// FX/FY are authoritative and the simulation must not move the node.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`

	ItemType    string `json:"item_type,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	SourceType  string `json:"source_type,omitempty"`

	// Raw keeps the wire record the node was built from.
	Raw any `json:"-"`

	X, Y       float64 `json:"-"`
	Positioned bool    `json:"-"`
	Pinned     bool    `json:"-"`
	FX, FY     float64 `json:"-"`
}

// Pin fixes the node at (x, y). The simulation copies pinned coordinates
// onto X/Y on every tick.
func (n *Node) Pin(x, y float64) {
	n.Pinned = true
	n.FX, n.FY = x, y
	n.X, n.Y = x, y
	n.Positioned = true
}

// Unpin releases the node back to free simulation movement.
func (n *Node) Unpin() {
	n.Pinned = false
}

// Link is a directed lineage edge. SourceID/TargetID are authoritative;
// Source/Target are resolved once at build time and are nil when the
// referenced id does not exist in the loaded graph (malformed reference).
type Link struct {
	ID       string         `json:"id"`
	SourceID string         `json:"source"`
	TargetID string         `json:"target"`
	Source   *Node          `json:"-"`
	Target   *Node          `json:"-"`
	EdgeType string         `json:"edge_type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SourceKey returns the source endpoint id whether the link carries a raw id
// or only a resolved node.
func (l *Link) SourceKey() string {
	if l.SourceID != "" {
		return l.SourceID
	}
	if l.Source != nil {
		return l.Source.ID
	}
	return ""
}

// TargetKey returns the target endpoint id, by id or by resolved node.
func (l *Link) TargetKey() string {
	if l.TargetID != "" {
		return l.TargetID
	}
	if l.Target != nil {
		return l.Target.ID
	}
	return ""
}

// Graph is the full model built from one provider load. Node ids are unique
// across all three variants; collisions are a caller error and are not
// validated here.
type Graph struct {
	Nodes []*Node
	Links []*Link

	// Id-keyed lookups per variant.
	Workspaces map[string]*Node
	Items      map[string]*Node
	Sources    map[string]*Node
}

// NodeByID looks a node up across all three variants.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	if n, ok := g.Workspaces[id]; ok {
		return n, true
	}
	if n, ok := g.Items[id]; ok {
		return n, true
	}
	n, ok := g.Sources[id]
	return n, ok
}

// Snapshot is the filtered node/link set currently eligible for layout and
// rendering. It is recomputed wholesale on every filter change; the node and
// link values are shared with the full graph.
type Snapshot struct {
	Nodes []*Node
	Links []*Link

	byID map[string]*Node
}

// Node returns a visible node by id.
func (s *Snapshot) Node(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Contains reports whether the node id is visible.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}
