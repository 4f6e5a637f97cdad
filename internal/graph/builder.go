package graph

// Payload is the wire shape served by the data provider at GET /graph.
type Payload struct {
	Workspaces      []WorkspaceRecord `json:"workspaces"`
	Items           []ItemRecord      `json:"items"`
	ExternalSources []SourceRecord    `json:"external_sources"`
	Edges           []EdgeRecord      `json:"edges"`
}

// WorkspaceRecord is a raw workspace entity.
type WorkspaceRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemRecord is a raw item entity.
type ItemRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ItemType    string `json:"item_type"`
	WorkspaceID string `json:"workspace_id"`
}

// SourceRecord is a raw external source entity.
type SourceRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	SourceType  string `json:"source_type"`
}

// EdgeRecord is a raw lineage edge.
type EdgeRecord struct {
	ID       string         `json:"id"`
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	EdgeType string         `json:"edge_type"`
	Metadata map[string]any `json:"metadata"`
}

// Stats are the provider-side summary counts from GET /stats.
type Stats struct {
	WorkspaceCount int `json:"workspace_count"`
	ItemCount      int `json:"item_count"`
	EdgeCount      int `json:"edge_count"`
}

// Build normalizes a raw payload into the typed graph model with per-variant
// lookup maps. Node order is stable (workspaces, then items, then sources,
// each in payload order) but unspecified; consumers may rely on it only for
// default rendering order. Edge endpoints are resolved to live nodes where
// they exist; unresolvable endpoints are left nil and dropped later during
// visible-set computation.
func Build(p *Payload) *Graph {
	g := &Graph{
		Workspaces: make(map[string]*Node, len(p.Workspaces)),
		Items:      make(map[string]*Node, len(p.Items)),
		Sources:    make(map[string]*Node, len(p.ExternalSources)),
	}

	for _, w := range p.Workspaces {
		n := &Node{ID: w.ID, Label: w.Name, Kind: KindWorkspace, Raw: w}
		g.Nodes = append(g.Nodes, n)
		g.Workspaces[n.ID] = n
	}
	for _, it := range p.Items {
		n := &Node{
			ID:          it.ID,
			Label:       it.Name,
			Kind:        KindItem,
			ItemType:    it.ItemType,
			WorkspaceID: it.WorkspaceID,
			Raw:         it,
		}
		g.Nodes = append(g.Nodes, n)
		g.Items[n.ID] = n
	}
	for _, s := range p.ExternalSources {
		n := &Node{ID: s.ID, Label: s.DisplayName, Kind: KindSource, SourceType: s.SourceType, Raw: s}
		g.Nodes = append(g.Nodes, n)
		g.Sources[n.ID] = n
	}

	for _, e := range p.Edges {
		l := &Link{
			ID:       e.ID,
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			EdgeType: e.EdgeType,
			Metadata: e.Metadata,
		}
		l.Source, _ = g.NodeByID(e.SourceID)
		l.Target, _ = g.NodeByID(e.TargetID)
		g.Links = append(g.Links, l)
	}

	return g
}
