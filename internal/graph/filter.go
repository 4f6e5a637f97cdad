package graph

import "strings"

// FilterState holds the live filter dimensions for a session. Each allow-set
// lists the keys currently included; an EMPTY set means "no restriction on
// that dimension", not "exclude everything". The initial state and Reset
// therefore populate every observed key, and the empty-set form only occurs
// transiently while the user unticks keys one by one.
type FilterState struct {
	Search      string
	Workspaces  map[string]bool
	ItemTypes   map[string]bool
	SourceTypes map[string]bool
}

// NewFilterState returns a filter state admitting every key observed in g.
func NewFilterState(g *Graph) *FilterState {
	f := &FilterState{
		Workspaces:  make(map[string]bool),
		ItemTypes:   make(map[string]bool),
		SourceTypes: make(map[string]bool),
	}
	f.Reset(g)
	return f
}

// Reset clears the search text and re-populates every allow-set with all
// keys observed in g. Calling it twice yields the same visible snapshot as
// calling it once.
func (f *FilterState) Reset(g *Graph) {
	f.Search = ""
	f.Workspaces = make(map[string]bool)
	f.ItemTypes = make(map[string]bool)
	f.SourceTypes = make(map[string]bool)
	if g == nil {
		return
	}
	for id := range g.Workspaces {
		f.Workspaces[id] = true
	}
	for _, n := range g.Items {
		if n.ItemType != "" {
			f.ItemTypes[n.ItemType] = true
		}
	}
	for _, n := range g.Sources {
		if n.SourceType != "" {
			f.SourceTypes[n.SourceType] = true
		}
	}
}

// SetDimension includes or excludes a single key on one of the three
// categorical dimensions ("workspaces", "item_types", "source_types").
// Unknown dimensions are ignored.
func (f *FilterState) SetDimension(dimension, key string, included bool) {
	var set map[string]bool
	switch dimension {
	case "workspaces":
		set = f.Workspaces
	case "item_types":
		set = f.ItemTypes
	case "source_types":
		set = f.SourceTypes
	default:
		return
	}
	if included {
		set[key] = true
	} else {
		delete(set, key)
	}
}

// allowed implements the empty-set-means-unrestricted convention.
func allowed(set map[string]bool, key string) bool {
	return len(set) == 0 || set[key]
}

// Apply computes the visible snapshot of g under f. It returns nil when no
// graph is loaded, and never mutates g or f.
//
// A node is visible when its kind-specific dimension rules all pass and,
// if the search text is non-empty, its label contains the text
// case-insensitively. A link is visible only when both endpoints are
// visible nodes; links with unresolvable endpoints are dropped silently.
func Apply(g *Graph, f *FilterState) *Snapshot {
	if g == nil {
		return nil
	}

	search := strings.ToLower(f.Search)
	snap := &Snapshot{byID: make(map[string]*Node)}

	for _, n := range g.Nodes {
		if !nodeVisible(n, f) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(n.Label), search) {
			continue
		}
		snap.Nodes = append(snap.Nodes, n)
		snap.byID[n.ID] = n
	}

	for _, l := range g.Links {
		if snap.Contains(l.SourceKey()) && snap.Contains(l.TargetKey()) {
			snap.Links = append(snap.Links, l)
		}
	}

	return snap
}

func nodeVisible(n *Node, f *FilterState) bool {
	switch n.Kind {
	case KindWorkspace:
		return allowed(f.Workspaces, n.ID)
	case KindItem:
		return allowed(f.Workspaces, n.WorkspaceID) && allowed(f.ItemTypes, n.ItemType)
	case KindSource:
		return allowed(f.SourceTypes, n.SourceType)
	default:
		return false
	}
}
