package session

import (
	"github.com/fabriclens/fabriclens/internal/graph"
	"github.com/fabriclens/fabriclens/internal/layout"
	"github.com/fabriclens/fabriclens/internal/particles"
	"github.com/fabriclens/fabriclens/internal/view"
)

// Arrow marker styles for links.
const (
	MarkerArrow       = "arrow"
	MarkerArrowActive = "arrow-active"
)

// FrameNode is one renderable node: kind selects the glyph, the flags drive
// selection/highlight/dim treatment.
type FrameNode struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Kind        graph.Kind `json:"kind"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Selected    bool       `json:"selected,omitempty"`
	Highlighted bool       `json:"highlighted,omitempty"`
	Dimmed      bool       `json:"dimmed,omitempty"`
	Pinned      bool       `json:"pinned,omitempty"`
}

// FrameLink is one renderable link with endpoint coordinates and the arrow
// marker style to use.
type FrameLink struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	EdgeType    string  `json:"edge_type"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Marker      string  `json:"marker"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Dimmed      bool    `json:"dimmed,omitempty"`
}

// Frame is one synchronized render of the whole scene, produced on every
// simulation tick and on every interaction that changes what is drawn.
type Frame struct {
	Nodes      []FrameNode              `json:"nodes"`
	Links      []FrameLink              `json:"links"`
	Transform  view.Transform           `json:"transform"`
	Minimap    view.Minimap             `json:"minimap"`
	Particles  []particles.ActiveMarker `json:"particles"`
	Mode       layout.Mode              `json:"mode"`
	Alpha      float64                  `json:"alpha"`
	ShowLabels bool                     `json:"show_labels"`
	Empty      bool                     `json:"empty"`
}

// buildFrame renders the current visible snapshot. Nodes without assigned
// coordinates are not yet drawable and are skipped. Callers hold s.mu.
func (s *Session) buildFrame() Frame {
	f := Frame{
		Transform:  s.transform,
		Mode:       s.engine.Mode(),
		Alpha:      s.engine.Alpha(),
		ShowLabels: s.showLabels,
	}

	if s.snap == nil {
		f.Empty = s.loaded
		return f
	}
	f.Empty = len(s.snap.Nodes) == 0

	neighbors := s.hoverNeighbors()
	hovering := s.hovered != ""

	for _, n := range s.snap.Nodes {
		if !n.Positioned {
			continue
		}
		fn := FrameNode{
			ID:       n.ID,
			Label:    n.Label,
			Kind:     n.Kind,
			X:        n.X,
			Y:        n.Y,
			Selected: n.ID == s.selected,
			Pinned:   n.Pinned,
		}
		if hovering {
			if neighbors[n.ID] {
				fn.Highlighted = true
			} else {
				fn.Dimmed = true
			}
		}
		f.Nodes = append(f.Nodes, fn)
	}

	for _, l := range s.snap.Links {
		src, ok := s.snap.Node(l.SourceKey())
		if !ok || !src.Positioned {
			continue
		}
		tgt, ok := s.snap.Node(l.TargetKey())
		if !ok || !tgt.Positioned {
			continue
		}
		fl := FrameLink{
			ID:       l.ID,
			Source:   src.ID,
			Target:   tgt.ID,
			EdgeType: l.EdgeType,
			X1:       src.X,
			Y1:       src.Y,
			X2:       tgt.X,
			Y2:       tgt.Y,
			Marker:   MarkerArrow,
		}
		if hovering {
			if src.ID == s.hovered || tgt.ID == s.hovered {
				fl.Highlighted = true
				fl.Marker = MarkerArrowActive
			} else {
				fl.Dimmed = true
			}
		}
		f.Links = append(f.Links, fl)
	}

	f.Minimap = view.ProjectMinimap(s.snap, s.transform, s.width, s.height, s.minimapCfg)
	f.Particles = s.anim.Active()
	return f
}

// hoverNeighbors returns the hovered node plus every node directly linked
// to it, incoming or outgoing.
func (s *Session) hoverNeighbors() map[string]bool {
	if s.hovered == "" || s.snap == nil {
		return nil
	}
	set := map[string]bool{s.hovered: true}
	for _, l := range s.snap.Links {
		sk, tk := l.SourceKey(), l.TargetKey()
		if sk == s.hovered {
			set[tk] = true
		}
		if tk == s.hovered {
			set[sk] = true
		}
	}
	return set
}
