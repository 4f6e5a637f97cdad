package session

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/graph"
)

// Search limits.
const (
	minQueryLen      = 2
	maxSearchResults = 10
)

// Connection is one end of a lineage relationship relative to a node.
type Connection struct {
	NodeID   string     `json:"node_id"`
	Label    string     `json:"label"`
	Kind     graph.Kind `json:"kind"`
	LinkID   string     `json:"link_id"`
	EdgeType string     `json:"edge_type"`
}

// Connections partitions the visible links touching a node.
type Connections struct {
	Incoming []Connection `json:"incoming"`
	Outgoing []Connection `json:"outgoing"`
}

// Connections scans the visible link set once and classifies each link
// touching the node by direction. The opposite endpoint is resolved through
// the visible-node lookup, so links into filtered-out nodes never appear.
func (s *Session) Connections(id string) (*Connections, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, apperr.ErrNoGraph
	}
	if !s.snap.Contains(id) {
		return nil, apperr.ErrNotFound
	}

	out := &Connections{Incoming: []Connection{}, Outgoing: []Connection{}}
	for _, l := range s.snap.Links {
		sk, tk := l.SourceKey(), l.TargetKey()
		switch id {
		case sk:
			if other, ok := s.snap.Node(tk); ok {
				out.Outgoing = append(out.Outgoing, connection(other, l))
			}
		case tk:
			if other, ok := s.snap.Node(sk); ok {
				out.Incoming = append(out.Incoming, connection(other, l))
			}
		}
	}
	return out, nil
}

func connection(n *graph.Node, l *graph.Link) Connection {
	return Connection{
		NodeID:   n.ID,
		Label:    n.Label,
		Kind:     n.Kind,
		LinkID:   l.ID,
		EdgeType: l.EdgeType,
	}
}

// Match is one search hit; Start/End delimit the matched span in the label
// (End exclusive) for highlighting.
type Match struct {
	NodeID string     `json:"node_id"`
	Label  string     `json:"label"`
	Kind   graph.Kind `json:"kind"`
	Start  int        `json:"start"`
	End    int        `json:"end"`
}

// Search runs a case-insensitive substring match against all node labels,
// visible or not, capped to a bounded result count. Queries below the
// minimum length return nothing.
func (s *Session) Search(query string) []Match {
	if len(query) < minQueryLen {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return nil
	}

	q := []rune(strings.ToLower(query))
	var out []Match
	for _, n := range s.graph.Nodes {
		start, end := foldIndex(n.Label, q)
		if start < 0 {
			continue
		}
		out = append(out, Match{
			NodeID: n.ID,
			Label:  n.Label,
			Kind:   n.Kind,
			Start:  start,
			End:    end,
		})
		if len(out) == maxSearchResults {
			break
		}
	}
	return out
}

// foldIndex locates the lowercased query within the label and returns the
// matched byte span in the original label, so spans stay aligned for labels
// whose byte length changes under lowercasing. Returns (-1, -1) on no match.
func foldIndex(label string, query []rune) (int, int) {
	for start := 0; start < len(label); {
		end, i := start, 0
		for i < len(query) && end < len(label) {
			r, size := utf8.DecodeRuneInString(label[end:])
			if unicode.ToLower(r) != query[i] {
				break
			}
			end += size
			i++
		}
		if i == len(query) {
			return start, end
		}
		_, size := utf8.DecodeRuneInString(label[start:])
		start += size
	}
	return -1, -1
}

// WorkspaceSummary is a workspace with its member item count.
type WorkspaceSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

// Workspaces lists all loaded workspaces with item counts, sorted by name.
func (s *Session) Workspaces() ([]WorkspaceSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return nil, apperr.ErrNoGraph
	}

	counts := make(map[string]int)
	for _, n := range s.graph.Items {
		counts[n.WorkspaceID]++
	}

	out := make([]WorkspaceSummary, 0, len(s.graph.Workspaces))
	for _, w := range s.graph.Workspaces {
		out = append(out, WorkspaceSummary{ID: w.ID, Name: w.Label, ItemCount: counts[w.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
