package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/graph"
	"github.com/fabriclens/fabriclens/internal/testutil"
)

func TestConnectionsPartition(t *testing.T) {
	s, _, _, _ := testSession(t)

	c, err := s.Connections("I1")
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	if len(c.Outgoing) != 1 || c.Outgoing[0].NodeID != "S1" || c.Outgoing[0].LinkID != "E1" {
		t.Errorf("outgoing = %+v", c.Outgoing)
	}
	if len(c.Incoming) != 1 || c.Incoming[0].NodeID != "I2" || c.Incoming[0].LinkID != "E2" {
		t.Errorf("incoming = %+v", c.Incoming)
	}
	if c.Outgoing[0].EdgeType != "reads_from" {
		t.Errorf("edge type = %q", c.Outgoing[0].EdgeType)
	}
}

func TestConnectionsLeafNode(t *testing.T) {
	s, _, _, _ := testSession(t)

	c, err := s.Connections("W1")
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	// Empty but non-nil slices so the JSON shape stays stable.
	if c.Incoming == nil || c.Outgoing == nil {
		t.Error("connection lists must not be nil")
	}
	if len(c.Incoming) != 0 || len(c.Outgoing) != 0 {
		t.Errorf("unexpected connections: %+v", c)
	}
}

func TestConnectionsRespectFilters(t *testing.T) {
	s, _, _, _ := testSession(t)

	// Hide the Notebook; its link to I1 must disappear from the detail.
	s.SetFilterDimension("item_types", "Notebook", false)
	c, err := s.Connections("I1")
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	if len(c.Incoming) != 0 {
		t.Errorf("incoming = %+v, want none", c.Incoming)
	}
	if len(c.Outgoing) != 1 {
		t.Errorf("outgoing = %+v", c.Outgoing)
	}
}

func TestConnectionsErrors(t *testing.T) {
	s, _, _, _ := testSession(t)
	if _, err := s.Connections("GHOST"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Connections(GHOST) = %v, want not found", err)
	}

	empty := New(testConfig(), testutil.NewStubSource(testutil.SamplePayload()), &testutil.ManualScheduler{}, nil, testLogger())
	t.Cleanup(empty.Close)
	if _, err := empty.Connections("I1"); !errors.Is(err, apperr.ErrNoGraph) {
		t.Errorf("Connections before load = %v, want no graph", err)
	}
}

func TestSearchSpan(t *testing.T) {
	s, _, _, _ := testSession(t)

	got := s.Search("lake")
	if len(got) != 1 {
		t.Fatalf("matches = %+v, want just the Lakehouse", got)
	}
	m := got[0]
	if m.NodeID != "I1" {
		t.Errorf("node = %q", m.NodeID)
	}
	// "Sales Lakehouse": the span delimits "Lake", end exclusive.
	if m.Start != 6 || m.End != 10 {
		t.Errorf("span = [%d, %d), want [6, 10)", m.Start, m.End)
	}
	if m.Label[m.Start:m.End] != "Lake" {
		t.Errorf("span text = %q", m.Label[m.Start:m.End])
	}
}

func TestSearchSpanNonASCII(t *testing.T) {
	p := testutil.SamplePayload()
	p.Items = append(p.Items, graph.ItemRecord{
		ID:          "I9",
		Name:        "İstanbul Warehouse",
		ItemType:    "Warehouse",
		WorkspaceID: "W1",
	})
	stub := testutil.NewStubSource(p)
	s := New(testConfig(), stub, &testutil.ManualScheduler{}, nil, testLogger())
	t.Cleanup(s.Close)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := s.Search("istanbul ware")
	if len(got) != 1 || got[0].NodeID != "I9" {
		t.Fatalf("matches = %+v, want the İstanbul warehouse", got)
	}
	// "İ" lowercases to a shorter byte sequence; the span must still
	// delimit the original label bytes.
	m := got[0]
	if m.Start != 0 || m.Label[m.Start:m.End] != "İstanbul Ware" {
		t.Errorf("span = [%d, %d) = %q", m.Start, m.End, m.Label[m.Start:m.End])
	}
}

func TestSearchIgnoresFilters(t *testing.T) {
	s, _, _, _ := testSession(t)

	// Global search covers nodes the filters currently hide.
	s.SetFilterDimension("item_types", "Notebook", false)
	got := s.Search("notebook")
	if len(got) != 1 || got[0].NodeID != "I2" {
		t.Errorf("matches = %+v, want the hidden Notebook", got)
	}
}

func TestSearchMinLength(t *testing.T) {
	s, _, _, _ := testSession(t)
	if got := s.Search("l"); got != nil {
		t.Errorf("single-char query returned %+v", got)
	}
	if got := s.Search(""); got != nil {
		t.Errorf("empty query returned %+v", got)
	}
}

func TestSearchResultCap(t *testing.T) {
	p := testutil.SamplePayload()
	for i := 0; i < 20; i++ {
		p.Items = append(p.Items, graph.ItemRecord{
			ID:          fmt.Sprintf("X%d", i),
			Name:        fmt.Sprintf("Copy Job %d", i),
			ItemType:    "CopyJob",
			WorkspaceID: "W1",
		})
	}
	stub := testutil.NewStubSource(p)
	s := New(testConfig(), stub, &testutil.ManualScheduler{}, nil, testLogger())
	t.Cleanup(s.Close)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := s.Search("copy job"); len(got) != maxSearchResults {
		t.Errorf("matches = %d, want cap %d", len(got), maxSearchResults)
	}
}

func TestWorkspaces(t *testing.T) {
	p := testutil.SamplePayload()
	p.Workspaces = append(p.Workspaces, graph.WorkspaceRecord{ID: "W2", Name: "Finance"})
	stub := testutil.NewStubSource(p)
	s := New(testConfig(), stub, &testutil.ManualScheduler{}, nil, testLogger())
	t.Cleanup(s.Close)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := s.Workspaces()
	if err != nil {
		t.Fatalf("Workspaces: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("workspaces = %d, want 2", len(got))
	}
	// Sorted by name: Analytics before Finance.
	if got[0].Name != "Analytics" || got[1].Name != "Finance" {
		t.Errorf("order = %q, %q", got[0].Name, got[1].Name)
	}
	if got[0].ItemCount != 2 || got[1].ItemCount != 0 {
		t.Errorf("item counts = %d, %d", got[0].ItemCount, got[1].ItemCount)
	}
}
