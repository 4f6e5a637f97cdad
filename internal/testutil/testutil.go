// Package testutil provides shared test helpers: a canned lineage payload,
// a stub provider, and a hand-cranked scheduler for deterministic solver
// ticks.
package testutil

import (
	"context"
	"sync"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// SamplePayload returns a small lineage payload: one workspace holding a
// Lakehouse and a Notebook, one ADLS external source, with the Lakehouse
// reading from the source and the Notebook reading from the Lakehouse.
func SamplePayload() *graph.Payload {
	return &graph.Payload{
		Workspaces: []graph.WorkspaceRecord{
			{ID: "W1", Name: "Analytics"},
		},
		Items: []graph.ItemRecord{
			{ID: "I1", Name: "Sales Lakehouse", ItemType: "Lakehouse", WorkspaceID: "W1"},
			{ID: "I2", Name: "ETL Notebook", ItemType: "Notebook", WorkspaceID: "W1"},
		},
		ExternalSources: []graph.SourceRecord{
			{ID: "S1", DisplayName: "Raw Landing Zone", SourceType: "ADLS"},
		},
		Edges: []graph.EdgeRecord{
			{ID: "E1", SourceID: "I1", TargetID: "S1", EdgeType: "reads_from"},
			{ID: "E2", SourceID: "I2", TargetID: "I1", EdgeType: "reads_from"},
		},
	}
}

// StubSource is a provider.Source backed by an in-memory payload.
type StubSource struct {
	mu        sync.Mutex
	payload   *graph.Payload
	stats     *graph.Stats
	graphErr  error
	refreshed int
}

// NewStubSource creates a stub serving the given payload.
func NewStubSource(p *graph.Payload) *StubSource {
	return &StubSource{
		payload: p,
		stats: &graph.Stats{
			WorkspaceCount: len(p.Workspaces),
			ItemCount:      len(p.Items),
			EdgeCount:      len(p.Edges),
		},
	}
}

// SetPayload swaps the served payload.
func (s *StubSource) SetPayload(p *graph.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = p
}

// SetError makes Graph fail with err until cleared.
func (s *StubSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphErr = err
}

// Graph implements provider.Source.
func (s *StubSource) Graph(_ context.Context) (*graph.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graphErr != nil {
		return nil, s.graphErr
	}
	return s.payload, nil
}

// Stats implements provider.Source.
func (s *StubSource) Stats(_ context.Context) (*graph.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

// Refresh implements provider.Source.
func (s *StubSource) Refresh(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	return nil
}

// RefreshCount reports how many times Refresh ran.
func (s *StubSource) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshed
}

// ManualScheduler records the step callback and runs it only when the test
// cranks it, keeping solver ticks deterministic.
type ManualScheduler struct {
	mu      sync.Mutex
	step    func() bool
	running bool
	starts  int
}

// Start implements layout.Scheduler. The step callback is stored, never
// invoked synchronously.
func (m *ManualScheduler) Start(step func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = step
	m.running = true
	m.starts++
}

// Stop implements layout.Scheduler.
func (m *ManualScheduler) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// Running reports whether the scheduler is between Start and Stop.
func (m *ManualScheduler) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Starts reports how many times Start ran.
func (m *ManualScheduler) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Tick runs one stored step if the scheduler is running. It reports whether
// the step asked to continue.
func (m *ManualScheduler) Tick() bool {
	m.mu.Lock()
	step, running := m.step, m.running
	m.mu.Unlock()
	if !running || step == nil {
		return false
	}
	cont := step()
	if !cont {
		m.Stop()
	}
	return cont
}

// TickN cranks the scheduler up to n times, stopping early when the solver
// settles.
func (m *ManualScheduler) TickN(n int) {
	for i := 0; i < n; i++ {
		if !m.Tick() {
			return
		}
	}
}
