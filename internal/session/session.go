// Package session implements the interactive exploration state: one
// process-wide object owning the loaded graph, filter state, layout engine,
// viewport transform, selection/hover, minimap and particle animation.
//
// Concurrency model: a single mutex serializes every operation including the
// solver's tick callback, making the tick the only writer of node
// coordinates while a force simulation is active. All I/O (provider fetches)
// happens outside the lock.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/graph"
	"github.com/fabriclens/fabriclens/internal/layout"
	"github.com/fabriclens/fabriclens/internal/particles"
	"github.com/fabriclens/fabriclens/internal/provider"
	"github.com/fabriclens/fabriclens/internal/view"
)

// resizeDebounce collapses rapid viewport resize bursts into one update.
const resizeDebounce = 100 * time.Millisecond

// filterReheat is the solver temperature after a filter change; lower than
// a full reload so a settled layout is nudged, not scrambled.
const filterReheat = 0.3

// Config sizes the session's canvas and subsystems.
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64
	Force        layout.ForceConfig
	Minimap      view.MinimapConfig
	Particles    particles.Config
}

// FrameSink receives every rendered frame.
type FrameSink func(Frame)

// Session is the application-state object passed to every entry point.
type Session struct {
	logger *slog.Logger
	source provider.Source
	sched  layout.Scheduler
	sink   FrameSink

	mu      sync.Mutex
	graph   *graph.Graph
	stats   *graph.Stats
	filters *graph.FilterState
	snap    *graph.Snapshot
	loaded   bool
	loadErr  error
	loadedAt time.Time
	loadTook time.Duration

	engine     *layout.Engine
	anim       *particles.Animator
	transform  view.Transform
	minimapCfg view.MinimapConfig

	width, height float64

	selected   string
	hovered    string
	showLabels bool

	resizeTimer        *time.Timer
	pendingW, pendingH float64
}

// New creates a session. The scheduler drives solver ticks; sink (optional)
// receives every frame.
func New(cfg Config, source provider.Source, sched layout.Scheduler, sink FrameSink, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		logger:     logger,
		source:     source,
		sched:      sched,
		sink:       sink,
		engine:     layout.NewEngine(cfg.Force, cfg.CanvasWidth, cfg.CanvasHeight),
		minimapCfg: cfg.Minimap,
		transform:  view.Identity(),
		width:      cfg.CanvasWidth,
		height:     cfg.CanvasHeight,
		showLabels: true,
	}
	s.anim = particles.New(cfg.Particles, s.flights)
	return s
}

// Close stops the tick loop and the particle animator.
func (s *Session) Close() {
	s.sched.Stop()
	s.anim.Close()
	s.mu.Lock()
	if s.resizeTimer != nil {
		s.resizeTimer.Stop()
	}
	s.mu.Unlock()
}

// Init performs the first load.
func (s *Session) Init(ctx context.Context) error { return s.load(ctx) }

// Reload re-fetches the dataset and rebuilds the model wholesale.
func (s *Session) Reload(ctx context.Context) error { return s.load(ctx) }

// Refresh triggers a provider-side rebuild and reloads on success. A failed
// refresh is reported but leaves the currently displayed graph untouched.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.source.Refresh(ctx); err != nil {
		s.logger.Warn("refresh failed, keeping current graph", slog.String("error", err.Error()))
		return fmt.Errorf("refresh: %w", err)
	}
	return s.load(ctx)
}

func (s *Session) load(ctx context.Context) error {
	started := time.Now()
	payload, err := s.source.Graph(ctx)
	if err != nil {
		s.setLoadErr(err)
		return fmt.Errorf("load graph: %w", err)
	}
	stats, err := s.source.Stats(ctx)
	if err != nil {
		s.setLoadErr(err)
		return fmt.Errorf("load stats: %w", err)
	}

	s.mu.Lock()
	s.graph = graph.Build(payload)
	s.stats = stats
	s.filters = graph.NewFilterState(s.graph)
	s.selected, s.hovered = "", ""
	s.loaded = true
	s.loadErr = nil
	s.loadedAt = time.Now()
	s.loadTook = s.loadedAt.Sub(started)
	s.refilterLocked(1)
	frame := s.buildFrame()
	nodes, links := len(s.graph.Nodes), len(s.graph.Links)
	took := s.loadTook
	s.mu.Unlock()

	s.logger.Info("graph loaded",
		slog.Int("nodes", nodes),
		slog.Int("links", links),
		slog.Duration("took", took))
	s.publish(frame)
	return nil
}

func (s *Session) setLoadErr(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}

// LoadError returns the load failure blocking display, if any. A graph from
// an earlier successful load remains available after a failed refresh-fetch
// only when no new fetch was attempted; a failed fetch always surfaces here
// so the shell can show the retryable error state.
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Loaded reports whether a dataset has been loaded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadInfo reports when the last successful load finished and how long the
// fetch-and-build took. The zero time means nothing has loaded yet.
func (s *Session) LoadInfo() (time.Time, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt, s.loadTook
}

// Stats returns the provider summary counts.
func (s *Session) Stats() (*graph.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil, apperr.ErrNoGraph
	}
	return s.stats, nil
}

// Frame renders the current scene on demand (first paint for a new SSE
// subscriber, or plain GET of the visible graph).
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildFrame()
}

// refilterLocked recomputes the visible snapshot from the current filter
// state, drops stale selection/hover, and re-runs the active layout.
func (s *Session) refilterLocked(reheat float64) {
	s.snap = graph.Apply(s.graph, s.filters)
	if s.snap == nil {
		return
	}
	if s.selected != "" && !s.snap.Contains(s.selected) {
		s.selected = ""
	}
	if s.hovered != "" && !s.snap.Contains(s.hovered) {
		s.hovered = ""
	}
	s.engine.SetSnapshot(s.snap.Nodes, s.snap.Links, reheat)
	s.kickLocked()
}

// kickLocked (re)starts the tick loop while the solver has work. The
// scheduler never invokes the step synchronously, so holding s.mu is safe.
func (s *Session) kickLocked() {
	if s.engine.Active() {
		s.sched.Start(s.step)
	}
}

// step is the scheduler callback: advance the solver one tick and render.
// It is the single writer of node coordinates in force mode.
func (s *Session) step() bool {
	s.mu.Lock()
	active := s.engine.Step()
	frame := s.buildFrame()
	s.mu.Unlock()
	s.publish(frame)
	return active
}

func (s *Session) publish(f Frame) {
	if s.sink != nil {
		s.sink(f)
	}
}

// emit re-renders after an interaction that changed what is drawn without
// advancing the simulation.
func (s *Session) emit() {
	s.mu.Lock()
	frame := s.buildFrame()
	s.mu.Unlock()
	s.publish(frame)
}

// flights lists the current particle spawn candidates. Called by the
// animator outside its own lock.
func (s *Session) flights() []particles.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil
	}
	var out []particles.Flight
	for _, l := range s.snap.Links {
		if l.Source == nil || l.Target == nil || !l.Source.Positioned || !l.Target.Positioned {
			continue
		}
		out = append(out, particles.Flight{
			LinkID: l.ID,
			FromX:  l.Source.X,
			FromY:  l.Source.Y,
			ToX:    l.Target.X,
			ToY:    l.Target.Y,
		})
	}
	return out
}

// --- Filters ---

// SetSearch updates the live search text. Applied atomically: the snapshot
// is recomputed before the next frame.
func (s *Session) SetSearch(text string) {
	s.mu.Lock()
	if s.filters == nil {
		s.mu.Unlock()
		return
	}
	s.filters.Search = text
	s.refilterLocked(filterReheat)
	s.mu.Unlock()
	s.emit()
}

// SetFilterDimension includes or excludes one key on a categorical
// dimension ("workspaces", "item_types", "source_types").
func (s *Session) SetFilterDimension(dimension, key string, included bool) {
	s.mu.Lock()
	if s.filters == nil {
		s.mu.Unlock()
		return
	}
	s.filters.SetDimension(dimension, key, included)
	s.refilterLocked(filterReheat)
	s.mu.Unlock()
	s.emit()
}

// ResetFilters restores the all-keys-allowed state. Idempotent.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	if s.filters == nil {
		s.mu.Unlock()
		return
	}
	s.filters.Reset(s.graph)
	s.refilterLocked(filterReheat)
	s.mu.Unlock()
	s.emit()
}

// --- Layout ---

// SetLayout switches the layout mode, stopping any running solver first.
func (s *Session) SetLayout(mode string) error {
	m, err := layout.ParseMode(mode)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.engine.SetMode(m)
	s.kickLocked()
	s.mu.Unlock()
	s.emit()
	return nil
}

// LayoutMode returns the active layout mode.
func (s *Session) LayoutMode() layout.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Mode()
}

// --- Drag ---

// DragStart pins the node under the pointer and keeps the solver hot.
func (s *Session) DragStart(id string) error {
	s.mu.Lock()
	n, ok := s.visibleNode(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.engine.DragStart(n)
	s.kickLocked()
	s.mu.Unlock()
	s.emit()
	return nil
}

// DragMove stages new pinned coordinates; the solver treats them as
// authoritative on its next tick.
func (s *Session) DragMove(id string, x, y float64) error {
	s.mu.Lock()
	n, ok := s.visibleNode(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.engine.DragMove(n, x, y)
	s.mu.Unlock()
	s.emit()
	return nil
}

// DragEnd releases the node (force mode) or leaves it pinned (radial/tree).
func (s *Session) DragEnd(id string) error {
	s.mu.Lock()
	n, ok := s.visibleNode(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.engine.DragEnd(n)
	s.mu.Unlock()
	s.emit()
	return nil
}

func (s *Session) visibleNode(id string) (*graph.Node, bool) {
	if s.snap == nil {
		return nil, false
	}
	return s.snap.Node(id)
}

// --- Selection / hover ---

// Select makes the node the exclusive selection.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	if _, ok := s.visibleNode(id); !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.selected = id
	s.mu.Unlock()
	s.emit()
	return nil
}

// ClearSelection corresponds to a click on empty canvas.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
	s.emit()
}

// Selected returns the selected node id, empty when none.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Hover highlights the node and its direct neighbors; an empty id clears
// all highlight/dim state.
func (s *Session) Hover(id string) {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.visibleNode(id); !ok {
			s.mu.Unlock()
			return
		}
	}
	s.hovered = id
	s.mu.Unlock()
	s.emit()
}

// --- Viewport ---

// FitToView frames all positioned visible nodes inside the canvas.
func (s *Session) FitToView() {
	s.mu.Lock()
	if s.snap != nil {
		if b, ok := view.Bounds(s.snap.Nodes); ok {
			s.transform = view.Fit(b, s.width, s.height)
		}
	}
	s.mu.Unlock()
	s.emit()
}

// FocusNode selects the node and centers the viewport on it at the focus
// zoom level. Nodes without an assigned position are selected but not
// centered.
func (s *Session) FocusNode(id string) error {
	s.mu.Lock()
	n, ok := s.visibleNode(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.selected = id
	if n.Positioned {
		s.transform = view.Focus(n.X, n.Y, s.width, s.height)
	}
	s.mu.Unlock()
	s.emit()
	return nil
}

// StepZoom zooms one step in (dir > 0) or out (dir < 0) about the canvas
// center.
func (s *Session) StepZoom(dir int) {
	s.mu.Lock()
	s.transform = s.transform.StepZoom(dir, s.width, s.height)
	s.mu.Unlock()
	s.emit()
}

// SetTransform installs a shell-driven pan/zoom transform (scale clamped).
func (s *Session) SetTransform(t view.Transform) {
	s.mu.Lock()
	if t.K < view.MinScale {
		t.K = view.MinScale
	}
	if t.K > view.MaxScale {
		t.K = view.MaxScale
	}
	s.transform = t
	s.mu.Unlock()
	s.emit()
}

// Resize updates the canvas dimensions, debounced so a burst of resize
// events collapses into one relayout.
func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	s.pendingW, s.pendingH = width, height
	if s.resizeTimer == nil {
		s.resizeTimer = time.AfterFunc(resizeDebounce, s.applyResize)
	} else {
		s.resizeTimer.Reset(resizeDebounce)
	}
	s.mu.Unlock()
}

func (s *Session) applyResize() {
	s.mu.Lock()
	s.width, s.height = s.pendingW, s.pendingH
	s.engine.Resize(s.width, s.height)
	s.kickLocked()
	s.mu.Unlock()
	s.emit()
}

// --- Toggles ---

// ToggleParticles flips the flow animation and returns the new state.
// Turning it off clears all in-flight markers immediately.
func (s *Session) ToggleParticles() bool {
	s.mu.Lock()
	on := !s.anim.Enabled()
	s.anim.SetEnabled(on)
	s.mu.Unlock()
	s.emit()
	return on
}

// ToggleLabels flips global label visibility and returns the new state.
func (s *Session) ToggleLabels() bool {
	s.mu.Lock()
	s.showLabels = !s.showLabels
	on := s.showLabels
	s.mu.Unlock()
	s.emit()
	return on
}
