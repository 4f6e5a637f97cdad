// Package particles animates directional flow: a periodic scheduler spawns
// short-lived markers traveling along random visible links. Markers are the
// animator's only state; node and link data are never touched.
package particles

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config tunes the spawn scheduler.
type Config struct {
	Interval    time.Duration
	MaxPerSpawn int
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultConfig returns the standard animation cadence.
func DefaultConfig() Config {
	return Config{
		Interval:    800 * time.Millisecond,
		MaxPerSpawn: 3,
		MinDuration: 1500 * time.Millisecond,
		MaxDuration: 2500 * time.Millisecond,
	}
}

// Flight is a spawn candidate: a visible link whose endpoints both have
// resolved coordinates.
type Flight struct {
	LinkID       string
	FromX, FromY float64
	ToX, ToY     float64
}

// FlightSource supplies the current candidate set at spawn time. It is
// called outside the animator's lock, so implementations may take their own
// locks freely.
type FlightSource func() []Flight

// Marker is one transient flow particle, animated from the link's source
// coordinates to its target coordinates and then discarded.
type Marker struct {
	ID       string        `json:"id"`
	LinkID   string        `json:"link_id"`
	FromX    float64       `json:"from_x"`
	FromY    float64       `json:"from_y"`
	ToX      float64       `json:"to_x"`
	ToY      float64       `json:"to_y"`
	Spawned  time.Time     `json:"-"`
	Duration time.Duration `json:"-"`
}

// ActiveMarker is a marker with its animation progress in [0, 1].
type ActiveMarker struct {
	Marker
	Progress float64 `json:"progress"`
}

// Animator owns the spawn interval and the in-flight marker set. Disabling
// both halts future spawns and clears markers immediately; a spawn firing
// that races the disable observes the flag under the lock and becomes a
// no-op.
type Animator struct {
	cfg    Config
	source FlightSource

	now  func() time.Time
	rand *rand.Rand

	mu      sync.Mutex
	enabled bool
	markers []Marker
	cancel  chan struct{}
}

// New creates a disabled animator reading candidates from source.
func New(cfg Config, source FlightSource) *Animator {
	if cfg.Interval <= 0 {
		cfg.Interval = 800 * time.Millisecond
	}
	if cfg.MaxPerSpawn <= 0 {
		cfg.MaxPerSpawn = 1
	}
	return &Animator{
		cfg:    cfg,
		source: source,
		now:    time.Now,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enabled reports whether the animator is running.
func (a *Animator) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetEnabled toggles the animation. Enabling starts the interval loop;
// disabling stops it and removes every in-flight marker.
func (a *Animator) SetEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if on == a.enabled {
		return
	}
	a.enabled = on

	if !on {
		a.markers = nil
		if a.cancel != nil {
			close(a.cancel)
			a.cancel = nil
		}
		return
	}

	cancel := make(chan struct{})
	a.cancel = cancel
	go func() {
		tk := time.NewTicker(a.cfg.Interval)
		defer tk.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-tk.C:
				a.Spawn()
			}
		}
	}()
}

// Close disables the animator and releases its loop.
func (a *Animator) Close() { a.SetEnabled(false) }

// Spawn performs one interval firing: pick up to MaxPerSpawn uniformly
// random candidates and launch a marker along each. A no-op while disabled
// or when no link is eligible. Exported so tests can drive the scheduler
// deterministically.
func (a *Animator) Spawn() {
	flights := a.source()

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled || len(flights) == 0 {
		return
	}

	spread := a.cfg.MaxDuration - a.cfg.MinDuration
	for i := 0; i < a.cfg.MaxPerSpawn; i++ {
		f := flights[a.rand.Intn(len(flights))]
		d := a.cfg.MinDuration
		if spread > 0 {
			d += time.Duration(a.rand.Int63n(int64(spread)))
		}
		a.markers = append(a.markers, Marker{
			ID:       uuid.NewString(),
			LinkID:   f.LinkID,
			FromX:    f.FromX,
			FromY:    f.FromY,
			ToX:      f.ToX,
			ToY:      f.ToY,
			Spawned:  a.now(),
			Duration: d,
		})
	}
}

// Active prunes finished markers and returns the in-flight set with
// progress evaluated at the current clock.
func (a *Animator) Active() []ActiveMarker {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	kept := a.markers[:0]
	var out []ActiveMarker
	for _, m := range a.markers {
		elapsed := now.Sub(m.Spawned)
		if elapsed >= m.Duration {
			continue
		}
		kept = append(kept, m)
		out = append(out, ActiveMarker{Marker: m, Progress: float64(elapsed) / float64(m.Duration)})
	}
	a.markers = kept
	return out
}
