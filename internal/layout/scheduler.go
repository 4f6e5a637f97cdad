package layout

import (
	"sync"
	"time"
)

// Scheduler drives repeated solver steps. Start replaces any previous run;
// the step callback is invoked until it returns false or Stop is called.
// Implementations must never invoke step synchronously from Start, so
// callers may hold their own locks while (re)starting.
type Scheduler interface {
	Start(step func() bool)
	Stop()
}

// TickerScheduler invokes the step callback on a fixed wall-clock interval,
// standing in for the animation-frame loop of an interactive surface.
type TickerScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	cancel chan struct{}
}

// NewTickerScheduler creates a scheduler firing every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &TickerScheduler{interval: interval}
}

// Start begins (or restarts) the tick loop.
func (t *TickerScheduler) Start(step func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		close(t.cancel)
	}
	cancel := make(chan struct{})
	t.cancel = cancel

	go func() {
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-tk.C:
				if !step() {
					return
				}
			}
		}
	}()
}

// Stop halts the current loop, if any.
func (t *TickerScheduler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
}
