package layout

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerRunsUntilStepFalse(t *testing.T) {
	s := NewTickerScheduler(5 * time.Millisecond)
	defer s.Stop()

	var ticks atomic.Int64
	done := make(chan struct{})
	s.Start(func() bool {
		if ticks.Add(1) == 3 {
			close(done)
			return false
		}
		return true
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never reached the final step")
	}

	// The loop is dead after a false step.
	n := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != n {
		t.Errorf("ticks advanced after step returned false: %d -> %d", n, ticks.Load())
	}
}

func TestTickerSchedulerRestart(t *testing.T) {
	s := NewTickerScheduler(5 * time.Millisecond)
	defer s.Stop()

	var first, second atomic.Int64
	s.Start(func() bool { first.Add(1); return true })
	// Restart replaces the running loop; the old callback stops firing.
	s.Start(func() bool { second.Add(1); return true })

	time.Sleep(50 * time.Millisecond)
	n := first.Load()
	time.Sleep(50 * time.Millisecond)
	if first.Load() != n {
		t.Error("first loop still ticking after restart")
	}
	if second.Load() == 0 {
		t.Error("second loop never ticked")
	}
}

func TestTickerSchedulerStop(t *testing.T) {
	s := NewTickerScheduler(5 * time.Millisecond)

	var ticks atomic.Int64
	s.Start(func() bool { ticks.Add(1); return true })
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// Let any in-flight tick drain before sampling.
	time.Sleep(20 * time.Millisecond)
	n := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != n {
		t.Errorf("ticks advanced after Stop: %d -> %d", n, ticks.Load())
	}

	// Stop again is a no-op.
	s.Stop()
}

func TestTickerSchedulerStartNotSynchronous(t *testing.T) {
	s := NewTickerScheduler(time.Hour)
	defer s.Stop()

	called := make(chan struct{}, 1)
	s.Start(func() bool {
		called <- struct{}{}
		return false
	})
	select {
	case <-called:
		t.Fatal("step ran synchronously from Start")
	default:
	}
}
