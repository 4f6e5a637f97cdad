package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "graph.loaded", Data: map[string]int{"nodes": 4}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: graph.loaded") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"nodes":4`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishFrameThrottleFlushesLast(t *testing.T) {
	b := NewBroker(300 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// A burst of frames: the first goes out right away, the intermediates
	// are throttled, and the last one flushes after the quiet period so
	// subscribers end on the settled scene.
	b.PublishFrame(map[string]int{"tick": 1})
	b.PublishFrame(map[string]int{"tick": 2})
	b.PublishFrame(map[string]int{"tick": 3})

	var got []string
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, string(msg))
		case <-deadline:
			t.Fatalf("frames delivered = %d, want 2: %q", len(got), got)
		}
	}

	if !strings.Contains(got[0], `"tick":1`) {
		t.Errorf("first frame = %q, want tick 1", got[0])
	}
	if !strings.Contains(got[1], `"tick":3`) {
		t.Errorf("flushed frame = %q, want the last tick", got[1])
	}

	// The intermediate frame was superseded, never delivered.
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra frame %q", msg)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(10 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishFrame(map[string]string{"mode": "force"})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: frame") {
		t.Errorf("handler output missing frame event: %q", body)
	}
	if !strings.Contains(body, `"mode":"force"`) {
		t.Errorf("handler output missing frame data: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then some; must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.Publish(Event{Type: "graph.loaded", Data: nil})
	b.PublishFrame(map[string]int{"tick": 1})
}
