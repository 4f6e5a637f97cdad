// Package sse implements a Server-Sent Events broker streaming render
// frames and status events to attached UI shells.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable
// state (clients + frame throttle). Public methods communicate with this
// loop through channels, so no mutexes are required.
//
// Frames arrive at simulation tick rate; the broker rate-limits them to
// frameMin and always flushes the most recent frame after a quiet period so
// subscribers end on the settled scene, not a stale intermediate tick.
type Broker struct {
	frameMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	frameCh       chan []byte
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker with the given minimum frame interval.
func NewBroker(frameThrottle time.Duration) *Broker {
	if frameThrottle <= 0 {
		frameThrottle = 33 * time.Millisecond
	}

	b := &Broker{
		frameMin:      frameThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		frameCh:       make(chan []byte, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastFrame time.Time
	var pending []byte
	var flush *time.Timer
	var flushCh <-chan time.Time

	send := func(raw []byte) {
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		send([]byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)))
	}

	for {
		select {
		case <-b.stopCh:
			if flush != nil {
				flush.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case raw := <-b.frameCh:
			now := time.Now()
			if now.Sub(lastFrame) >= b.frameMin {
				lastFrame = now
				pending = nil
				send(raw)
				continue
			}
			pending = raw
			if flush == nil {
				flush = time.NewTimer(b.frameMin)
				flushCh = flush.C
			} else {
				flush.Reset(b.frameMin)
			}

		case <-flushCh:
			if pending != nil {
				lastFrame = time.Now()
				send(pending)
				pending = nil
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends a status event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishFrame broadcasts a render frame, subject to rate limiting.
func (b *Broker) PublishFrame(frame any) {
	if b.closed.Load() {
		return
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	raw := []byte(fmt.Sprintf("event: frame\ndata: %s\n\n", payload))
	select {
	case b.frameCh <- raw:
	case <-b.stopped:
	default:
		// Frame channel full; the next tick supersedes this frame anyway.
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
