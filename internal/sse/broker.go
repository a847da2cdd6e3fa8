// Package sse implements a Server-Sent Events broker for real-time updates.
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

// encode renders the event in text/event-stream framing.
func (e Event) encode() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// Event types.
const (
	SpecimenSaved   = "specimen.saved"
	SpecimenRemoved = "specimen.removed"
	CareSaved       = "event.saved"
	CareRemoved     = "event.removed"
	GardenReplaced  = "garden.replaced"
	SettingsSaved   = "settings.saved"
	SheetUpdated    = "sheet.updated"
	StorageWarning  = "storage.warning"
	StorageOK       = "storage.ok"
)

type changeReq struct {
	kind string
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the clients, the sheet throttle
// timestamp and the active storage warning. Public methods talk to it over
// channels. The active warning is replayed to clients that subscribe after it
// was raised, until ClearWarning.
type Broker struct {
	sheetMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	warningCh     chan string
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. sheet.updated is sent at most once per
// sheetThrottle.
func NewBroker(sheetThrottle time.Duration) *Broker {
	if sheetThrottle <= 0 {
		sheetThrottle = time.Second
	}

	b := &Broker{
		sheetMin:      sheetThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		warningCh:     make(chan string, 16),
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
	var lastSheet time.Time
	var warning []byte

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}
	broadcast := func(event Event) {
		raw, err := event.encode()
		if err != nil {
			return
		}
		for ch := range clients {
			send(ch, raw)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if warning != nil {
				send(ch, warning)
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case msg := <-b.warningCh:
			if msg == "" {
				if warning != nil {
					warning = nil
					broadcast(Event{Type: StorageOK, Data: map[string]string{}})
				}
				continue
			}
			raw, err := Event{Type: StorageWarning, Data: map[string]string{"message": msg}}.encode()
			if err != nil {
				continue
			}
			warning = raw
			for ch := range clients {
				send(ch, raw)
			}

		case req := <-b.changeCh:
			switch req.kind {
			case SpecimenSaved, SpecimenRemoved, CareSaved, CareRemoved, GardenReplaced, SettingsSaved:
				broadcast(Event{Type: req.kind, Data: map[string]string{"id": req.id}})
			default:
				continue
			}

			now := time.Now()
			if now.Sub(lastSheet) >= b.sheetMin {
				lastSheet = now
				broadcast(Event{Type: SheetUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes a garden change and a throttled sheet.updated
// event. Unknown kinds are dropped.
func (b *Broker) PublishChange(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// PublishWarning broadcasts a storage.warning event carrying message and
// keeps it active for later subscribers.
func (b *Broker) PublishWarning(message string) {
	if message != "" {
		b.sendWarning(message)
	}
}

// ClearWarning drops the active storage warning and broadcasts storage.ok.
// It does nothing when no warning is active.
func (b *Broker) ClearWarning() {
	b.sendWarning("")
}

func (b *Broker) sendWarning(message string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.warningCh <- message:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events/stream).
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
