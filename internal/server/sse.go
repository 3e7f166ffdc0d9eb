package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single server-sent event.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Broadcaster fans events out to connected SSE clients. Each client gets a
// buffered channel; events for a full channel are dropped.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]chan Event
	log     *slog.Logger
}

// NewBroadcaster creates a ready-to-use broadcaster.
func NewBroadcaster(log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{clients: make(map[string]chan Event), log: log}
}

// Subscribe registers a client and returns its event channel.
func (b *Broadcaster) Subscribe(clientID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 32)
	b.clients[clientID] = ch
	b.log.Debug("sse client subscribed", "client", clientID, "total", len(b.clients))
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.clients[clientID]; ok {
		close(ch)
		delete(b.clients, clientID)
		b.log.Debug("sse client unsubscribed", "client", clientID, "remaining", len(b.clients))
	}
}

// Broadcast sends an event to every client without blocking.
func (b *Broadcaster) Broadcast(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.clients {
		select {
		case ch <- evt:
		default:
			b.log.Warn("sse dropping event for slow client", "event", evt.Event, "client", id)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "SSE_NOT_SUPPORTED", "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	clientID := uuid.New().String()
	ch := s.sse.Subscribe(clientID)
	defer s.sse.Unsubscribe(clientID)

	// Late subscribers start from the current hover.
	if err := writeEvent(w, flusher, Event{Event: "hover", Data: s.session.Hover()}); err != nil {
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, evt); err != nil {
				return
			}
		case t := <-heartbeat.C:
			if err := writeEvent(w, flusher, Event{Event: "heartbeat", Data: map[string]int64{"t": t.Unix()}}); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, evt Event) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
