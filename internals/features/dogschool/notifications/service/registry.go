package service

import (
	"sync"

	"github.com/google/uuid"
)

// Sink receives encoded events for one connected user. The SSE handler
// owns the channel and drains it onto the wire.
type Sink chan []byte

// Registry tracks live push connections keyed by user id. One connection
// per user; a new Register replaces (and closes) the previous sink.
type Registry struct {
	mu    sync.Mutex
	sinks map[uuid.UUID]Sink
}

func NewRegistry() *Registry {
	return &Registry{sinks: make(map[uuid.UUID]Sink)}
}

func (r *Registry) Register(userID uuid.UUID, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sinks[userID]; ok {
		close(old)
	}
	r.sinks[userID] = sink
}

// Unregister removes the connection only when it still owns the slot. A
// stale handler unwinding after its sink was replaced must not tear down
// the live connection.
func (r *Registry) Unregister(userID uuid.UUID, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sinks[userID]; ok && current == sink {
		close(current)
		delete(r.sinks, userID)
	}
}

// SendIfPresent pushes without blocking; a full or missing sink drops the
// event (the notification row is the durable copy). The lock is held
// across the send so the sink can not be closed underneath it.
func (r *Registry) SendIfPresent(userID uuid.UUID, event []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sink, ok := r.sinks[userID]
	if !ok {
		return false
	}
	select {
	case sink <- event:
		return true
	default:
		return false
	}
}
