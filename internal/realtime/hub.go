// Package realtime fans location events out to live observers. The hub is
// process-local: one service instance owns the full subscriber set.
package realtime

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Subscriber is one live observer connection. Send must be safe for the
// hub to call from any goroutine.
type Subscriber interface {
	Send(v interface{}) error
	Close() error
}

// room holds the observers of one trip or truck id. Its lock is held for
// the whole send loop, which keeps broadcasts for the same id in
// invocation order while leaving other ids free to proceed.
type room struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// Hub maps trip/truck ids to their current observers and performs
// best-effort fan-out.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// Subscribe registers sub under id.
func (h *Hub) Subscribe(id string, sub Subscriber) {
	h.mu.Lock()
	rm, ok := h.rooms[id]
	if !ok {
		rm = &room{subs: make(map[Subscriber]struct{})}
		h.rooms[id] = rm
	}
	rm.mu.Lock()
	rm.subs[sub] = struct{}{}
	rm.mu.Unlock()
	h.mu.Unlock()
	log.WithField("id", id).Debug("observer subscribed")
}

// Unsubscribe removes sub from id. An emptied room is deleted so the map
// never accumulates dead entries.
func (h *Hub) Unsubscribe(id string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[id]
	if !ok {
		return
	}
	rm.mu.Lock()
	delete(rm.subs, sub)
	empty := len(rm.subs) == 0
	rm.mu.Unlock()
	if empty {
		delete(h.rooms, id)
	}
}

// Broadcast delivers message to every observer of id. Delivery is
// best-effort and isolated per observer: a failed send removes only that
// observer and never propagates to the caller. Only the room's own lock
// is held while sending, so a slow observer of one id cannot stall
// broadcasts, subscribes, or unsubscribes for any other id.
func (h *Hub) Broadcast(id string, message interface{}) {
	h.mu.RLock()
	rm, ok := h.rooms[id]
	h.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	var dead []Subscriber
	for sub := range rm.subs {
		if err := sub.Send(message); err != nil {
			log.WithField("id", id).WithError(err).Debug("dropping observer after failed send")
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(rm.subs, sub)
		sub.Close()
	}
	empty := len(rm.subs) == 0
	rm.mu.Unlock()

	if empty {
		h.dropIfEmpty(id, rm)
	}
}

// dropIfEmpty deletes id's room if it is still the registered room and
// still empty. The re-check under both locks keeps a room a concurrent
// Subscribe just repopulated alive.
func (h *Hub) dropIfEmpty(id string, rm *room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.rooms[id]; !ok || cur != rm {
		return
	}
	rm.mu.Lock()
	empty := len(rm.subs) == 0
	rm.mu.Unlock()
	if empty {
		delete(h.rooms, id)
	}
}

// Count returns the number of observers currently registered under id.
func (h *Hub) Count(id string) int {
	h.mu.RLock()
	rm, ok := h.rooms[id]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.subs)
}
