// Package cart implements the cart collaborator: per-visitor product
// quantities with change notifications, kept in memory or in Postgres and
// optionally relayed between instances over NATS.
package cart

import (
	"sync"

	"github.com/dukerupert/nahl/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// Hub fans quantity changes out to the subscribers of a session.
// Sends never block: a subscriber whose buffer is full misses the change.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]chan domain.QuantityChanged
	nextID uint64
	relays []func(domain.QuantityChanged)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]chan domain.QuantityChanged)}
}

// Subscribe registers for the session's changes. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(session string) (<-chan domain.QuantityChanged, func()) {
	ch := make(chan domain.QuantityChanged, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[session] == nil {
		h.subs[session] = make(map[uint64]chan domain.QuantityChanged)
	}
	h.subs[session][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[session], id)
			if len(h.subs[session]) == 0 {
				delete(h.subs, session)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// OnPublish registers fn to receive every locally published change.
func (h *Hub) OnPublish(fn func(domain.QuantityChanged)) {
	h.mu.Lock()
	h.relays = append(h.relays, fn)
	h.mu.Unlock()
}

// Publish delivers a local change to subscribers and relays.
func (h *Hub) Publish(change domain.QuantityChanged) {
	h.Deliver(change)

	h.mu.RLock()
	relays := h.relays
	h.mu.RUnlock()
	for _, fn := range relays {
		fn(change)
	}
}

// Deliver sends change to local subscribers only.
func (h *Hub) Deliver(change domain.QuantityChanged) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[change.Session] {
		select {
		case ch <- change:
		default:
		}
	}
}
