package cart

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/nahl/internal/domain"
)

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	carts   map[string]map[string]int
	touched map[string]time.Time
	hub     *Hub
	now     func() time.Time
}

// NewMemoryStore creates a store publishing changes to hub.
func NewMemoryStore(hub *Hub) *MemoryStore {
	return &MemoryStore{
		carts:   make(map[string]map[string]int),
		touched: make(map[string]time.Time),
		hub:     hub,
		now:     time.Now,
	}
}

// Qty implements domain.Cart.
func (s *MemoryStore) Qty(ctx context.Context, session, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[session][productID], nil
}

// Add implements domain.Cart. Quantities never drop below zero.
func (s *MemoryStore) Add(ctx context.Context, session, productID string, delta int) (int, error) {
	s.mu.Lock()
	lines := s.carts[session]
	if lines == nil {
		lines = make(map[string]int)
		s.carts[session] = lines
	}
	prev := lines[productID]
	next := max(0, prev+delta)
	if next == 0 {
		delete(lines, productID)
	} else {
		lines[productID] = next
	}
	s.touched[session] = s.now()
	s.mu.Unlock()

	if next != prev {
		s.hub.Publish(domain.QuantityChanged{Session: session, ID: productID, Qty: next})
	}
	return next, nil
}

// Lines implements domain.Cart. Lines are ordered by product id.
func (s *MemoryStore) Lines(ctx context.Context, session string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, 0, len(s.carts[session]))
	for id, qty := range s.carts[session] {
		lines = append(lines, domain.CartLine{ProductID: id, Qty: qty})
	}
	slices.SortFunc(lines, func(a, b domain.CartLine) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return lines, nil
}

// Subscribe implements domain.Cart.
func (s *MemoryStore) Subscribe(session string) (<-chan domain.QuantityChanged, func()) {
	return s.hub.Subscribe(session)
}

// DeleteIdle drops carts last changed before cutoff and returns how many
// lines were removed.
func (s *MemoryStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for session, at := range s.touched {
		if !at.Before(cutoff) {
			continue
		}
		removed += int64(len(s.carts[session]))
		delete(s.carts, session)
		delete(s.touched, session)
	}
	return removed, nil
}
