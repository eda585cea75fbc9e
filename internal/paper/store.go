// Package paper holds the paper-trading order ledger: an append-only order
// store plus the pure fold that reconstructs net position from it.
//
// The store is an explicit injected dependency, not ambient global state.
// It is mutex-guarded, but the position reconstruction assumes a total order
// over the underlying sequence, so concurrent logical writers per symbol
// still need external serialization (single-writer discipline).
package paper

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tradesim/internal/model"
)

// Store is the in-process, process-lifetime order history.
type Store struct {
	mu     sync.Mutex
	orders []model.Order

	now   func() time.Time
	newID func() string
}

// NewStore creates an empty order store using the wall clock and UUID ids.
func NewStore() *Store {
	return &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewStoreWithClock creates a store with injected clock and id source.
// Used by tests that need reproducible orders.
func NewStoreWithClock(now func() time.Time, newID func() string) *Store {
	return &Store{now: now, newID: newID}
}

// Place appends a new order with a fresh id and the current timestamp,
// and returns it. Orders are immutable after creation.
func (s *Store) Place(symbol string, side model.Side, qty, price float64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := model.Order{
		ID:     s.newID(),
		Symbol: symbol,
		Side:   side,
		Qty:    qty,
		Price:  price,
		TS:     s.now().UTC(),
	}
	s.orders = append(s.orders, o)
	return o
}

// Orders returns the orders matching symbol in insertion order.
// An empty symbol returns all orders. The returned slice is a copy.
func (s *Store) Orders(symbol string) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if symbol == "" || o.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the total number of stored orders.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Reset clears the order history.
func (s *Store) Reset() {
	s.mu.Lock()
	s.orders = nil
	s.mu.Unlock()
}
