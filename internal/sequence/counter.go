// Package sequence allocates the persisted ticket and change-request
// numbers. Allocation goes through a counter table rather than a
// scan-max-increment over the main tables, so concurrent creates cannot
// mint the same number.
package sequence

import (
	"context"
	"sync"
)

// CounterStore atomically advances a named counter and returns the new
// value. The first call for a key returns 1.
type CounterStore interface {
	Next(ctx context.Context, key string) (int64, error)
}

// MemoryStore is a process-local CounterStore for tests and tooling.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int64)}
}

// Next implements CounterStore.
func (s *MemoryStore) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}
