// Package cache holds the reference cache of user snapshots consumed from the
// event stream. Entries are only ever inserted or overwritten, never evicted:
// the cache is a projection, not a store.
package cache

import (
	"context"
	"sync"

	"microshop/orders-service/domain"
)

// Memory is the default implementation: a single-writer (the consumer loop),
// multi-reader map. Cold after a restart until events arrive.
type Memory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]domain.User)}
}

// Put inserts or overwrites unconditionally. Last write wins by arrival order
// of consumption, not by any embedded timestamp.
func (m *Memory) Put(_ context.Context, id string, u domain.User) {
	m.mu.Lock()
	m.users[id] = u
	m.mu.Unlock()
}

// Get returns the last-applied snapshot for id.
func (m *Memory) Get(_ context.Context, id string) (domain.User, bool) {
	m.mu.RLock()
	u, ok := m.users[id]
	m.mu.RUnlock()
	return u, ok
}

// Has reports whether a snapshot exists for id.
func (m *Memory) Has(ctx context.Context, id string) bool {
	_, ok := m.Get(ctx, id)
	return ok
}
