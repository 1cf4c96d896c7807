package ticket

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is the single cached ticket list and the user it was loaded for.
type CacheEntry struct {
	UserID      int64     `json:"user_id"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Tickets     []*Ticket `json:"tickets"`
}

// CacheStore keeps at most one CacheEntry. Get returns nil, nil on a miss.
type CacheStore interface {
	Get(ctx context.Context) (*CacheEntry, error)
	Set(ctx context.Context, entry *CacheEntry) error
	Clear(ctx context.Context) error
}

// MemoryStore is the in-process CacheStore. Invalidation may arrive from an
// event handler goroutine, so access is guarded.
type MemoryStore struct {
	mu    sync.Mutex
	entry *CacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(context.Context) (*CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry, nil
}

func (m *MemoryStore) Set(_ context.Context, entry *CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = entry
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}
