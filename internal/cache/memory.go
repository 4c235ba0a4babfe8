package cache

import (
	"context"
	"sync"
)

type memoryEntry struct {
	gen  uint64
	data []byte
}

// MemoryStore is the default in-process backend. A single mutex is enough:
// entries are small JSON payloads and contention is per page render.
type MemoryStore struct {
	mu      sync.Mutex
	gens    map[Kind]uint64
	entries map[Key]memoryEntry
}

// NewMemoryStore creates an in-process list cache
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		gens:    make(map[Kind]uint64),
		entries: make(map[Key]memoryEntry),
	}
}

func (m *MemoryStore) Generation(_ context.Context, kind Kind) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[kind], nil
}

func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || entry.gen != m.gens[key.Kind] {
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, gen uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Stale fill: an invalidation landed while the fetch was in flight.
	if gen != m.gens[key.Kind] {
		return nil
	}
	m.entries[key] = memoryEntry{gen: gen, data: data}
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens[kind]++
	for key := range m.entries {
		if key.Kind == kind {
			delete(m.entries, key)
		}
	}
	return nil
}
