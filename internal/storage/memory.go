package storage

import (
	"context"
	"sync"
)

// MemoryKV is a mutex-guarded in-memory store. It backs unit tests
// and the "memory" state backend of the daemon.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value, or nil when the key is
// absent.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Apply(ctx context.Context, puts []Put) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range puts {
		v := make([]byte, len(p.Value))
		copy(v, p.Value)
		m.data[p.Key] = v
	}
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Snapshot returns a deep copy of the store contents, for comparing
// state before and after a call.
func (m *MemoryKV) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		c := make([]byte, len(v))
		copy(c, v)
		snap[k] = c
	}
	return snap
}
