package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps snapshots in process memory. This is the default: the
// core guarantees no persistence beyond the lifetime of one meeting.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (ms *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	ms.mu.Lock()
	ms.data[key] = cp
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	data, ok := ms.data[key]
	ms.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", key)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.data, key)
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	ms.mu.RLock()
	var keys []string
	for key := range ms.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	ms.mu.RUnlock()

	sort.Strings(keys)
	return keys, nil
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	ms.data = make(map[string][]byte)
	ms.mu.Unlock()
	return nil
}
