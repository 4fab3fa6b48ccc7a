// Package memory is the in-process KV backend. It is the isolation backend
// for tests and the development default.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"skillbridge.org/internal/store"
)

// KV implements store.KV with a mutex-guarded map.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ store.KV = (*KV)(nil)

// New creates an empty in-memory store.
func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// ListByPrefix returns matching entries in key order, so ULID-keyed records
// come back in creation order.
func (s *KV) ListByPrefix(ctx context.Context, prefix string) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]store.Entry, 0, len(keys))
	for _, k := range keys {
		v := make([]byte, len(s.data[k]))
		copy(v, s.data[k])
		out = append(out, store.Entry{Key: k, Value: v})
	}
	return out, nil
}

func (s *KV) Count(ctx context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}
