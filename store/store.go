// ABOUTME: Persistence adapter interface for the CRM collections
// ABOUTME: Key to JSON value storage with an in-memory implementation
package store

import (
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned by KV implementations when a key is absent.
var ErrNotFound = errors.New("key not found")

// KV is a string keyed byte store. Engines: charm.Client, db.KVStore and Memory.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// Memory is a KV held in process memory. Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Copy writes every key of src into dst and returns the number copied.
func Copy(dst, src KV, keys []string) (int, error) {
	n := 0
	for _, k := range keys {
		v, err := src.Get(k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := dst.Set(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
