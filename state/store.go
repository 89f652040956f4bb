// Package state holds the world-state abstractions the engine runs on: the key-value
// Store contract, a per-transaction write Batch, the enumerable Set kept inside a
// Store, and the concrete in-memory and LevelDB stores.
package state

import (
	"sort"
	"sync"
)

// Store is the subset of the chaincode stub the engine needs. A missing key reads
// as a nil value with a nil error.
type Store interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
}

// EventSink receives the event published by a committed transaction.
type EventSink interface {
	SetEvent(name string, payload []byte) error
}

// BatchWriter is implemented by stores that can apply a whole write set atomically.
type BatchWriter interface {
	WriteBatch(puts map[string][]byte, dels []string) error
}

// Memory is a map-backed Store, safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// GetState returns a copy of the value stored under key.
func (m *Memory) GetState(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// PutState stores a copy of value under key.
func (m *Memory) PutState(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

// DelState removes key.
func (m *Memory) DelState(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// WriteBatch applies puts and deletes under one lock.
func (m *Memory) WriteBatch(puts map[string][]byte, dels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range puts {
		m.data[key] = append([]byte(nil), value...)
	}
	for _, key := range dels {
		delete(m.data, key)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
