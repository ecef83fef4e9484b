package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Store used by tests and dry runs.
type Memory struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewMemory creates an empty in-memory store seeded with the given documents.
func NewMemory(seed map[string][]byte) *Memory {
	docs := make(map[string][]byte, len(seed))
	for key, data := range seed {
		docs[key] = slices.Clone(data)
	}

	return &Memory{docs: docs}
}

// ReadDocument implements Store.
func (m *Memory) ReadDocument(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[key]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	return slices.Clone(data), nil
}

// WriteDocument implements Store.
func (m *Memory) WriteDocument(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key] = slices.Clone(data)

	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
