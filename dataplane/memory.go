package dataplane

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ruteri/aoss-provisioner/interfaces"
)

// MemoryStore is an in-memory interfaces.DocumentStore used for dry runs.
type MemoryStore struct {
	mutex   sync.Mutex
	indexes map[string][]json.RawMessage
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string][]json.RawMessage)}
}

// MemoryFactory returns a factory that hands out store for any endpoint.
func MemoryFactory(store *MemoryStore) interfaces.DocumentStoreFactory {
	return func(string) (interfaces.DocumentStore, error) {
		return store, nil
	}
}

// CreateIndex records an empty index. An existing index is a conflict.
func (m *MemoryStore) CreateIndex(_ context.Context, name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.indexes[name]; exists {
		return fmt.Errorf("%w: create index %q: %w", interfaces.ErrDataPlane, name, interfaces.ErrConflict)
	}
	m.indexes[name] = nil
	return nil
}

// IndexDocument appends the JSON document in body to index.
func (m *MemoryStore) IndexDocument(_ context.Context, index string, body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if !json.Valid(raw) {
		return fmt.Errorf("%w: index document into %q: body is not valid JSON", interfaces.ErrDataPlane, index)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.indexes[index]; !exists {
		// Writing into a missing index creates it, as the real service does.
		m.indexes[index] = nil
	}
	m.indexes[index] = append(m.indexes[index], json.RawMessage(raw))
	return nil
}

// Documents returns the documents stored in index.
func (m *MemoryStore) Documents(index string) []json.RawMessage {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]json.RawMessage(nil), m.indexes[index]...)
}
