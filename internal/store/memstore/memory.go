// Package memstore provides an in-memory implementation of store.Persister.
// It is used by tests and the demo and does not persist data.
package memstore

import (
	"strconv"
	"sync"

	"github.com/yiblet/cliphist/internal/store"
)

// MemoryStore keeps the last saved document as serialized bytes, so what
// Load returns is decoupled from what was passed to Save, as with a file.
// It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	data     []byte
	saves    int
	gen      int
	failWith error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved document, or store.ErrNoDocument.
func (m *MemoryStore) Load() (*store.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, store.ErrNoDocument
	}
	return store.Parse(m.data)
}

// Save serializes and keeps doc, unless failures are being injected.
func (m *MemoryStore) Save(doc *store.Document) error {
	data, err := store.Marshal(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	m.data = data
	m.saves++
	m.gen++
	return nil
}

// SetRaw replaces the stored bytes directly (for testing corrupt documents).
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.gen++
}

// Version returns a counter bumped by every Save and SetRaw.
func (m *MemoryStore) Version() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return "", nil
	}
	return strconv.Itoa(m.gen), nil
}

// Raw returns the stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// FailSaves makes every following Save return err. Pass nil to stop.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Saves returns the number of successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}
