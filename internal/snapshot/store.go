package snapshot

import (
	"sync"

	"rudder/internal/state"
)

// Store persists one baseline document per device identity.
type Store interface {
	// Get returns the snapshot for the device, with false when none has
	// been recorded yet.
	Get(deviceID string) (state.Document, bool, error)

	// Set records the snapshot for the device, replacing any previous one.
	Set(deviceID string, doc state.Document) error
}

// MemoryStore is an in-memory Store for tests and single-run invocations.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]state.Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]state.Document)}
}

func (s *MemoryStore) Get(deviceID string) (state.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.snapshots[deviceID]
	if !ok {
		return nil, false, nil
	}
	return doc.DeepCopy(), true, nil
}

func (s *MemoryStore) Set(deviceID string, doc state.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[deviceID] = doc.DeepCopy()
	return nil
}
