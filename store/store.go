// Package store is the persistence seam: it snapshots accepted specs and
// rehydrates them into a later editing session. The core does not care about
// the storage format beyond "a named spec comes back structurally valid".
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/archsketch/archsketch/spec"
)

// ErrNotFound is returned when no snapshot exists under the given name.
var ErrNotFound = errors.New("spec not found")

// SpecStore persists spec snapshots by name.
type SpecStore interface {
	// Save stores a snapshot, replacing any previous one with the same name.
	Save(ctx context.Context, name string, s *spec.Spec) error

	// Load returns the snapshot stored under name, or ErrNotFound.
	Load(ctx context.Context, name string) (*spec.Spec, error)

	// List returns the names of all stored snapshots, sorted.
	List(ctx context.Context) ([]string, error)
}

// MemStore is an in-memory SpecStore for tests and single-process use.
type MemStore struct {
	mu    sync.RWMutex
	specs map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{specs: make(map[string][]byte)}
}

// Save implements SpecStore.
func (m *MemStore) Save(_ context.Context, name string, s *spec.Spec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := encodeSpec(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[name] = data
	return nil
}

// Load implements SpecStore.
func (m *MemStore) Load(_ context.Context, name string) (*spec.Spec, error) {
	m.mu.RLock()
	data, ok := m.specs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSpec(data)
}

// List implements SpecStore.
func (m *MemStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.specs))
	for name := range m.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
