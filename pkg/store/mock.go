package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu        sync.RWMutex
	snapshots map[string]*session.State

	// SaveErr, when set, is returned from Save to simulate an
	// unwritable backend.
	SaveErr error
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{snapshots: make(map[string]*session.State)}
}

func (m *MockStore) Ping(ctx context.Context) error { return nil }

func (m *MockStore) Close() error { return nil }

func (m *MockStore) Save(ctx context.Context, name string, state *session.State) error {
	if err := validateName(name); err != nil {
		return err
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[name] = state.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) (*session.State, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.snapshots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return st.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(m.snapshots, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.snapshots))
	for name := range m.snapshots {
		names = append(names, name)
	}
	return names, nil
}
