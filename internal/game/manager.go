package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/session"
)

// ErrSessionNotFound indicates no live session exists for the id.
var ErrSessionNotFound = errors.New("session not found")

// Manager is the arena of live sessions. Each session id maps to
// exactly one controller, and each controller carries its own lock, so
// concurrent tool invocations against different sessions never contend
// and invocations against the same session serialize.
type Manager struct {
	mu       sync.RWMutex
	catalog  *scenario.Catalog
	logger   *slog.Logger
	sessions map[uuid.UUID]*session.Controller
}

func NewManager(catalog *scenario.Catalog, logger *slog.Logger) *Manager {
	return &Manager{
		catalog:  catalog,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session.Controller),
	}
}

// Catalog exposes the scenario catalog backing every session.
func (m *Manager) Catalog() *scenario.Catalog {
	return m.catalog
}

// Create starts a new session and returns its id.
func (m *Manager) Create(playerName string, maxRounds int, seed int64) (uuid.UUID, *session.Controller, error) {
	ctrl, err := session.NewController(m.catalog, playerName, maxRounds, seed)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	m.mu.Lock()
	m.sessions[id] = ctrl
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", id, "player", playerName, "max_rounds", maxRounds)
	return id, ctrl, nil
}

// Restore revives a saved snapshot as a new live session.
func (m *Manager) Restore(state *session.State) (uuid.UUID, *session.Controller, error) {
	ctrl, err := session.Resume(m.catalog, state)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	m.mu.Lock()
	m.sessions[id] = ctrl
	m.mu.Unlock()

	m.logger.Info("Session restored", "session_id", id, "player", state.PlayerName)
	return id, ctrl, nil
}

// Get returns the controller owning the session's state.
func (m *Manager) Get(id uuid.UUID) (*session.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ctrl, nil
}

// Delete discards a live session. Saved snapshots are unaffected.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// IDs lists the ids of all live sessions.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
