package game

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/session"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	catalog, err := scenario.ParseCatalog([]byte(`[
		{"id": "a", "prompt": "Prompt A", "hint": "Hint A"},
		{"id": "b", "prompt": "Prompt B", "hint": "Hint B"},
		{"id": "c", "prompt": "Prompt C", "hint": "Hint C"}
	]`))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewManager(catalog, logger)
}

func TestManager_CreateGet(t *testing.T) {
	m := newTestManager(t)

	id, ctrl, err := m.Create("rory", 2, 42)
	require.NoError(t, err)
	require.NotNil(t, ctrl)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)
}

func TestManager_CreateRejectsBadRounds(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Create("rory", 0, 42)
	assert.Error(t, err)

	// Asking for more rounds than the catalog holds fails up front.
	_, _, err = m.Create("rory", 4, 42)
	assert.ErrorIs(t, err, scenario.ErrInsufficientScenarios)
}

func TestManager_GetUnknown(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Restore(t *testing.T) {
	m := newTestManager(t)

	state := &session.State{
		PlayerName:   "rory",
		CurrentRound: 0,
		MaxRounds:    2,
		Rounds: []session.Round{
			{ID: "a", Prompt: "Prompt A", Hint: "Hint A"},
			{ID: "b", Prompt: "Prompt B", Hint: "Hint B"},
		},
		Phase:        session.PhaseAwaitingImprov,
		StoryHistory: []session.TranscriptEntry{{Speaker: session.SpeakerHost, Text: "Welcome!"}},
	}

	id, ctrl, err := m.Restore(state)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	// The restored session continues where the snapshot left off.
	require.NoError(t, ctrl.AcknowledgePerformance("back on stage"))

	// Invalid snapshots never enter the arena.
	state.Rounds = nil
	_, _, err = m.Restore(state)
	assert.Error(t, err)
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)

	id, _, err := m.Create("rory", 2, 42)
	require.NoError(t, err)

	require.NoError(t, m.Delete(id))
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(id), ErrSessionNotFound)
}

func TestManager_IDs(t *testing.T) {
	m := newTestManager(t)
	assert.Empty(t, m.IDs())

	id1, _, err := m.Create("rory", 2, 1)
	require.NoError(t, err)
	id2, _, err := m.Create("max", 2, 2)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{id1, id2}, m.IDs())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := newTestManager(t)

	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			id, _, err := m.Create("rory", 2, seed)
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			ids <- id
		}(int64(i))
	}
	wg.Wait()
	close(ids)

	for id := range ids {
		_, err := m.Get(id)
		assert.NoError(t, err)
	}
	assert.Len(t, m.IDs(), 20)
}
