package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/improv-engine/internal/game"
	"github.com/jwebster45206/improv-engine/internal/services"
	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/session"
	"github.com/jwebster45206/improv-engine/pkg/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestHandler(t *testing.T) (*SessionHandler, *store.MockStore, *services.MockHost) {
	t.Helper()
	catalog, err := scenario.ParseCatalog([]byte(`[
		{"id": "a", "prompt": "Prompt A", "hint": "Hint A"},
		{"id": "b", "prompt": "Prompt B", "hint": "Hint B"},
		{"id": "c", "prompt": "Prompt C", "hint": "Hint C"}
	]`))
	require.NoError(t, err)

	logger := testLogger()
	manager := game.NewManager(catalog, logger)
	mockStore := store.NewMockStore()
	mockHost := services.NewMockHost()

	h := NewSessionHandler(manager, mockStore, mockHost, nil, logger, 2, nil)
	h.seedFn = func() int64 { return 42 }
	return h, mockStore, mockHost
}

func createSession(t *testing.T, h *SessionHandler, body string) CreateSessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp CreateSessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSessionHandler_Create(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := createSession(t, h, `{"player_name": "rory"}`)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	require.NotNil(t, resp.State)
	assert.Equal(t, "rory", resp.State.PlayerName)
	assert.Equal(t, session.PhaseIntro, resp.State.Phase)
	assert.Equal(t, 2, resp.State.MaxRounds, "max_rounds defaults from config")
	assert.Len(t, resp.State.Rounds, 2)
	assert.Empty(t, resp.State.StoryHistory)
}

func TestSessionHandler_CreateSeedIsDeterministic(t *testing.T) {
	h, _, _ := newTestHandler(t)

	a := createSession(t, h, `{"player_name": "rory", "seed": 7}`)
	b := createSession(t, h, `{"player_name": "max", "seed": 7}`)
	assert.Equal(t, a.State.Rounds, b.State.Rounds)
}

func TestSessionHandler_CreateBadRequests(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := doJSON(h, http.MethodPost, "/v1/sessions", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// More rounds than the catalog can supply.
	w = doJSON(h, http.MethodPost, "/v1/sessions", `{"player_name": "rory", "max_rounds": 9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_GetAndDelete(t *testing.T) {
	h, _, _ := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)

	w := doJSON(h, http.MethodGet, "/v1/sessions/"+resp.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var st session.State
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "rory", st.PlayerName)

	w = doJSON(h, http.MethodDelete, "/v1/sessions/"+resp.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(h, http.MethodGet, "/v1/sessions/"+resp.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_UnknownSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := doJSON(h, http.MethodGet, "/v1/sessions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(h, http.MethodGet, "/v1/sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_List(t *testing.T) {
	h, _, _ := newTestHandler(t)
	a := createSession(t, h, `{"player_name": "rory"}`)
	b := createSession(t, h, `{"player_name": "max"}`)

	w := doJSON(h, http.MethodGet, "/v1/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]uuid.UUID
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, resp["sessions"])
}

func TestSessionHandler_FullShowFlow(t *testing.T) {
	h, _, mockHost := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()

	// Opening scene announcement.
	w := doJSON(h, http.MethodGet, base+"/scene", "")
	require.Equal(t, http.StatusOK, w.Code)
	var scene session.Round
	require.NoError(t, json.NewDecoder(w.Body).Decode(&scene))
	assert.Equal(t, resp.State.Rounds[0].ID, scene.ID)

	// Advancing before the performance is a conflict.
	w = doJSON(h, http.MethodPost, base+"/advance", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Round 1 performance.
	w = doJSON(h, http.MethodPost, base+"/perform", `{"text": "I am a teapot"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var perform PerformResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&perform))
	assert.NotEmpty(t, perform.Reaction)
	assert.Equal(t, []string{"I am a teapot"}, mockHost.ReactionCalls)

	// A second performance in the same round is a conflict.
	w = doJSON(h, http.MethodPost, base+"/perform", `{"text": "again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Advance to round 2.
	w = doJSON(h, http.MethodPost, base+"/advance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var adv AdvanceResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&adv))
	assert.False(t, adv.Done)
	require.NotNil(t, adv.NextScene)
	assert.Equal(t, resp.State.Rounds[1].ID, adv.NextScene.ID)

	// Round 2 ends the show with a closing summary.
	w = doJSON(h, http.MethodPost, base+"/perform", `{"text": "grand finale"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(h, http.MethodPost, base+"/advance", "")
	require.Equal(t, http.StatusOK, w.Code)
	adv = AdvanceResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&adv))
	assert.True(t, adv.Done)
	assert.Nil(t, adv.NextScene)
	assert.NotEmpty(t, adv.Closing)

	// The show is over.
	w = doJSON(h, http.MethodGet, base+"/scene", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_PerformValidation(t *testing.T) {
	h, _, _ := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()

	doJSON(h, http.MethodGet, base+"/scene", "")

	w := doJSON(h, http.MethodPost, base+"/perform", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(h, http.MethodPost, base+"/perform", `{bad`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_PerformSurvivesHostFailure(t *testing.T) {
	h, _, mockHost := newTestHandler(t)
	mockHost.ReactionLineFunc = func(ctx context.Context, scene session.Round, performance string) (string, error) {
		return "", errors.New("llm unavailable")
	}

	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()
	doJSON(h, http.MethodGet, base+"/scene", "")

	w := doJSON(h, http.MethodPost, base+"/perform", `{"text": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var perform PerformResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&perform))
	assert.Empty(t, perform.Reaction)

	// The performance landed even though the reaction is empty.
	w = doJSON(h, http.MethodGet, "/v1/sessions/"+resp.ID.String(), "")
	var st session.State
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, session.PhaseReacting, st.Phase)
}

func TestSessionHandler_Restart(t *testing.T) {
	h, _, _ := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()

	doJSON(h, http.MethodGet, base+"/scene", "")
	doJSON(h, http.MethodPost, base+"/perform", `{"text": "mid-show"}`)

	// Restart with no body replays the same script.
	w := doJSON(h, http.MethodPost, base+"/restart", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st session.State
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, session.PhaseIntro, st.Phase)
	assert.Equal(t, 0, st.CurrentRound)
	assert.Empty(t, st.StoryHistory)
	assert.Equal(t, resp.State.Rounds, st.Rounds)

	// Restart with a seed keeps the invariants.
	w = doJSON(h, http.MethodPost, base+"/restart", `{"seed": 99}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = session.State{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, session.PhaseIntro, st.Phase)
	assert.Len(t, st.Rounds, st.MaxRounds)
}

func TestSessionHandler_SaveAndRestore(t *testing.T) {
	h, mockStore, _ := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()

	doJSON(h, http.MethodGet, base+"/scene", "")
	doJSON(h, http.MethodPost, base+"/perform", `{"text": "saved mid-show"}`)

	w := doJSON(h, http.MethodPost, base+"/save", `{"name": "my-show"}`)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	saved, err := mockStore.Load(context.Background(), "my-show")
	require.NoError(t, err)
	assert.Equal(t, session.PhaseReacting, saved.Phase)

	// Invalid names are rejected before touching storage.
	w = doJSON(h, http.MethodPost, base+"/save", `{"name": "../evil"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Restore revives the snapshot as a new live session.
	w = doJSON(h, http.MethodPost, "/v1/sessions/restore", `{"name": "my-show"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var restored CreateSessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&restored))
	assert.NotEqual(t, resp.ID, restored.ID)
	assert.Equal(t, session.PhaseReacting, restored.State.Phase)

	// Restoring a missing snapshot is a 404.
	w = doJSON(h, http.MethodPost, "/v1/sessions/restore", `{"name": "nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler(t)
	resp := createSession(t, h, `{"player_name": "rory"}`)
	base := "/v1/sessions/" + resp.ID.String()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/v1/sessions"},
		{http.MethodGet, "/v1/sessions/restore"},
		{http.MethodPost, base + "/scene"},
		{http.MethodGet, base + "/perform"},
		{http.MethodGet, base + "/advance"},
	} {
		w := doJSON(h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s %s", tc.method, tc.path)
	}

	w := doJSON(h, http.MethodGet, base+"/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
