package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
)

func newScenarioHandler(t *testing.T) *ScenarioHandler {
	t.Helper()
	catalog, err := scenario.ParseCatalog([]byte(`[
		{"id": "a", "prompt": "Prompt A", "hint": "Hint A"},
		{"id": "b", "prompt": "Prompt B", "hint": "Hint B"}
	]`))
	require.NoError(t, err)
	return NewScenarioHandler(catalog, testLogger())
}

func TestScenarioHandler_List(t *testing.T) {
	h := newScenarioHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []scenario.Scenario
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "Prompt A", list[0].Prompt)
}

func TestScenarioHandler_ByID(t *testing.T) {
	h := newScenarioHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios/b", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var s scenario.Scenario
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	assert.Equal(t, "b", s.ID)
	assert.Equal(t, "Hint B", s.Hint)
}

func TestScenarioHandler_NotFound(t *testing.T) {
	h := newScenarioHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios/zzz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenarioHandler_MethodNotAllowed(t *testing.T) {
	h := newScenarioHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/scenarios", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
