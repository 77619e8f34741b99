package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/improv-engine/pkg/store"
)

// failingPingStore wraps MockStore with an unreachable backend.
type failingPingStore struct {
	*store.MockStore
}

func (f *failingPingStore) Ping(ctx context.Context) error {
	return store.ErrPersistence
}

var _ store.Store = (*failingPingStore)(nil)

func TestHealthHandler_OK(t *testing.T) {
	h := NewHealthHandler(store.NewMockStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["storage"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	h := NewHealthHandler(&failingPingStore{store.NewMockStore()}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(store.NewMockStore(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
