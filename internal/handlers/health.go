package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/improv-engine/pkg/store"
)

// HealthHandler reports API liveness and storage reachability.
type HealthHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewHealthHandler(st store.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: st, logger: logger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only GET is supported."})
		return
	}

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		writeJSON(w, h.logger, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Storage: "unreachable"})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok", Storage: "ok"})
}
