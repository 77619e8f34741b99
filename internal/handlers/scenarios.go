package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
)

// ScenarioHandler serves the loaded catalog.
// Routes:
// GET /v1/scenarios      - List all scenarios
// GET /v1/scenarios/{id} - Read one scenario by id
type ScenarioHandler struct {
	catalog *scenario.Catalog
	logger  *slog.Logger
}

func NewScenarioHandler(catalog *scenario.Catalog, logger *slog.Logger) *ScenarioHandler {
	return &ScenarioHandler{catalog: catalog, logger: logger}
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only GET is supported."})
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenarios"), "/")
	if id == "" {
		writeJSON(w, h.logger, http.StatusOK, h.catalog.All())
		return
	}

	s, err := h.catalog.ByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}
