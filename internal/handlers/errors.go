package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/improv-engine/internal/game"
	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/session"
	"github.com/jwebster45206/improv-engine/pkg/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes and writes a
// JSON error body. Out-of-order operations are conflicts the caller can
// recover from, not server failures.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, game.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, scenario.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidPhaseTransition),
		errors.Is(err, session.ErrSessionDone):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidName),
		errors.Is(err, scenario.ErrValidation),
		errors.Is(err, scenario.ErrInsufficientScenarios):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}

	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); encErr != nil {
		logger.Error("Failed to encode error response", "error", encErr)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
