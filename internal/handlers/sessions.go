package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/improv-engine/internal/game"
	"github.com/jwebster45206/improv-engine/internal/services"
	"github.com/jwebster45206/improv-engine/internal/services/events"
	"github.com/jwebster45206/improv-engine/pkg/session"
	"github.com/jwebster45206/improv-engine/pkg/store"
)

// SessionHandler is the HTTP face of the game controller operations.
// Routes:
// POST   /v1/sessions                - Create a new session
// GET    /v1/sessions                - List live session ids
// POST   /v1/sessions/restore        - Revive a saved snapshot
// GET    /v1/sessions/{id}           - Read-only snapshot of the session
// DELETE /v1/sessions/{id}           - Discard a live session
// GET    /v1/sessions/{id}/scene     - Current scene (announces on first call)
// POST   /v1/sessions/{id}/perform   - Acknowledge the player's performance
// POST   /v1/sessions/{id}/advance   - Close the round, announce next or end show
// POST   /v1/sessions/{id}/restart   - Reset to intro (optionally with a new seed)
// POST   /v1/sessions/{id}/save      - Snapshot to the session store
//
// Retry guidance for callers: scene, snapshot and save are idempotent;
// perform and advance are not and must not be retried blindly.
type SessionHandler struct {
	manager     *game.Manager
	store       store.Store
	host        services.HostService
	broadcaster *events.Broadcaster
	logger      *slog.Logger

	defaultRounds int
	defaultSeed   *int64
	seedFn        func() int64
}

func NewSessionHandler(manager *game.Manager, st store.Store, host services.HostService, broadcaster *events.Broadcaster, logger *slog.Logger, defaultRounds int, defaultSeed *int64) *SessionHandler {
	return &SessionHandler{
		manager:       manager,
		store:         st,
		host:          host,
		broadcaster:   broadcaster,
		logger:        logger,
		defaultRounds: defaultRounds,
		defaultSeed:   defaultSeed,
		seedFn:        func() int64 { return time.Now().UnixNano() },
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := []string{}
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w)
		default:
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Supported methods: POST, GET"})
		}
		return

	case len(parts) == 1 && parts[0] == "restore":
		if r.Method != http.MethodPost {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
			return
		}
		h.handleRestore(w, r)
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid session ID format"})
		return
	}

	ctrl, err := h.manager.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, h.logger, http.StatusOK, ctrl.Snapshot())
		case http.MethodDelete:
			if err := h.manager.Delete(id); err != nil {
				writeError(w, h.logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Supported methods: GET, DELETE"})
		}
		return
	}

	if len(parts) != 2 {
		writeJSON(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Unknown session operation"})
		return
	}

	switch parts[1] {
	case "scene":
		if r.Method != http.MethodGet {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only GET is supported."})
			return
		}
		h.handleScene(w, r, id, ctrl)
	case "perform":
		if r.Method != http.MethodPost {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
			return
		}
		h.handlePerform(w, r, id, ctrl)
	case "advance":
		if r.Method != http.MethodPost {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
			return
		}
		h.handleAdvance(w, r, id, ctrl)
	case "restart":
		if r.Method != http.MethodPost {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
			return
		}
		h.handleRestart(w, r, id, ctrl)
	case "save":
		if r.Method != http.MethodPost {
			writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
			return
		}
		h.handleSave(w, r, id, ctrl)
	default:
		writeJSON(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Unknown session operation"})
	}
}

// CreateSessionRequest defines the request body for creating a session.
type CreateSessionRequest struct {
	PlayerName string `json:"player_name"`
	MaxRounds  int    `json:"max_rounds,omitempty"` // Defaults to server config
	Seed       *int64 `json:"seed,omitempty"`       // Defaults to a fresh seed
}

// CreateSessionResponse returns the new session id with its state.
type CreateSessionResponse struct {
	ID    uuid.UUID      `json:"id"`
	State *session.State `json:"state"`
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = h.defaultRounds
	}

	seed := h.seedFn()
	if req.Seed != nil {
		seed = *req.Seed
	} else if h.defaultSeed != nil {
		seed = *h.defaultSeed
	}

	id, ctrl, err := h.manager.Create(req.PlayerName, maxRounds, seed)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, CreateSessionResponse{ID: id, State: ctrl.Snapshot()})
}

func (h *SessionHandler) handleList(w http.ResponseWriter) {
	writeJSON(w, h.logger, http.StatusOK, map[string][]uuid.UUID{"sessions": h.manager.IDs()})
}

// RestoreSessionRequest names the snapshot to revive.
type RestoreSessionRequest struct {
	Name string `json:"name"`
}

func (h *SessionHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	state, err := h.store.Load(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, ctrl, err := h.manager.Restore(state)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, CreateSessionResponse{ID: id, State: ctrl.Snapshot()})
}

func (h *SessionHandler) handleScene(w http.ResponseWriter, r *http.Request, id uuid.UUID, ctrl *session.Controller) {
	scene, err := ctrl.CurrentScene()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcaster.Publish(r.Context(), id, events.EventTypeSceneAnnounced, map[string]any{
		"scenario_id": scene.ID,
		"prompt":      scene.Prompt,
	})
	writeJSON(w, h.logger, http.StatusOK, scene)
}

// PerformRequest carries the player's performance transcript.
type PerformRequest struct {
	Text string `json:"text"`
}

// PerformResponse returns the host's spoken reaction.
type PerformResponse struct {
	Reaction string `json:"reaction"`
}

func (h *SessionHandler) handlePerform(w http.ResponseWriter, r *http.Request, id uuid.UUID, ctrl *session.Controller) {
	var req PerformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Performance text cannot be empty"})
		return
	}

	state := ctrl.Snapshot()
	scene := state.Rounds[min(state.CurrentRound, state.MaxRounds-1)]

	if err := ctrl.AcknowledgePerformance(req.Text); err != nil {
		writeError(w, h.logger, err)
		return
	}

	reaction, err := h.host.ReactionLine(r.Context(), scene, req.Text)
	if err != nil {
		// The state transition already happened; surface the reaction
		// failure without pretending the performance was lost.
		h.logger.Error("Host reaction failed", "session_id", id, "error", err)
		reaction = ""
	}

	h.broadcaster.Publish(r.Context(), id, events.EventTypePerformanceReceived, map[string]any{
		"text": req.Text,
	})
	writeJSON(w, h.logger, http.StatusOK, PerformResponse{Reaction: reaction})
}

// AdvanceResponse mirrors session.AdvanceResult, plus the host's
// closing summary once the show ends.
type AdvanceResponse struct {
	NextScene *session.Round `json:"next_scene,omitempty"`
	Done      bool           `json:"done"`
	Closing   string         `json:"closing,omitempty"`
}

func (h *SessionHandler) handleAdvance(w http.ResponseWriter, r *http.Request, id uuid.UUID, ctrl *session.Controller) {
	result, err := ctrl.Advance()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := AdvanceResponse{NextScene: result.NextScene, Done: result.Done}
	if result.Done {
		closing, err := h.host.ClosingSummary(r.Context(), ctrl.Snapshot())
		if err != nil {
			h.logger.Error("Host closing summary failed", "session_id", id, "error", err)
		} else {
			resp.Closing = closing
		}
		h.broadcaster.Publish(r.Context(), id, events.EventTypeShowEnded, nil)
	} else {
		h.broadcaster.Publish(r.Context(), id, events.EventTypeRoundAdvanced, map[string]any{
			"scenario_id": result.NextScene.ID,
		})
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// RestartRequest optionally re-seeds scenario selection.
type RestartRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

func (h *SessionHandler) handleRestart(w http.ResponseWriter, r *http.Request, id uuid.UUID, ctrl *session.Controller) {
	var req RestartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
	}

	if err := ctrl.Restart(req.Seed); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcaster.Publish(r.Context(), id, events.EventTypeSessionRestarted, nil)
	writeJSON(w, h.logger, http.StatusOK, ctrl.Snapshot())
}

// SaveRequest names the snapshot slot.
type SaveRequest struct {
	Name string `json:"name"`
}

func (h *SessionHandler) handleSave(w http.ResponseWriter, r *http.Request, id uuid.UUID, ctrl *session.Controller) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := ctrl.Save(r.Context(), h.store, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcaster.Publish(r.Context(), id, events.EventTypeSessionSaved, map[string]any{
		"name": req.Name,
	})
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"saved": req.Name})
}
