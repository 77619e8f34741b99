package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/improv-engine/internal/services/events"
)

// EventsHandler streams live session events over a websocket.
// GET /v1/events/sessions/{sessionID}
type EventsHandler struct {
	broadcaster *events.Broadcaster
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

func NewEventsHandler(broadcaster *events.Broadcaster, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The console client connects from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed. Only GET is supported."})
		return
	}

	if !h.broadcaster.Enabled() {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, h.logger, http.StatusNotImplemented, ErrorResponse{Error: "Event streaming requires Redis"})
		return
	}

	// Expected: /v1/events/sessions/{sessionID}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v1" || parts[1] != "events" || parts[2] != "sessions" {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid path. Expected /v1/events/sessions/{sessionID}"})
		return
	}

	sessionID, err := uuid.Parse(parts[3])
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "Invalid session ID format"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	sub := h.broadcaster.Subscribe(r.Context(), sessionID)
	defer func() {
		_ = sub.Close()
	}()

	h.logger.Debug("Event stream opened", "session_id", sessionID)

	// Reader pump: discard incoming frames, notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Debug("Event stream write failed", "session_id", sessionID, "error", err)
				return
			}
		}
	}
}
