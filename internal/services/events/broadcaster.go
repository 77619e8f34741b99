package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSceneAnnounced      EventType = "scene.announced"
	EventTypePerformanceReceived EventType = "performance.received"
	EventTypeRoundAdvanced       EventType = "round.advanced"
	EventTypeShowEnded           EventType = "show.ended"
	EventTypeSessionSaved        EventType = "session.saved"
	EventTypeSessionRestarted    EventType = "session.restarted"
)

// Event is the wire form pushed to transcript watchers.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes session events to Redis Pub/Sub for websocket
// distribution. A nil Broadcaster is a no-op so the API runs without
// Redis.
type Broadcaster struct {
	client *redis.Client
	logger *slog.Logger
}

func NewBroadcaster(client *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{client: client, logger: logger}
}

// Channel names the Pub/Sub channel carrying one session's events.
func Channel(sessionID uuid.UUID) string {
	return "events:session:" + sessionID.String()
}

// Publish sends one event on the session's channel. Best effort: a
// failed publish is logged, never surfaced to the game operation that
// triggered it.
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, eventType EventType, data map[string]any) {
	if b == nil || b.client == nil {
		return
	}

	event := Event{
		Type:      eventType,
		SessionID: sessionID.String(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}

	if err := b.client.Publish(ctx, Channel(sessionID), payload).Err(); err != nil {
		b.logger.Warn("Failed to publish event",
			"type", eventType,
			"session_id", sessionID,
			"error", fmt.Errorf("redis publish: %w", err))
	}
}

// Subscribe opens a Pub/Sub subscription for one session's events.
// Callers must Close the returned subscription.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.client.Subscribe(ctx, Channel(sessionID))
}

// Enabled reports whether a Redis connection backs this broadcaster.
func (b *Broadcaster) Enabled() bool {
	return b != nil && b.client != nil
}
