package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger)
}

func TestBroadcaster_PublishSubscribe(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx := context.Background()
	sessionID := uuid.New()

	sub := b.Subscribe(ctx, sessionID)
	defer sub.Close()

	// Wait for the subscription to register before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b.Publish(ctx, sessionID, EventTypeSceneAnnounced, map[string]any{"scenario_id": "a"})

	select {
	case msg := <-sub.Channel():
		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventTypeSceneAnnounced, event.Type)
		assert.Equal(t, sessionID.String(), event.SessionID)
		assert.Equal(t, "a", event.Data["scenario_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for published event")
	}
}

func TestBroadcaster_ChannelsAreScopedPerSession(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx := context.Background()
	mine, theirs := uuid.New(), uuid.New()

	sub := b.Subscribe(ctx, mine)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b.Publish(ctx, theirs, EventTypeRoundAdvanced, nil)
	b.Publish(ctx, mine, EventTypeShowEnded, nil)

	select {
	case msg := <-sub.Channel():
		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventTypeShowEnded, event.Type, "other sessions' events must not leak in")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for published event")
	}
}

func TestBroadcaster_NilIsNoOp(t *testing.T) {
	var b *Broadcaster

	assert.False(t, b.Enabled())
	// Must not panic.
	b.Publish(context.Background(), uuid.New(), EventTypeSessionSaved, nil)
}

func TestBroadcaster_Enabled(t *testing.T) {
	b := newTestBroadcaster(t)
	assert.True(t, b.Enabled())

	empty := NewBroadcaster(nil, slog.Default())
	assert.False(t, empty.Enabled())
}
