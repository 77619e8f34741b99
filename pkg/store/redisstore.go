package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps snapshots as JSON strings in Redis. Snapshots are
// durable saves, so keys carry no TTL.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects a store to the Redis instance at redisURL
// (e.g. "redis://localhost:6379").
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse redis URL: %v", ErrPersistence, err)
	}
	return &RedisStore{client: redis.NewClient(opt), logger: logger}, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping failed: %v", ErrPersistence, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisStore) Save(ctx context.Context, name string, state *session.State) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal session %q: %v", ErrPersistence, name, err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+name, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save session snapshot", "name", name, "error", err)
		return fmt.Errorf("%w: failed to save session %q: %v", ErrPersistence, name, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, name string) (*session.State, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, sessionKeyPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		r.logger.Error("Failed to load session snapshot", "name", name, "error", err)
		return nil, fmt.Errorf("%w: failed to load session %q: %v", ErrPersistence, name, err)
	}

	return decodeState([]byte(data), name)
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	deleted, err := r.client.Del(ctx, sessionKeyPrefix+name).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to delete session %q: %v", ErrPersistence, name, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := r.client.Keys(ctx, sessionKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list sessions: %v", ErrPersistence, err)
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, sessionKeyPrefix))
	}
	return names, nil
}

// Client exposes the underlying Redis client so the event broadcaster
// can share the connection.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}
