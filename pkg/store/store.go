package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

var (
	// ErrNotFound indicates no snapshot exists under the requested name.
	ErrNotFound = errors.New("session snapshot not found")

	// ErrCorrupted indicates stored data did not deserialize to a valid
	// session state. A corrupted snapshot is never partially loaded.
	ErrCorrupted = errors.New("session snapshot corrupted")

	// ErrPersistence indicates the storage backend failed.
	ErrPersistence = errors.New("session storage failed")

	// ErrInvalidName indicates the snapshot name contains reserved or
	// path-traversal characters.
	ErrInvalidName = errors.New("invalid session name")
)

// Store persists session snapshots under caller-chosen names. Save is
// an idempotent replace. Implementations hold serialized copies only,
// never a live state reference.
type Store interface {
	// Ping tests the backend connection.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error

	// Save serializes the state under name, replacing any prior snapshot.
	Save(ctx context.Context, name string, state *session.State) error

	// Load returns the snapshot saved under name.
	Load(ctx context.Context, name string) (*session.State, error)

	// Delete removes the snapshot saved under name.
	Delete(ctx context.Context, name string) error

	// List returns the names of all saved snapshots.
	List(ctx context.Context) ([]string, error)
}

// namePattern keeps snapshot names to a filesystem- and key-safe
// alphabet, so escaping the storage root is structurally impossible.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (want 1-64 chars of [A-Za-z0-9_-])", ErrInvalidName, name)
	}
	return nil
}

func decodeState(data []byte, name string) (*session.State, error) {
	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupted, name, err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupted, name, err)
	}
	return &st, nil
}
