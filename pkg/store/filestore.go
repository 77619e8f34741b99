package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

const (
	snapshotPrefix = "session-"
	snapshotExt    = ".json"
)

// FileStore keeps one pretty-printed JSON file per snapshot under a
// root directory. File existence enumerates the available sessions.
type FileStore struct {
	root   string
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the root directory if needed.
func NewFileStore(root string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create root %q: %v", ErrPersistence, root, err)
	}
	return &FileStore{root: root, logger: logger}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.root, snapshotPrefix+name+snapshotExt)
}

func (f *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(f.root); err != nil {
		return fmt.Errorf("%w: root %q: %v", ErrPersistence, f.root, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) Save(ctx context.Context, name string, state *session.State) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal session %q: %v", ErrPersistence, name, err)
	}

	if err := os.WriteFile(f.path(name), data, 0o644); err != nil {
		f.logger.Error("Failed to write session snapshot", "name", name, "error", err)
		return fmt.Errorf("%w: failed to write session %q: %v", ErrPersistence, name, err)
	}

	f.logger.Debug("Session snapshot saved", "name", name, "path", f.path(name))
	return nil
}

func (f *FileStore) Load(ctx context.Context, name string) (*session.State, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		f.logger.Error("Failed to read session snapshot", "name", name, "error", err)
		return nil, fmt.Errorf("%w: failed to read session %q: %v", ErrPersistence, name, err)
	}

	return decodeState(data, name)
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := os.Remove(f.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("%w: failed to delete session %q: %v", ErrPersistence, name, err)
	}
	return nil
}

func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list root %q: %v", ErrPersistence, f.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		base := e.Name()
		if e.IsDir() || !strings.HasPrefix(base, snapshotPrefix) || !strings.HasSuffix(base, snapshotExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(base, snapshotPrefix), snapshotExt))
	}
	return names, nil
}
