package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the name of the settings file inside the data directory
const FileName = "settings.json"

// fileStore implements Store on a JSON file
type fileStore struct {
	mu       sync.Mutex
	path     string
	defaults Settings
}

var _ Store = (*fileStore)(nil)

// NewFileStore creates a store persisting to dir/settings.json.
// defaults is returned until the first update.
func NewFileStore(dir string, defaults Settings) Store {
	return &fileStore{
		path:     filepath.Join(dir, FileName),
		defaults: defaults,
	}
}

func (f *fileStore) Load(_ context.Context) (*Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

func (f *fileStore) Update(_ context.Context, fn func(*Settings) error) (*Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.loadLocked()
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	if err := f.saveLocked(current); err != nil {
		return nil, err
	}
	return current.Clone(), nil
}

func (f *fileStore) loadLocked() (*Settings, error) {
	// #nosec G304 -- path is built from the configured data directory
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f.defaults.Clone(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &s, nil
}

func (f *fileStore) saveLocked(s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temporary file first for atomic operation
	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename settings file: %w", err)
	}
	return nil
}
