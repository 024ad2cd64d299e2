package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frsworks/frs-sync/internal/config"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/person/inmemory"
	"github.com/frsworks/frs-sync/internal/settings"
)

// FileFactory creates components for a single instance without a database.
// People live in memory and are rebuilt by the next sync after a restart.
type FileFactory struct {
	dataDir  string
	mediaDir string
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a file-based storage factory, ensuring the data and
// media directories exist.
func NewFileFactory(cfg *config.Config, dataDir string) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	mediaDir := cfg.Media.Dir
	if mediaDir == "" {
		mediaDir = filepath.Join(dataDir, "media")
	}

	for _, dir := range []string{dataDir, mediaDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	slog.Info("Creating file-based storage factory", "data_dir", dataDir, "media_dir", mediaDir)

	return &FileFactory{dataDir: dataDir, mediaDir: mediaDir}, nil
}

// CreatePersonStore creates an in-memory person store
func (*FileFactory) CreatePersonStore(_ context.Context) (person.Store, error) {
	slog.Warn("No database configured, people are kept in memory")
	return inmemory.New(), nil
}

// CreateSettingsStore creates a settings store persisted in the data directory
func (f *FileFactory) CreateSettingsStore(_ context.Context, defaults settings.Settings) (settings.Store, error) {
	slog.Debug("Creating file-based settings store", "path", filepath.Join(f.dataDir, settings.FileName))
	return settings.NewFileStore(f.dataDir, defaults), nil
}

// CreateMediaStore creates a media store in the media directory
func (f *FileFactory) CreateMediaStore(_ context.Context) (media.Store, error) {
	return media.NewFileStore(f.mediaDir), nil
}

// CheckReadiness verifies the data directory is still present
func (f *FileFactory) CheckReadiness(_ context.Context) error {
	if _, err := os.Stat(f.dataDir); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

// Cleanup is a no-op for file storage
func (*FileFactory) Cleanup() {}
