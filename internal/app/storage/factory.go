// Package storage creates the storage-dependent components as a family, so
// people, settings and media always share one backend.
package storage

import (
	"context"
	"fmt"

	"github.com/frsworks/frs-sync/internal/config"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/settings"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components.
//
// A DatabaseFactory keeps everything in PostgreSQL. A FileFactory keeps
// people in memory and settings and media on the local filesystem.
type Factory interface {
	// CreatePersonStore creates the person and user store
	CreatePersonStore(ctx context.Context) (person.Store, error)

	// CreateSettingsStore creates the settings store. defaults are returned
	// until settings are first written.
	CreateSettingsStore(ctx context.Context, defaults settings.Settings) (settings.Store, error)

	// CreateMediaStore creates the headshot store
	CreateMediaStore(ctx context.Context) (media.Store, error)

	// CheckReadiness reports whether the backend is reachable
	CheckReadiness(ctx context.Context) error

	// Cleanup releases any resources held by this factory
	Cleanup()
}

// NewStorageFactory returns a DatabaseFactory when a database is configured
// and a FileFactory rooted at dataDir otherwise.
func NewStorageFactory(ctx context.Context, cfg *config.Config, dataDir string) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Database != nil {
		return NewDatabaseFactory(ctx, cfg)
	}
	return NewFileFactory(cfg, dataDir)
}
