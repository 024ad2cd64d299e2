package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/frsworks/frs-sync/internal/app/storage"
	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/mapper"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/settings"
	pkgsync "github.com/frsworks/frs-sync/internal/sync"
	"github.com/frsworks/frs-sync/internal/sync/coordinator"
	"github.com/frsworks/frs-sync/internal/users"
	"github.com/frsworks/frs-sync/internal/webhook"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator runs the scheduled and deferred full syncs
	SyncCoordinator coordinator.Coordinator

	// SyncManager performs full and incremental syncs
	SyncManager pkgsync.Manager

	// People is the person and user store
	People person.Store

	// Settings is the persisted runtime settings store
	Settings settings.Store

	// Storage created the stores above and owns their resources
	Storage storage.Factory

	// Redis backs sync sessions when configured (optional)
	Redis *redis.Client

	client    frs.Client
	mapper    mapper.Mapper
	media     media.Store
	receiver  *webhook.Receiver
	registrar *webhook.Registrar
	linker    *users.Linker
}

// Close releases storage and Redis resources
func (c *AppComponents) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			slog.Warn("Failed to close Redis client", "error", err)
		}
	}
	if c.Storage != nil {
		c.Storage.Cleanup()
	}
}
