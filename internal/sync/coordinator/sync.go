package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	pkgsync "github.com/frsworks/frs-sync/internal/sync"
)

// runScheduledSync runs a full sync when the auto-sync setting is on
func (c *defaultCoordinator) runScheduledSync(ctx context.Context) {
	st, err := c.settings.Load(ctx)
	if err != nil {
		slog.Error("Error loading settings for scheduled sync", "error", err)
		return
	}
	if !st.AutoSync {
		slog.Debug("Auto-sync disabled, skipping scheduled sync")
		return
	}

	c.runFullSync(ctx, "scheduled")
}

// runFullSync performs the sync and logs its outcome
func (c *defaultCoordinator) runFullSync(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}

	slog.Info("Starting sync operation", "trigger", trigger)
	startTime := time.Now()

	result, err := c.manager.PerformFullSync(ctx)
	if err != nil {
		var syncErr *pkgsync.Error
		if errors.As(err, &syncErr) && syncErr.Reason == pkgsync.ReasonAlreadyInProgress {
			slog.Info("Sync skipped, another full sync is running", "trigger", trigger)
			return
		}
		slog.Error("Sync failed",
			"trigger", trigger,
			"error", err,
			"duration", time.Since(startTime))
		return
	}

	slog.Info("Sync completed successfully",
		"trigger", trigger,
		"synced", result.Synced,
		"errors", result.Errors,
		"duration", time.Since(startTime))
}
