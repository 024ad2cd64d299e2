// Package coordinator runs sync work in the background.
//
// It sits on top of sync.Manager and handles:
//
//   - the periodic full sync, skipped while the auto-sync setting is off
//   - deferred resyncs requested by bulk webhook events
//   - graceful shutdown
//
// # Deferred resyncs
//
// ScheduleResync arms a one-shot timer. While a resync is pending, further
// requests are coalesced into it: a burst of bulk events produces a single
// full sync once the delay elapses. A request that arrives after the timer
// fired arms a new one.
//
// # Usage Example
//
//	syncManager := sync.NewDefaultSyncManager(client, mapper, sessions, settingsStore)
//	c := coordinator.New(syncManager, settingsStore, coordinator.WithInterval(24*time.Hour))
//
//	go func() {
//	    if err := c.Start(ctx); err != nil {
//	        slog.Error("Coordinator failed", "error", err)
//	    }
//	}()
//	defer c.Stop()
package coordinator
