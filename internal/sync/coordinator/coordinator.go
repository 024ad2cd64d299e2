package coordinator

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/frsworks/frs-sync/internal/settings"
	pkgsync "github.com/frsworks/frs-sync/internal/sync"
)

// ErrNotRunning is returned by ScheduleResync before Start or after Stop
var ErrNotRunning = errors.New("coordinator is not running")

// Coordinator manages background synchronization scheduling and execution
type Coordinator interface {
	// Start begins the periodic sync loop.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator, cancels a pending resync and
	// waits for any sync it started to return
	Stop() error

	// ScheduleResync arms a one-shot full sync after delay. It reports
	// false when a resync was already pending and the request was coalesced.
	ScheduleResync(delay time.Duration) (bool, error)
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager  pkgsync.Manager
	settings settings.Store
	interval time.Duration

	mu         gosync.Mutex
	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}
	resync     *time.Timer
	inflight   gosync.WaitGroup
}

// New creates a new coordinator with injected dependencies
func New(manager pkgsync.Manager, settingsStore settings.Store, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		manager:  manager,
		settings: settingsStore,
		interval: DefaultInterval,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins the periodic sync loop
func (c *defaultCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancelFunc != nil {
		c.mu.Unlock()
		return errors.New("coordinator already started")
	}
	coordCtx, cancel := context.WithCancel(ctx)
	c.ctx = coordCtx
	c.cancelFunc = cancel
	c.mu.Unlock()

	defer func() {
		c.stopResync()
		c.inflight.Wait()
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	slog.Info("Starting background sync coordinator", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runScheduledSync(coordCtx)
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		// Wait for coordinator to finish
		<-c.done
	}
	return nil
}

// ScheduleResync arms a deferred full sync unless one is already pending
func (c *defaultCoordinator) ScheduleResync(delay time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil || c.ctx.Err() != nil {
		return false, ErrNotRunning
	}
	if c.resync != nil {
		slog.Info("Resync already pending, coalescing request", "delay", delay)
		return false, nil
	}

	ctx := c.ctx
	c.inflight.Add(1)
	c.resync = time.AfterFunc(delay, func() {
		defer c.inflight.Done()

		c.mu.Lock()
		c.resync = nil
		c.mu.Unlock()

		c.runFullSync(ctx, "deferred")
	})

	slog.Info("Scheduled deferred resync", "delay", delay)
	return true, nil
}

// stopResync disarms a pending resync that has not fired yet
func (c *defaultCoordinator) stopResync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resync != nil && c.resync.Stop() {
		c.inflight.Done()
	}
	c.resync = nil
}
