package coordinator

import (
	"log/slog"
	"time"
)

// DefaultInterval is the period of the scheduled full sync
const DefaultInterval = 24 * time.Hour

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithInterval sets the period of the scheduled full sync
func WithInterval(interval time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.interval = getSyncInterval(interval)
	}
}

// getSyncInterval falls back to the default for non-positive intervals
func getSyncInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		slog.Warn("Invalid sync interval, using default",
			"interval", interval,
			"default", DefaultInterval)
		return DefaultInterval
	}
	return interval
}
