// Package settings persists the runtime values an operator changes while the
// service runs: webhook credentials, the auto-sync switch and the outcome of
// the last sync.
package settings

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_settings.go -package=mocks -source=settings.go Store

// RunPhase is the outcome of a sync run
type RunPhase string

const (
	// RunPhaseSyncing means a sync is in progress
	RunPhaseSyncing RunPhase = "Syncing"

	// RunPhaseComplete means the last sync finished
	RunPhaseComplete RunPhase = "Complete"

	// RunPhaseFailed means the last sync aborted
	RunPhaseFailed RunPhase = "Failed"
)

// RunStatus describes the most recent sync run
type RunStatus struct {
	Phase      RunPhase   `json:"phase"`
	Mode       string     `json:"mode,omitempty"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Synced     int        `json:"synced"`
	Errors     int        `json:"errors"`
}

// Settings holds the persisted runtime values
type Settings struct {
	WebhookID     string     `json:"webhookID,omitempty"`
	WebhookSecret string     `json:"webhookSecret,omitempty"`
	AutoSync      bool       `json:"autoSync"`
	LastSyncTime  *time.Time `json:"lastSyncTime,omitempty"`
	LastRun       *RunStatus `json:"lastRun,omitempty"`
}

// Store loads and updates settings
type Store interface {
	// Load returns the current settings. A store that was never written
	// returns the defaults it was created with.
	Load(ctx context.Context) (*Settings, error)

	// Update applies fn to the current settings and persists the result.
	// Updates are serialised; fn must not call back into the store.
	Update(ctx context.Context, fn func(*Settings) error) (*Settings, error)
}

// Clone returns a deep copy
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastSyncTime != nil {
		t := *s.LastSyncTime
		c.LastSyncTime = &t
	}
	if s.LastRun != nil {
		r := *s.LastRun
		if s.LastRun.FinishedAt != nil {
			t := *s.LastRun.FinishedAt
			r.FinishedAt = &t
		}
		c.LastRun = &r
	}
	return &c
}
