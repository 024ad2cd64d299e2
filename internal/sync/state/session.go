// Package state keeps the progress of incremental sync runs. Each run is a
// session with its own id so concurrent runs never share counters.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("sync session not found or expired")

// Session is the progress of one incremental sync run
type Session struct {
	ID             uuid.UUID `json:"id"`
	TotalCount     int       `json:"totalCount"`
	ProcessedCount int       `json:"processedCount"`
	SyncedCount    int       `json:"syncedCount"`
	ErrorCount     int       `json:"errorCount"`
	StartedAt      time.Time `json:"startedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Remaining reports whether records are left to process
func (s *Session) Remaining() bool {
	return s.ProcessedCount < s.TotalCount
}

// SessionStore persists sessions for a limited time. Every write extends
// the session lifetime by the store TTL.
type SessionStore interface {
	// Create starts a new session expecting total records
	Create(ctx context.Context, total int) (*Session, error)

	// Get returns the session or ErrSessionNotFound
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Update applies fn to the session atomically and stores the result
	Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
