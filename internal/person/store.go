package person

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches a lookup
var ErrNotFound = errors.New("person not found")

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// Store persists people and user links.
// Email lookups compare NormalizeEmail forms.
type Store interface {
	// Get returns a person by local id
	Get(ctx context.Context, id uuid.UUID) (*Person, error)

	// FindByEmail returns the person whose business email matches,
	// regardless of status
	FindByEmail(ctx context.Context, email string) (*Person, error)

	// Save creates the person when its ID is zero and updates it otherwise.
	// The stored ID and timestamps are written back into p.
	Save(ctx context.Context, p *Person) error

	// SoftDelete marks the first person matching agentID or email as draft
	// and stamps DeletedAt. Empty criteria never match.
	SoftDelete(ctx context.Context, agentID, email string, at time.Time) (*Person, error)

	// LinkUser records the user and links it to the person with the same
	// email, in both directions, unless that person is already linked.
	// It returns the person and whether a new link was made.
	LinkUser(ctx context.Context, user User) (*Person, bool, error)

	// GetUser returns a user by id
	GetUser(ctx context.Context, id string) (*User, error)

	// Stats returns directory counters
	Stats(ctx context.Context) (Stats, error)
}
