// Package users links local user accounts to the person records that share
// their email address.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/otel"
	"github.com/frsworks/frs-sync/internal/person"
)

// ErrInvalidUser is returned for users without an id or email
var ErrInvalidUser = errors.New("user id and email are required")

// LinkResult reports the link state after an event
type LinkResult struct {
	UserID   string     `json:"user_id"`
	PersonID *uuid.UUID `json:"person_id,omitempty"`

	// Linked is true only when this call created the link
	Linked bool `json:"linked"`
}

// Linker handles user account events
type Linker struct {
	store  person.Store
	tracer trace.Tracer
}

// NewLinker creates a linker over store. tracer may be nil.
func NewLinker(store person.Store, tracer trace.Tracer) *Linker {
	return &Linker{store: store, tracer: tracer}
}

// OnUserRegistered links a newly created account
func (l *Linker) OnUserRegistered(ctx context.Context, user person.User) (*LinkResult, error) {
	return l.link(ctx, "registered", user)
}

// OnUserLogin links an existing account that was not linked at registration
func (l *Linker) OnUserLogin(ctx context.Context, user person.User) (*LinkResult, error) {
	return l.link(ctx, "login", user)
}

// link is idempotent: a person that already has an account keeps it
func (l *Linker) link(ctx context.Context, trigger string, user person.User) (*LinkResult, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return nil, ErrInvalidUser
	}

	ctx, span := otel.StartSpan(ctx, l.tracer, "users.Link",
		trace.WithAttributes(otel.AttrAgentEmail.String(user.Email)),
	)
	defer span.End()

	result := &LinkResult{UserID: user.ID}

	p, linked, err := l.store.LinkUser(ctx, user)
	if errors.Is(err, person.ErrNotFound) {
		slog.Debug("No person matches user email", "trigger", trigger, "userID", user.ID)
		return result, nil
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to link user %s: %w", user.ID, err)
	}

	if p.LinkedUserID == user.ID {
		id := p.ID
		result.PersonID = &id
	}
	result.Linked = linked

	if linked {
		slog.Info("Linked user to person", "trigger", trigger, "userID", user.ID, "personID", p.ID)
	}
	return result, nil
}
