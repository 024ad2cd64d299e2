// Package inmemory provides an in-memory implementation of the person Store
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frsworks/frs-sync/internal/person"
)

// store implements person.Store
type store struct {
	mu     sync.RWMutex // Protects people, users
	people map[uuid.UUID]*person.Person
	users  map[string]*person.User
	now    func() time.Time
}

var _ person.Store = (*store)(nil)

// Option is a functional option for configuring the store
type Option func(*store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *store) {
		s.now = now
	}
}

// New creates an empty in-memory store
func New(opts ...Option) person.Store {
	s := &store{
		people: make(map[uuid.UUID]*person.Person),
		users:  make(map[string]*person.User),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Get(_ context.Context, id uuid.UUID) (*person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.people[id]
	if !ok {
		return nil, person.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *store) FindByEmail(_ context.Context, email string) (*person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findByEmailLocked(email)
	if p == nil {
		return nil, person.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *store) Save(_ context.Context, p *person.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		p.CreatedAt = now
	} else if existing, ok := s.people[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		return person.ErrNotFound
	}
	p.UpdatedAt = now

	s.people[p.ID] = p.Clone()
	return nil
}

func (s *store) SoftDelete(_ context.Context, agentID, email string, at time.Time) (*person.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *person.Person
	for _, p := range s.ordered() {
		if (agentID != "" && p.AgentID == agentID) || (email != "" && matchesEmail(p, email)) {
			match = p
			break
		}
	}
	if match == nil {
		return nil, person.ErrNotFound
	}

	deletedAt := at
	match.Status = person.StatusDraft
	match.DeletedAt = &deletedAt
	match.UpdatedAt = s.now()
	return match.Clone(), nil
}

func (s *store) LinkUser(_ context.Context, user person.User) (*person.Person, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		stored = &person.User{ID: user.ID}
		s.users[user.ID] = stored
	}
	stored.Email = user.Email

	p := s.findByEmailLocked(user.Email)
	if p == nil {
		return nil, false, person.ErrNotFound
	}
	if p.LinkedUserID != "" {
		return p.Clone(), false, nil
	}

	p.LinkedUserID = user.ID
	p.UpdatedAt = s.now()
	personID := p.ID
	stored.LinkedPersonID = &personID
	return p.Clone(), true, nil
}

func (s *store) GetUser(_ context.Context, id string) (*person.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, person.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *store) Stats(_ context.Context) (person.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats person.Stats
	for _, p := range s.people {
		if p.Status == person.StatusPublish {
			stats.TotalPeople++
		}
		if p.LinkedUserID != "" {
			stats.LinkedUsers++
		}
	}
	return stats, nil
}

// findByEmailLocked returns the oldest person with the given email.
// Callers must hold mu.
func (s *store) findByEmailLocked(email string) *person.Person {
	if person.NormalizeEmail(email) == "" {
		return nil
	}
	for _, p := range s.ordered() {
		if matchesEmail(p, email) {
			return p
		}
	}
	return nil
}

// ordered returns people by creation time so lookups are deterministic
func (s *store) ordered() []*person.Person {
	out := make([]*person.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func matchesEmail(p *person.Person, email string) bool {
	return person.NormalizeEmail(p.Fields.Email) == person.NormalizeEmail(email)
}
