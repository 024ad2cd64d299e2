package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// memoryStore keeps sessions in process memory
type memoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

var _ SessionStore = (*memoryStore)(nil)

// MemoryOption configures the in-memory store
type MemoryOption func(*memoryStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) MemoryOption {
	return func(m *memoryStore) {
		m.now = now
	}
}

// NewMemoryStore creates an in-memory session store
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) SessionStore {
	m := &memoryStore{
		sessions: make(map[uuid.UUID]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *memoryStore) Create(_ context.Context, total int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked()

	now := m.now()
	s := Session{
		ID:         uuid.New(),
		TotalCount: total,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	m.sessions[s.ID] = &memoryEntry{session: s, expiresAt: now.Add(m.ttl)}
	return &s, nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.liveLocked(id)
	if err != nil {
		return nil, err
	}
	s := entry.session
	return &s, nil
}

func (m *memoryStore) Update(_ context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.liveLocked(id)
	if err != nil {
		return nil, err
	}

	s := entry.session
	if err := fn(&s); err != nil {
		return nil, err
	}
	now := m.now()
	s.ID = id
	s.UpdatedAt = now
	entry.session = s
	entry.expiresAt = now.Add(m.ttl)
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// liveLocked returns the entry if it exists and has not expired. Callers must hold mu.
func (m *memoryStore) liveLocked(id uuid.UUID) (*memoryEntry, error) {
	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

func (m *memoryStore) evictExpiredLocked() {
	now := m.now()
	for id, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
