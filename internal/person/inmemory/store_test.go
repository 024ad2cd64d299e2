package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frsworks/frs-sync/internal/person"
)

func fixedClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func TestStore_SaveAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(WithClock(fixedClock()))

	p := &person.Person{
		Title:  "Jane Doe",
		Status: person.StatusPublish,
		Fields: person.Fields{Email: "Jane@X.com", Specialties: []string{"FHA"}},
	}
	require.NoError(t, s.Save(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	found, err := s.FindByEmail(ctx, " jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, []string{"FHA"}, found.Fields.Specialties)

	// Mutating the returned copy must not affect the store
	found.Fields.Specialties[0] = "VA"
	again, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"FHA"}, again.Fields.Specialties)

	// Update keeps CreatedAt and bumps UpdatedAt
	again.Title = "Jane Smith"
	require.NoError(t, s.Save(ctx, again))
	assert.Equal(t, p.CreatedAt, again.CreatedAt)
	assert.True(t, again.UpdatedAt.After(p.UpdatedAt))

	_, err = s.FindByEmail(ctx, "")
	require.ErrorIs(t, err, person.ErrNotFound)

	err = s.Save(ctx, &person.Person{ID: uuid.New()})
	require.ErrorIs(t, err, person.ErrNotFound)
}

func TestStore_SoftDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		agentID string
		email   string
		wantErr bool
		wantIdx int
	}{
		{name: "match by agent id", agentID: "7", wantIdx: 0},
		{name: "match by email", email: "bob@x.com", wantIdx: 1},
		{name: "agent id or email picks first match", agentID: "99", email: "bob@x.com", wantIdx: 1},
		{name: "no match", agentID: "99", email: "nobody@x.com", wantErr: true},
		{name: "empty criteria never match", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := New(WithClock(fixedClock()))

			people := []*person.Person{
				{Status: person.StatusPublish, AgentID: "7", Fields: person.Fields{Email: "jane@x.com"}},
				{Status: person.StatusPublish, AgentID: "8", Fields: person.Fields{Email: "bob@x.com"}},
				{Status: person.StatusPublish, Fields: person.Fields{}},
			}
			for _, p := range people {
				require.NoError(t, s.Save(ctx, p))
			}

			at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
			got, err := s.SoftDelete(ctx, tt.agentID, tt.email, at)
			if tt.wantErr {
				require.ErrorIs(t, err, person.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, people[tt.wantIdx].ID, got.ID)
			assert.Equal(t, person.StatusDraft, got.Status)
			require.NotNil(t, got.DeletedAt)
			assert.Equal(t, at, *got.DeletedAt)

			stats, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, stats.TotalPeople)
		})
	}
}

func TestStore_LinkUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	p := &person.Person{Status: person.StatusPublish, Fields: person.Fields{Email: "jane@x.com"}}
	require.NoError(t, s.Save(ctx, p))

	// Unknown email: user recorded, nothing linked
	_, linked, err := s.LinkUser(ctx, person.User{ID: "u0", Email: "other@x.com"})
	require.ErrorIs(t, err, person.ErrNotFound)
	assert.False(t, linked)
	u0, err := s.GetUser(ctx, "u0")
	require.NoError(t, err)
	assert.Nil(t, u0.LinkedPersonID)

	got, linked, err := s.LinkUser(ctx, person.User{ID: "u1", Email: "JANE@x.com"})
	require.NoError(t, err)
	assert.True(t, linked)
	assert.Equal(t, "u1", got.LinkedUserID)

	u1, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u1.LinkedPersonID)
	assert.Equal(t, p.ID, *u1.LinkedPersonID)

	// Second user with the same email does not steal the link
	got, linked, err = s.LinkUser(ctx, person.User{ID: "u2", Email: "jane@x.com"})
	require.NoError(t, err)
	assert.False(t, linked)
	assert.Equal(t, "u1", got.LinkedUserID)

	// Repeating the first link is idempotent
	_, linked, err = s.LinkUser(ctx, person.User{ID: "u1", Email: "jane@x.com"})
	require.NoError(t, err)
	assert.False(t, linked)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, person.Stats{TotalPeople: 1, LinkedUsers: 1}, stats)
}
