package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))

	s, err := store.Create(ctx, 25)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, 25, s.TotalCount)
	assert.True(t, s.Remaining())

	updated, err := store.Update(ctx, s.ID, func(s *Session) error {
		s.ProcessedCount += 10
		s.SyncedCount += 9
		s.ErrorCount++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.ProcessedCount)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.SyncedCount)
	assert.Equal(t, 1, got.ErrorCount)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, store.Delete(ctx, s.ID))
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))

	s, err := store.Create(ctx, 5)
	require.NoError(t, err)

	// Writes extend the lifetime
	clock.Advance(50 * time.Minute)
	_, err = store.Update(ctx, s.ID, func(s *Session) error {
		s.ProcessedCount = 1
		return nil
	})
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Update(ctx, s.ID, func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_UpdateError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	s, err := store.Create(ctx, 5)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Update(ctx, s.ID, func(s *Session) error {
		s.ProcessedCount = 5
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ProcessedCount)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	a, err := store.Create(ctx, 100)
	require.NoError(t, err)
	b, err := store.Create(ctx, 100)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, a.ID, func(s *Session) error {
				s.ProcessedCount++
				return nil
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, b.ID, func(s *Session) error {
				s.ProcessedCount += 2
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	gotA, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, gotA.ProcessedCount)
	assert.Equal(t, 100, gotB.ProcessedCount)
}
