//go:build integration

package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frsworks/frs-sync/database"
)

func TestDBStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, cleanupFunc := database.SetupTestDBContainer(t, ctx)
	t.Cleanup(cleanupFunc)

	store := NewDBStore(pool, Settings{AutoSync: true})

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.AutoSync, "defaults before the first write")

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	_, err = store.Update(ctx, func(s *Settings) error {
		s.WebhookSecret = "shh"
		s.LastSyncTime = &now
		s.LastRun = &RunStatus{Phase: RunPhaseFailed, Message: "API down", StartedAt: now}
		return nil
	})
	require.NoError(t, err)

	s, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.AutoSync)
	assert.Equal(t, "shh", s.WebhookSecret)
	require.NotNil(t, s.LastSyncTime)
	assert.True(t, now.Equal(*s.LastSyncTime))
	require.NotNil(t, s.LastRun)
	assert.Equal(t, "API down", s.LastRun.Message)

	boom := errors.New("boom")
	_, err = store.Update(ctx, func(s *Settings) error {
		s.WebhookSecret = ""
		return boom
	})
	require.ErrorIs(t, err, boom)

	s, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shh", s.WebhookSecret)
}
