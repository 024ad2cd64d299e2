package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/frsworks/frs-sync/internal/frs"
	frsmocks "github.com/frsworks/frs-sync/internal/frs/mocks"
	"github.com/frsworks/frs-sync/internal/mapper"
	mappermocks "github.com/frsworks/frs-sync/internal/mapper/mocks"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/person/inmemory"
	"github.com/frsworks/frs-sync/internal/settings"
	"github.com/frsworks/frs-sync/internal/sync/state"
)

func testAgents(from, n int) []frs.Agent {
	agents := make([]frs.Agent, 0, n)
	for i := from; i < from+n; i++ {
		agents = append(agents, frs.Agent{
			ID:        frs.ID(fmt.Sprint(i)),
			Email:     fmt.Sprintf("lo%d@example.com", i),
			FirstName: "Loan",
			LastName:  fmt.Sprintf("Officer %d", i),
			Role:      frs.RoleLoanOfficer,
		})
	}
	return agents
}

type fixture struct {
	client   *frsmocks.MockClient
	sessions state.SessionStore
	settings settings.Store
	people   person.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &fixture{
		client:   frsmocks.NewMockClient(ctrl),
		sessions: state.NewMemoryStore(time.Hour),
		settings: settings.NewFileStore(t.TempDir(), settings.Settings{}),
		people:   inmemory.New(),
	}
}

func (f *fixture) manager(opts ...Option) Manager {
	opts = append([]Option{WithFullSyncPause(0)}, opts...)
	return NewDefaultSyncManager(f.client, mapper.New(f.people), f.sessions, f.settings, opts...)
}

func TestSyncBatch_ProgressToCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(25, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, 10).Return(&frs.AgentPage{Agents: testAgents(0, 10)}, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 10, 10).Return(&frs.AgentPage{Agents: testAgents(10, 10)}, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 20, 10).Return(&frs.AgentPage{Agents: testAgents(20, 5)}, nil)

	first, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.SessionID)
	assert.Equal(t, 40, first.Progress)
	assert.Equal(t, 10, first.Processed)
	assert.Equal(t, 25, first.Total)
	assert.True(t, first.HasMore)
	assert.Equal(t, 10, first.NextOffset)
	assert.Equal(t, "Processed 10 loan officers", first.Message)

	st, err := f.settings.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, settings.RunPhaseSyncing, st.LastRun.Phase)
	assert.Nil(t, st.LastSyncTime)

	progress := []int{first.Progress}
	next := first
	for next.HasMore {
		next, err = m.SyncBatch(ctx, BatchRequest{
			SessionID: first.SessionID,
			Offset:    next.NextOffset,
			BatchSize: 10,
		})
		require.NoError(t, err)
		progress = append(progress, next.Progress)
	}

	assert.Equal(t, []int{40, 80, 100}, progress)
	assert.Equal(t, 25, next.Processed)
	assert.Equal(t, 30, next.NextOffset)

	stats, err := f.people.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalPeople)

	st, err = f.settings.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastSyncTime)
	assert.Equal(t, settings.RunPhaseComplete, st.LastRun.Phase)
	assert.Equal(t, 25, st.LastRun.Synced)

	_, err = f.sessions.Get(ctx, first.SessionID)
	assert.ErrorIs(t, err, state.ErrSessionNotFound)
}

func TestSyncBatch_ZeroTotal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(0, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, DefaultBatchSize).Return(&frs.AgentPage{}, nil)

	res, err := m.SyncBatch(context.Background(), BatchRequest{IsInitial: true})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress)
	assert.False(t, res.HasMore)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, DefaultBatchSize, res.NextOffset)
}

func TestSyncBatch_RecordErrorsDoNotAbort(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := frsmocks.NewMockClient(ctrl)
	mockMapper := mappermocks.NewMockMapper(ctrl)
	m := NewDefaultSyncManager(client, mockMapper, state.NewMemoryStore(time.Hour), nil)

	agents := testAgents(0, 3)
	agents[1].Email = ""

	client.EXPECT().CountAgents(gomock.Any()).Return(4, nil)
	client.EXPECT().ListAgents(gomock.Any(), 0, 10).Return(&frs.AgentPage{Agents: agents, Invalid: 1}, nil)
	mockMapper.EXPECT().SyncAgent(gomock.Any(), &agents[0]).Return(nil)
	mockMapper.EXPECT().SyncAgent(gomock.Any(), &agents[1]).Return(mapper.ErrEmptyEmail)
	mockMapper.EXPECT().SyncAgent(gomock.Any(), &agents[2]).Return(nil)

	res, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 2, res.Errors)
	assert.Equal(t, 100, res.Progress)
	assert.False(t, res.HasMore)
	assert.Equal(t, "Processed 2 loan officers with 2 errors", res.Message)
}

func TestSyncBatch_CountFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(0, errors.New("connection refused"))

	res, err := m.SyncBatch(context.Background(), BatchRequest{IsInitial: true})
	require.Error(t, err)
	assert.Nil(t, res)

	var syncErr *Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ReasonCountFailed, syncErr.Reason)
	assert.Equal(t, "failed to get total count from API", syncErr.Error())
}

func TestSyncBatch_FetchFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(10, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, 10).Return(nil, frs.ErrInvalidResponse)

	_, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.ErrorIs(t, err, frs.ErrInvalidResponse)

	var syncErr *Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ReasonFetchFailed, syncErr.Reason)

	st, err := f.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.RunPhaseFailed, st.LastRun.Phase)
}

func TestSyncBatch_SessionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     BatchRequest
		wantErr error
	}{
		{
			name:    "non-initial without session",
			req:     BatchRequest{Offset: 10},
			wantErr: ErrSessionRequired,
		},
		{
			name:    "unknown session",
			req:     BatchRequest{SessionID: uuid.New(), Offset: 10},
			wantErr: state.ErrSessionNotFound,
		},
		{
			name:    "negative offset",
			req:     BatchRequest{Offset: -1, IsInitial: true},
			wantErr: ErrInvalidOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			_, err := f.manager().SyncBatch(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSyncBatch_OffsetBeyondTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(15, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, 10).Return(&frs.AgentPage{Agents: testAgents(0, 10)}, nil)

	first, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.NoError(t, err)

	_, err = m.SyncBatch(ctx, BatchRequest{SessionID: first.SessionID, Offset: 20, BatchSize: 10})
	require.ErrorIs(t, err, ErrOffsetOutOfRange)

	sess, err := f.sessions.Get(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 10, sess.ProcessedCount)
}

func TestSyncBatch_InitialOffsetBeyondTotal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(5, nil)

	res, err := m.SyncBatch(context.Background(), BatchRequest{Offset: 10, BatchSize: 10, IsInitial: true})
	require.ErrorIs(t, err, ErrOffsetOutOfRange)
	assert.Nil(t, res)
}

func TestSyncBatch_ConcurrentSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(20, nil).Times(2)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, 10).Return(&frs.AgentPage{Agents: testAgents(0, 10)}, nil).Times(2)
	f.client.EXPECT().ListAgents(gomock.Any(), 10, 10).Return(&frs.AgentPage{Agents: testAgents(10, 10)}, nil)

	a, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.NoError(t, err)
	b, err := m.SyncBatch(ctx, BatchRequest{BatchSize: 10, IsInitial: true})
	require.NoError(t, err)
	require.NotEqual(t, a.SessionID, b.SessionID)

	a, err = m.SyncBatch(ctx, BatchRequest{SessionID: a.SessionID, Offset: 10, BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 100, a.Progress)
	assert.False(t, a.HasMore)

	sessB, err := f.sessions.Get(ctx, b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 10, sessB.ProcessedCount)
}

func TestPerformFullSync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	gomock.InOrder(
		f.client.EXPECT().CountAgents(gomock.Any()).Return(120, nil),
		f.client.EXPECT().ListAgents(gomock.Any(), 0, FullSyncBatchSize).
			Return(&frs.AgentPage{Agents: testAgents(0, 50)}, nil),
		f.client.EXPECT().ListAgents(gomock.Any(), 50, FullSyncBatchSize).
			Return(&frs.AgentPage{Agents: testAgents(50, 50)}, nil),
		f.client.EXPECT().ListAgents(gomock.Any(), 100, FullSyncBatchSize).
			Return(&frs.AgentPage{Agents: testAgents(100, 19), Invalid: 1}, nil),
	)

	res, err := m.PerformFullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, res.Total)
	assert.Equal(t, 119, res.Synced)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, "Synced 119 loan officers with 1 errors", res.Message)

	st, err := f.settings.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastSyncTime)
	assert.Equal(t, settings.RunPhaseComplete, st.LastRun.Phase)
	assert.Equal(t, "full", st.LastRun.Mode)
}

func TestPerformFullSync_FetchFailureAborts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	m := f.manager()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(100, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, FullSyncBatchSize).
		Return(&frs.AgentPage{Agents: testAgents(0, 50)}, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 50, FullSyncBatchSize).
		Return(nil, errors.New("API returned HTTP 500"))

	res, err := m.PerformFullSync(ctx)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "API returned HTTP 500")

	st, err := f.settings.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.LastSyncTime)
	assert.Equal(t, settings.RunPhaseFailed, st.LastRun.Phase)
	assert.Equal(t, 50, st.LastRun.Synced)
}

func TestPerformFullSync_PauseHonoursContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := f.manager(WithFullSyncPause(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.client.EXPECT().CountAgents(gomock.Any()).Return(150, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 0, FullSyncBatchSize).
		Return(&frs.AgentPage{Agents: testAgents(0, 50)}, nil)
	f.client.EXPECT().ListAgents(gomock.Any(), 50, FullSyncBatchSize).
		DoAndReturn(func(context.Context, int, int) (*frs.AgentPage, error) {
			cancel()
			return &frs.AgentPage{Agents: testAgents(50, 50)}, nil
		})

	_, err := m.PerformFullSync(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPerformFullSync_CountFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.client.EXPECT().CountAgents(gomock.Any()).Return(0, frs.ErrNotConfigured)

	_, err := f.manager().PerformFullSync(context.Background())
	require.ErrorIs(t, err, frs.ErrNotConfigured)
}

func TestNormalizeBatchSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultBatchSize},
		{in: -5, want: DefaultBatchSize},
		{in: 25, want: 25},
		{in: MaxBatchSize, want: MaxBatchSize},
		{in: 1000, want: MaxBatchSize},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeBatchSize(tt.in))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{name: "zero total", processed: 0, total: 0, want: 100},
		{name: "half", processed: 5, total: 10, want: 50},
		{name: "rounds half up", processed: 1, total: 8, want: 13},
		{name: "rounds down", processed: 1, total: 3, want: 33},
		{name: "overshoot capped", processed: 12, total: 10, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, progressPercent(tt.processed, tt.total))
		})
	}
}
