package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/mapper"
	"github.com/frsworks/frs-sync/internal/otel"
	"github.com/frsworks/frs-sync/internal/settings"
	"github.com/frsworks/frs-sync/internal/sync/state"
	"github.com/frsworks/frs-sync/internal/telemetry"
)

const (
	// FullSyncBatchSize is the page size used by PerformFullSync
	FullSyncBatchSize = 50

	// FullSyncPauseEvery is the offset step after which a full sync pauses
	FullSyncPauseEvery = 100

	// DefaultFullSyncPause is how long a full sync pauses between page groups
	DefaultFullSyncPause = time.Second

	// DefaultBatchSize is used when a batch request omits the size
	DefaultBatchSize = 10

	// MaxBatchSize caps the size of a single batch request
	MaxBatchSize = 100
)

// Error reasons
const (
	ReasonAlreadyInProgress = "sync-already-in-progress"
	ReasonCountFailed       = "count-failed"
	ReasonFetchFailed       = "fetch-failed"
	ReasonSessionFailed     = "session-failed"
)

var (
	// ErrSessionRequired is returned when a non-initial batch omits its session id
	ErrSessionRequired = errors.New("session_id is required for non-initial batches")

	// ErrInvalidOffset is returned for negative offsets
	ErrInvalidOffset = errors.New("offset must not be negative")

	// ErrOffsetOutOfRange is returned when the offset is past the session total
	ErrOffsetOutOfRange = errors.New("offset is beyond the total record count")
)

// Error is a sync failure that aborted the whole call
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a full sync
type Result struct {
	Total   int
	Synced  int
	Errors  int
	Message string
}

// BatchRequest asks for one page of an incremental sync
type BatchRequest struct {
	SessionID uuid.UUID
	Offset    int
	BatchSize int
	IsInitial bool
}

// BatchResult reports the progress of an incremental sync after one page
type BatchResult struct {
	SessionID  uuid.UUID `json:"session_id"`
	Message    string    `json:"message"`
	Progress   int       `json:"progress"`
	Processed  int       `json:"processed"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"has_more"`
	NextOffset int       `json:"next_offset"`
	Errors     int       `json:"errors"`
}

// Manager runs sync operations
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/frsworks/frs-sync/internal/sync Manager
type Manager interface {
	// PerformFullSync syncs every loan officer in one call
	PerformFullSync(ctx context.Context) (*Result, error)

	// SyncBatch syncs one page of an incremental run
	SyncBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)
}

// Option configures the manager
type Option func(*defaultSyncManager)

// WithSyncMetrics sets the metrics recorder
func WithSyncMetrics(m *telemetry.SyncMetrics) Option {
	return func(s *defaultSyncManager) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for sync spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *defaultSyncManager) {
		s.tracer = tracer
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *defaultSyncManager) {
		s.now = now
	}
}

// WithFullSyncPause overrides the pause between full sync page groups. Zero disables it.
func WithFullSyncPause(d time.Duration) Option {
	return func(s *defaultSyncManager) {
		s.pause = d
	}
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	client   frs.Client
	mapper   mapper.Mapper
	sessions state.SessionStore
	settings settings.Store
	metrics  *telemetry.SyncMetrics
	tracer   trace.Tracer
	now      func() time.Time
	pause    time.Duration

	fullSyncRunning atomic.Bool
}

// NewDefaultSyncManager creates a new defaultSyncManager
func NewDefaultSyncManager(
	client frs.Client,
	m mapper.Mapper,
	sessions state.SessionStore,
	settingsStore settings.Store,
	opts ...Option,
) Manager {
	s := &defaultSyncManager{
		client:   client,
		mapper:   m,
		sessions: sessions,
		settings: settingsStore,
		now:      time.Now,
		pause:    DefaultFullSyncPause,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pageOutcome is the tally of one fetched page
type pageOutcome struct {
	processed int
	synced    int
	errors    int
}

// PerformFullSync counts the loan officers, then walks them in pages of
// FullSyncBatchSize. A failed page fetch aborts the run; records synced
// before the failure stay synced.
func (s *defaultSyncManager) PerformFullSync(ctx context.Context) (*Result, error) {
	if !s.fullSyncRunning.CompareAndSwap(false, true) {
		return nil, &Error{
			Message: "a full sync is already running",
			Reason:  ReasonAlreadyInProgress,
		}
	}
	defer s.fullSyncRunning.Store(false)

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.PerformFullSync")
	defer span.End()

	startedAt := s.now()
	s.recordRun(ctx, &settings.RunStatus{
		Phase:     settings.RunPhaseSyncing,
		Mode:      telemetry.SyncModeFull,
		StartedAt: startedAt,
	}, false)

	result, err := s.fullSync(ctx)
	duration := s.now().Sub(startedAt)
	s.metrics.RecordSyncDuration(ctx, telemetry.SyncModeFull, duration, err == nil)

	finishedAt := s.now()
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Full sync failed", "error", err, "duration", duration)
		s.recordRun(ctx, &settings.RunStatus{
			Phase:      settings.RunPhaseFailed,
			Mode:       telemetry.SyncModeFull,
			Message:    err.Error(),
			StartedAt:  startedAt,
			FinishedAt: &finishedAt,
			Synced:     result.Synced,
			Errors:     result.Errors,
		}, false)
		return nil, err
	}

	span.SetAttributes(otel.AttrResultCount.Int(result.Synced))
	slog.Info("Full sync completed",
		"total", result.Total,
		"synced", result.Synced,
		"errors", result.Errors,
		"duration", duration)
	s.recordRun(ctx, &settings.RunStatus{
		Phase:      settings.RunPhaseComplete,
		Mode:       telemetry.SyncModeFull,
		Message:    result.Message,
		StartedAt:  startedAt,
		FinishedAt: &finishedAt,
		Synced:     result.Synced,
		Errors:     result.Errors,
	}, true)

	return result, nil
}

// fullSync always returns a non-nil result so partial counts survive a failure
func (s *defaultSyncManager) fullSync(ctx context.Context) (*Result, error) {
	result := &Result{}

	total, err := s.client.CountAgents(ctx)
	if err != nil {
		return result, &Error{
			Err:     err,
			Message: "failed to get total count from API",
			Reason:  ReasonCountFailed,
		}
	}
	result.Total = total

	for offset := 0; offset < total; {
		outcome, err := s.syncPage(ctx, telemetry.SyncModeFull, offset, FullSyncBatchSize)
		if err != nil {
			return result, err
		}
		result.Synced += outcome.synced
		result.Errors += outcome.errors

		offset += FullSyncBatchSize
		if offset%FullSyncPauseEvery == 0 && offset < total {
			if err := s.sleep(ctx); err != nil {
				return result, err
			}
		}
	}

	result.Message = countMessage("Synced", result.Synced, result.Errors)
	return result, nil
}

// SyncBatch processes one page of an incremental run. The initial call
// creates the session; later calls must pass its id.
func (s *defaultSyncManager) SyncBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	batchSize := normalizeBatchSize(req.BatchSize)
	if req.Offset < 0 {
		return nil, ErrInvalidOffset
	}

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.SyncBatch",
		trace.WithAttributes(
			otel.AttrOffset.Int(req.Offset),
			otel.AttrBatchSize.Int(batchSize),
			attribute.Bool("frs.sync.initial", req.IsInitial),
		),
	)
	defer span.End()

	start := s.now()
	result, err := s.syncBatch(ctx, req, batchSize)
	s.metrics.RecordSyncDuration(ctx, telemetry.SyncModeBatch, s.now().Sub(start), err == nil)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		otel.AttrSessionID.String(result.SessionID.String()),
		otel.AttrResultCount.Int(result.Processed),
	)
	return result, nil
}

func (s *defaultSyncManager) syncBatch(ctx context.Context, req BatchRequest, batchSize int) (*BatchResult, error) {
	session, err := s.openSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Offset > session.TotalCount {
		if req.IsInitial {
			s.dropSession(ctx, session.ID)
		}
		return nil, fmt.Errorf("%w: offset %d, total %d", ErrOffsetOutOfRange, req.Offset, session.TotalCount)
	}

	outcome, err := s.syncPage(ctx, telemetry.SyncModeBatch, req.Offset, batchSize)
	if err != nil {
		s.failRun(ctx, session, err)
		return nil, err
	}

	session, err = s.sessions.Update(ctx, session.ID, func(sess *state.Session) error {
		sess.ProcessedCount += outcome.processed
		sess.SyncedCount += outcome.synced
		sess.ErrorCount += outcome.errors
		return nil
	})
	if err != nil {
		if errors.Is(err, state.ErrSessionNotFound) {
			return nil, err
		}
		return nil, &Error{
			Err:     err,
			Message: fmt.Sprintf("failed to save sync progress: %v", err),
			Reason:  ReasonSessionFailed,
		}
	}

	result := &BatchResult{
		SessionID:  session.ID,
		Message:    countMessage("Processed", outcome.synced, outcome.errors),
		Progress:   progressPercent(session.ProcessedCount, session.TotalCount),
		Processed:  session.ProcessedCount,
		Total:      session.TotalCount,
		HasMore:    session.Remaining(),
		NextOffset: req.Offset + batchSize,
		Errors:     outcome.errors,
	}

	slog.Debug("Sync batch processed",
		"sessionID", session.ID,
		"offset", req.Offset,
		"processed", session.ProcessedCount,
		"total", session.TotalCount,
		"progress", result.Progress)

	if !result.HasMore {
		finishedAt := s.now()
		slog.Info("Incremental sync completed",
			"sessionID", session.ID,
			"total", session.TotalCount,
			"synced", session.SyncedCount,
			"errors", session.ErrorCount)
		s.recordRun(ctx, &settings.RunStatus{
			Phase:      settings.RunPhaseComplete,
			Mode:       telemetry.SyncModeBatch,
			Message:    countMessage("Synced", session.SyncedCount, session.ErrorCount),
			StartedAt:  session.StartedAt,
			FinishedAt: &finishedAt,
			Synced:     session.SyncedCount,
			Errors:     session.ErrorCount,
		}, true)
		s.dropSession(ctx, session.ID)
	}

	return result, nil
}

func (s *defaultSyncManager) dropSession(ctx context.Context, id uuid.UUID) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		slog.Warn("Failed to delete sync session", "sessionID", id, "error", err)
	}
}

// openSession creates a session for an initial request or loads the named one
func (s *defaultSyncManager) openSession(ctx context.Context, req BatchRequest) (*state.Session, error) {
	if !req.IsInitial {
		if req.SessionID == uuid.Nil {
			return nil, ErrSessionRequired
		}
		return s.sessions.Get(ctx, req.SessionID)
	}

	total, err := s.client.CountAgents(ctx)
	if err != nil {
		slog.Error("Failed to count agents", "error", err)
		return nil, &Error{
			Err:     err,
			Message: "failed to get total count from API",
			Reason:  ReasonCountFailed,
		}
	}

	session, err := s.sessions.Create(ctx, total)
	if err != nil {
		return nil, &Error{
			Err:     err,
			Message: fmt.Sprintf("failed to create sync session: %v", err),
			Reason:  ReasonSessionFailed,
		}
	}

	slog.Info("Incremental sync started", "sessionID", session.ID, "total", total)
	s.recordRun(ctx, &settings.RunStatus{
		Phase:     settings.RunPhaseSyncing,
		Mode:      telemetry.SyncModeBatch,
		StartedAt: session.StartedAt,
	}, false)
	return session, nil
}

func (s *defaultSyncManager) failRun(ctx context.Context, session *state.Session, err error) {
	finishedAt := s.now()
	s.recordRun(ctx, &settings.RunStatus{
		Phase:      settings.RunPhaseFailed,
		Mode:       telemetry.SyncModeBatch,
		Message:    err.Error(),
		StartedAt:  session.StartedAt,
		FinishedAt: &finishedAt,
		Synced:     session.SyncedCount,
		Errors:     session.ErrorCount,
	}, false)
}

// syncPage fetches one page and maps every record on it. Only the fetch can fail.
func (s *defaultSyncManager) syncPage(ctx context.Context, mode string, offset, limit int) (pageOutcome, error) {
	page, err := s.client.ListAgents(ctx, offset, limit)
	if err != nil {
		slog.Error("Failed to fetch agents", "offset", offset, "limit", limit, "error", err)
		return pageOutcome{}, &Error{
			Err:     err,
			Message: fmt.Sprintf("failed to fetch agents: %v", err),
			Reason:  ReasonFetchFailed,
		}
	}

	outcome := pageOutcome{
		processed: len(page.Agents) + page.Invalid,
		errors:    page.Invalid,
	}
	for i := range page.Agents {
		agent := &page.Agents[i]
		if err := s.mapper.SyncAgent(ctx, agent); err != nil {
			outcome.errors++
			slog.Warn("Failed to sync agent",
				"agentID", agent.ID.String(),
				"email", agent.Email,
				"error", err)
			continue
		}
		outcome.synced++
	}

	s.metrics.RecordRecords(ctx, mode, outcome.synced, outcome.errors)
	return outcome, nil
}

// recordRun stores the run status. Failures are logged; the sync result stands.
func (s *defaultSyncManager) recordRun(ctx context.Context, run *settings.RunStatus, stampLastSync bool) {
	if s.settings == nil {
		return
	}
	_, err := s.settings.Update(ctx, func(st *settings.Settings) error {
		st.LastRun = run
		if stampLastSync {
			t := s.now()
			st.LastSyncTime = &t
		}
		return nil
	})
	if err != nil {
		slog.Warn("Failed to record sync status", "phase", run.Phase, "error", err)
	}
}

func (s *defaultSyncManager) sleep(ctx context.Context) error {
	if s.pause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeBatchSize(size int) int {
	switch {
	case size <= 0:
		return DefaultBatchSize
	case size > MaxBatchSize:
		return MaxBatchSize
	default:
		return size
	}
}

func progressPercent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	p := int(math.Round(float64(processed) / float64(total) * 100))
	return min(100, p)
}

func countMessage(verb string, synced, errs int) string {
	msg := fmt.Sprintf("%s %d loan officers", verb, synced)
	if errs > 0 {
		msg += fmt.Sprintf(" with %d errors", errs)
	}
	return msg
}
