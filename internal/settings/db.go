package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frsworks/frs-sync/internal/db"
	"github.com/frsworks/frs-sync/internal/db/sqlc"
)

// dbStore implements Store on the single-row settings table
type dbStore struct {
	pool     *pgxpool.Pool
	defaults Settings
}

var _ Store = (*dbStore)(nil)

// NewDBStore creates a store on the given pool. defaults seed the row the
// first time it is created.
func NewDBStore(pool *pgxpool.Pool, defaults Settings) Store {
	return &dbStore{pool: pool, defaults: defaults}
}

func (s *dbStore) Load(ctx context.Context) (*Settings, error) {
	row, err := sqlc.New(s.pool).GetSettings(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.defaults.Clone(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return decode(row.WebhookID, row.WebhookSecret, row.AutoSync, row.LastSyncTime, row.LastRun)
}

func (s *dbStore) Update(ctx context.Context, fn func(*Settings) error) (*Settings, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.RollbackTx(ctx, tx)

	querier := sqlc.New(tx)

	current := s.defaults.Clone()
	row, err := querier.LockSettings(ctx)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := querier.EnsureSettings(ctx); err != nil {
			return nil, fmt.Errorf("failed to create settings row: %w", err)
		}
		// Lock the new row so concurrent first writers serialise
		if _, err := querier.LockSettings(ctx); err != nil {
			return nil, fmt.Errorf("failed to lock settings: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to lock settings: %w", err)
	default:
		current, err = decode(row.WebhookID, row.WebhookSecret, row.AutoSync, row.LastSyncTime, row.LastRun)
		if err != nil {
			return nil, err
		}
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	var lastRun []byte
	if current.LastRun != nil {
		lastRun, err = json.Marshal(current.LastRun)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal last run: %w", err)
		}
	}

	if err := querier.UpdateSettings(ctx, sqlc.UpdateSettingsParams{
		WebhookID:     current.WebhookID,
		WebhookSecret: current.WebhookSecret,
		AutoSync:      current.AutoSync,
		LastSyncTime:  db.Timestamptz(current.LastSyncTime),
		LastRun:       lastRun,
	}); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return current.Clone(), nil
}
