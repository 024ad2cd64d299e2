package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frsworks/frs-sync/internal/db"
	"github.com/frsworks/frs-sync/internal/db/sqlc"
)

// dbStore keeps images in the media table
type dbStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*dbStore)(nil)

// NewDBStore creates a store on the given pool
func NewDBStore(pool *pgxpool.Pool) Store {
	return &dbStore{pool: pool}
}

func (s *dbStore) Put(ctx context.Context, img *Image) error {
	err := sqlc.New(s.pool).InsertMedia(ctx, sqlc.InsertMediaParams{
		ID:          db.UUID(img.ID),
		SourceUrl:   img.SourceURL,
		ContentType: img.ContentType,
		Data:        img.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

func (s *dbStore) Get(ctx context.Context, id uuid.UUID) (*Image, error) {
	row, err := sqlc.New(s.pool).GetMedia(ctx, db.UUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &Image{
		ID:          uuid.UUID(row.ID.Bytes),
		SourceURL:   row.SourceUrl,
		ContentType: row.ContentType,
		Data:        row.Data,
		CreatedAt:   row.CreatedAt.Time,
	}, nil
}
