// Package database provides a PostgreSQL implementation of the person Store
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/db"
	"github.com/frsworks/frs-sync/internal/db/sqlc"
	"github.com/frsworks/frs-sync/internal/otel"
	"github.com/frsworks/frs-sync/internal/person"
)

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller is responsible for
// closing the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbStore implements person.Store on PostgreSQL
type dbStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ person.Store = (*dbStore)(nil)

// New creates a database-backed person store
func New(opts ...Option) (person.Store, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	return &dbStore{pool: o.pool, tracer: o.tracer}, nil
}

func (s *dbStore) Get(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	ctx, span := s.startSpan(ctx, "person.Get")
	defer span.End()

	row, err := sqlc.New(s.pool).GetPerson(ctx, db.UUID(id))
	if err != nil {
		err = notFound(err)
		recordError(span, err)
		return nil, err
	}
	return fromRow(row), nil
}

func (s *dbStore) FindByEmail(ctx context.Context, email string) (*person.Person, error) {
	ctx, span := s.startSpan(ctx, "person.FindByEmail")
	defer span.End()

	email = person.NormalizeEmail(email)
	if email == "" {
		return nil, person.ErrNotFound
	}

	row, err := sqlc.New(s.pool).FindPersonByEmail(ctx, email)
	if err != nil {
		err = notFound(err)
		recordError(span, err)
		return nil, err
	}
	return fromRow(row), nil
}

func (s *dbStore) Save(ctx context.Context, p *person.Person) error {
	ctx, span := s.startSpan(ctx, "person.Save")
	defer span.End()

	queries := sqlc.New(s.pool)

	if p.ID == uuid.Nil {
		row, err := queries.InsertPerson(ctx, sqlc.InsertPersonParams{
			Title:         p.Title,
			Content:       p.Content,
			Status:        string(p.Status),
			Email:         p.Fields.Email,
			Phone:         p.Fields.Phone,
			JobTitle:      p.Fields.JobTitle,
			Nmls:          p.Fields.NMLS,
			LicenseNumber: p.Fields.LicenseNumber,
			Biography:     p.Fields.Biography,
			Specialties:   nonNil(p.Fields.Specialties),
			Languages:     nonNil(p.Fields.Languages),
			HeadshotID:    db.NullUUID(p.Fields.HeadshotID),
			RoleTerm:      p.RoleTerm,
			LinkedUserID:  db.Text(p.LinkedUserID),
			AgentID:       p.AgentID,
			AgentUuid:     p.AgentUUID,
			DeletedAt:     db.Timestamptz(p.DeletedAt),
		})
		if err != nil {
			recordError(span, err)
			return fmt.Errorf("failed to insert person: %w", err)
		}
		p.ID = uuid.UUID(row.ID.Bytes)
		p.CreatedAt = row.CreatedAt.Time
		p.UpdatedAt = row.UpdatedAt.Time
		return nil
	}

	row, err := queries.UpdatePerson(ctx, sqlc.UpdatePersonParams{
		ID:            db.UUID(p.ID),
		Title:         p.Title,
		Content:       p.Content,
		Status:        string(p.Status),
		Email:         p.Fields.Email,
		Phone:         p.Fields.Phone,
		JobTitle:      p.Fields.JobTitle,
		Nmls:          p.Fields.NMLS,
		LicenseNumber: p.Fields.LicenseNumber,
		Biography:     p.Fields.Biography,
		Specialties:   nonNil(p.Fields.Specialties),
		Languages:     nonNil(p.Fields.Languages),
		HeadshotID:    db.NullUUID(p.Fields.HeadshotID),
		RoleTerm:      p.RoleTerm,
		LinkedUserID:  db.Text(p.LinkedUserID),
		AgentID:       p.AgentID,
		AgentUuid:     p.AgentUUID,
		DeletedAt:     db.Timestamptz(p.DeletedAt),
	})
	if err != nil {
		err = notFound(err)
		recordError(span, err)
		if errors.Is(err, person.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update person %s: %w", p.ID, err)
	}
	p.CreatedAt = row.CreatedAt.Time
	p.UpdatedAt = row.UpdatedAt.Time
	return nil
}

func (s *dbStore) SoftDelete(ctx context.Context, agentID, email string, at time.Time) (*person.Person, error) {
	ctx, span := s.startSpan(ctx, "person.SoftDelete")
	defer span.End()

	email = person.NormalizeEmail(email)
	if agentID == "" && email == "" {
		return nil, person.ErrNotFound
	}

	row, err := sqlc.New(s.pool).SoftDeletePerson(ctx, sqlc.SoftDeletePersonParams{
		DeletedAt: db.Timestamptz(&at),
		AgentID:   agentID,
		Email:     email,
	})
	if err != nil {
		err = notFound(err)
		recordError(span, err)
		return nil, err
	}
	return fromRow(row), nil
}

func (s *dbStore) LinkUser(ctx context.Context, user person.User) (*person.Person, bool, error) {
	ctx, span := s.startSpan(ctx, "person.LinkUser")
	defer span.End()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		recordError(span, err)
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.RollbackTx(ctx, tx)

	querier := sqlc.New(tx)

	if _, err := querier.UpsertUser(ctx, sqlc.UpsertUserParams{ID: user.ID, Email: user.Email}); err != nil {
		recordError(span, err)
		return nil, false, fmt.Errorf("failed to record user %s: %w", user.ID, err)
	}

	var (
		found  *person.Person
		linked bool
	)

	email := person.NormalizeEmail(user.Email)
	if email != "" {
		row, err := querier.FindPersonByEmailForUpdate(ctx, email)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			recordError(span, err)
			return nil, false, fmt.Errorf("failed to look up person: %w", err)
		default:
			found = fromRow(row)
		}
	}

	if found != nil && found.LinkedUserID == "" {
		n, err := querier.LinkPersonUser(ctx, sqlc.LinkPersonUserParams{
			UserID: db.Text(user.ID),
			ID:     db.UUID(found.ID),
		})
		if err != nil {
			recordError(span, err)
			return nil, false, fmt.Errorf("failed to link person: %w", err)
		}
		if n == 1 {
			if err := querier.SetUserLinkedPerson(ctx, sqlc.SetUserLinkedPersonParams{
				PersonID: db.UUID(found.ID),
				ID:       user.ID,
			}); err != nil {
				recordError(span, err)
				return nil, false, fmt.Errorf("failed to link user: %w", err)
			}
			found.LinkedUserID = user.ID
			linked = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		recordError(span, err)
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if found == nil {
		return nil, false, person.ErrNotFound
	}
	return found, linked, nil
}

func (s *dbStore) GetUser(ctx context.Context, id string) (*person.User, error) {
	ctx, span := s.startSpan(ctx, "person.GetUser")
	defer span.End()

	row, err := sqlc.New(s.pool).GetUser(ctx, id)
	if err != nil {
		err = notFound(err)
		recordError(span, err)
		return nil, err
	}
	return &person.User{
		ID:             row.ID,
		Email:          row.Email,
		LinkedPersonID: db.FromNullUUID(row.LinkedPersonID),
	}, nil
}

func (s *dbStore) Stats(ctx context.Context) (person.Stats, error) {
	ctx, span := s.startSpan(ctx, "person.Stats")
	defer span.End()

	row, err := sqlc.New(s.pool).CountPersons(ctx)
	if err != nil {
		recordError(span, err)
		return person.Stats{}, fmt.Errorf("failed to count people: %w", err)
	}
	return person.Stats{
		TotalPeople: int(row.TotalPeople),
		LinkedUsers: int(row.LinkedUsers),
	}, nil
}

func fromRow(row sqlc.Person) *person.Person {
	p := &person.Person{
		ID:      uuid.UUID(row.ID.Bytes),
		Title:   row.Title,
		Content: row.Content,
		Status:  person.Status(row.Status),
		Fields: person.Fields{
			Email:         row.Email,
			Phone:         row.Phone,
			JobTitle:      row.JobTitle,
			NMLS:          row.Nmls,
			LicenseNumber: row.LicenseNumber,
			Biography:     row.Biography,
			HeadshotID:    db.FromNullUUID(row.HeadshotID),
		},
		RoleTerm:  row.RoleTerm,
		AgentID:   row.AgentID,
		AgentUUID: row.AgentUuid,
		DeletedAt: db.FromTimestamptz(row.DeletedAt),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if len(row.Specialties) > 0 {
		p.Fields.Specialties = row.Specialties
	}
	if len(row.Languages) > 0 {
		p.Fields.Languages = row.Languages
	}
	if row.LinkedUserID.Valid {
		p.LinkedUserID = row.LinkedUserID.String
	}
	return p
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return person.ErrNotFound
	}
	return err
}

func (s *dbStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.StartSpan(ctx, s.tracer, name, trace.WithAttributes(dbSystemPostgres))
}

func recordError(span trace.Span, err error) {
	if errors.Is(err, person.ErrNotFound) {
		return
	}
	otel.RecordError(span, err)
}
