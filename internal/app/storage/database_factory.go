package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/config"
	"github.com/frsworks/frs-sync/internal/db"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/person"
	persondb "github.com/frsworks/frs-sync/internal/person/db"
	"github.com/frsworks/frs-sync/internal/settings"
)

// DatabaseFactory creates database-backed storage components.
// All components created by this factory use PostgreSQL for persistence.
type DatabaseFactory struct {
	pool   *pgxpool.Pool
	conn   *db.Connection
	tracer trace.Tracer
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the OpenTelemetry tracer for the person store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// NewDatabaseFactory creates a new database-backed storage factory.
// It establishes a connection pool to the configured PostgreSQL database.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage")
	}

	slog.Info("Creating database-backed storage factory")

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	factory := NewDatabaseFactoryWithPool(conn.Pool, opts...)
	factory.conn = conn
	return factory, nil
}

// NewDatabaseFactoryWithPool creates a factory on an existing pool. Cleanup
// does not close a pool passed in this way.
func NewDatabaseFactoryWithPool(pool *pgxpool.Pool, opts ...DatabaseFactoryOption) *DatabaseFactory {
	factory := &DatabaseFactory{pool: pool}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// CreatePersonStore creates a database-backed person store
func (d *DatabaseFactory) CreatePersonStore(_ context.Context) (person.Store, error) {
	slog.Debug("Creating database-backed person store")

	opts := []persondb.Option{persondb.WithConnectionPool(d.pool)}
	if d.tracer != nil {
		opts = append(opts, persondb.WithTracer(d.tracer))
	}
	return persondb.New(opts...)
}

// CreateSettingsStore creates a database-backed settings store
func (d *DatabaseFactory) CreateSettingsStore(_ context.Context, defaults settings.Settings) (settings.Store, error) {
	return settings.NewDBStore(d.pool, defaults), nil
}

// CreateMediaStore creates a database-backed media store
func (d *DatabaseFactory) CreateMediaStore(_ context.Context) (media.Store, error) {
	return media.NewDBStore(d.pool), nil
}

// CheckReadiness pings the database
func (d *DatabaseFactory) CheckReadiness(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Cleanup closes the connection pool opened by NewDatabaseFactory
func (d *DatabaseFactory) Cleanup() {
	if d.conn != nil {
		d.conn.Close()
	}
}
