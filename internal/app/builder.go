package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/frsworks/frs-sync/internal/api"
	"github.com/frsworks/frs-sync/internal/api/admin"
	"github.com/frsworks/frs-sync/internal/api/hooks"
	"github.com/frsworks/frs-sync/internal/app/storage"
	"github.com/frsworks/frs-sync/internal/auth"
	"github.com/frsworks/frs-sync/internal/config"
	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/httpclient"
	"github.com/frsworks/frs-sync/internal/mapper"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/settings"
	pkgsync "github.com/frsworks/frs-sync/internal/sync"
	"github.com/frsworks/frs-sync/internal/sync/coordinator"
	"github.com/frsworks/frs-sync/internal/sync/state"
	"github.com/frsworks/frs-sync/internal/telemetry"
	"github.com/frsworks/frs-sync/internal/users"
	"github.com/frsworks/frs-sync/internal/webhook"
)

// instrumentationName names the tracer used by every component
const instrumentationName = "github.com/frsworks/frs-sync"

const (
	defaultDataDir     = "./data"
	defaultHTTPAddress = ":8080"

	// Full syncs triggered over HTTP run inside the request
	defaultRequestTimeout = 5 * time.Minute
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = defaultRequestTimeout + 15*time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig collects the options for NewSyncApp. Injected components
// replace the ones built from the configuration.
type syncAppConfig struct {
	config *config.Config

	storageFactory storage.Factory
	frsClient      frs.Client
	syncManager    pkgsync.Manager
	sessionStore   state.SessionStore

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	dataDir string

	authMiddleware func(http.Handler) http.Handler

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		dataDir:        defaultDataDir,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewSyncApp builds the application from its configuration
func NewSyncApp(ctx context.Context, opts ...SyncAppOptions) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			components.Close()
		}
	}()

	if cfg.authMiddleware == nil {
		cfg.authMiddleware, err = auth.NewAuthMiddleware(cfg.config.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to build auth middleware: %w", err)
		}
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cleanupNeeded = false
	return &SyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// NewComponents builds the domain components without the HTTP server
func NewComponents(ctx context.Context, opts ...SyncAppOptions) (*AppComponents, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildComponents(ctx, cfg)
}

// buildComponents wires stores, the FRS client, the sync manager, the
// coordinator and the webhook receiver from the configuration.
func buildComponents(ctx context.Context, b *syncAppConfig) (*AppComponents, error) {
	slog.Info("Initializing sync components")

	c := &AppComponents{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	tracer := b.tracer()

	var err error
	if b.storageFactory == nil {
		b.storageFactory, err = storage.NewStorageFactory(ctx, b.config, b.dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}
	c.Storage = b.storageFactory

	if c.People, err = c.Storage.CreatePersonStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to create person store: %w", err)
	}
	c.Settings, err = c.Storage.CreateSettingsStore(ctx, settings.Settings{AutoSync: b.config.Sync.AutoSync})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings store: %w", err)
	}
	if c.media, err = c.Storage.CreateMediaStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to create media store: %w", err)
	}

	httpClient := httpclient.NewDefaultClient(b.config.API.GetBatchTimeout())

	c.client = b.frsClient
	if c.client == nil {
		token, err := b.config.API.GetToken()
		if err != nil {
			return nil, fmt.Errorf("failed to load API token: %w", err)
		}
		if token == "" {
			slog.Warn("No FRS API token configured, API calls will fail until one is set",
				"env", config.EnvAPIToken)
		}
		c.client = frs.NewClient(httpClient,
			frs.WithCredentials(b.config.API.GetBaseURL(), token),
			frs.WithTimeouts(b.config.API.GetRequestTimeout(), b.config.API.GetBatchTimeout()),
			frs.WithTracer(tracer),
		)
	}

	importer := media.NewImporter(httpClient, c.media, media.WithTracer(tracer))
	c.mapper = mapper.New(c.People, mapper.WithImporter(importer), mapper.WithTracer(tracer))

	if b.sessionStore == nil {
		b.sessionStore, c.Redis, err = buildSessionStore(ctx, b.config)
		if err != nil {
			return nil, err
		}
	}

	c.SyncManager = b.syncManager
	if c.SyncManager == nil {
		syncOpts := []pkgsync.Option{pkgsync.WithTracer(tracer)}
		if b.meterProvider != nil {
			syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
			if err != nil {
				return nil, fmt.Errorf("failed to create sync metrics: %w", err)
			}
			syncOpts = append(syncOpts, pkgsync.WithSyncMetrics(syncMetrics))
		}
		c.SyncManager = pkgsync.NewDefaultSyncManager(c.client, c.mapper, b.sessionStore, c.Settings, syncOpts...)
	}

	c.SyncCoordinator = coordinator.New(c.SyncManager, c.Settings,
		coordinator.WithInterval(b.config.Sync.GetInterval()))

	webhookSecret, err := b.config.Webhook.GetSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook secret: %w", err)
	}
	receiverOpts := []webhook.Option{
		webhook.WithFallbackSecret(webhookSecret),
		webhook.WithResyncDelay(b.config.Sync.GetResyncDelay()),
		webhook.WithTracer(tracer),
	}
	if b.meterProvider != nil {
		webhookMetrics, err := telemetry.NewWebhookMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook metrics: %w", err)
		}
		receiverOpts = append(receiverOpts, webhook.WithMetrics(webhookMetrics))
	}
	c.receiver, err = webhook.NewReceiver(c.Settings, c.client, c.mapper, c.People, c.SyncCoordinator, receiverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook receiver: %w", err)
	}

	c.registrar = webhook.NewRegistrar(c.client, c.Settings,
		b.config.GetSiteName(), b.config.Webhook.PublicURL, b.config.Webhook.GetPath())
	c.linker = users.NewLinker(c.People, tracer)

	slog.Info("Sync components initialized successfully")
	ok = true
	return c, nil
}

// buildSessionStore returns a Redis session store when Redis is configured
// and an in-memory one otherwise
func buildSessionStore(ctx context.Context, cfg *config.Config) (state.SessionStore, *redis.Client, error) {
	ttl := cfg.Sync.GetSessionTTL()
	if cfg.Redis == nil {
		return state.NewMemoryStore(ttl), nil, nil
	}

	password, err := cfg.Redis.GetPassword()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load Redis password: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}

	slog.Info("Sync sessions stored in Redis", "addr", cfg.Redis.Addr, "ttl", ttl)
	return state.NewRedisStore(client, cfg.Redis.GetKeyPrefix(), ttl), client, nil
}

func (b *syncAppConfig) tracer() trace.Tracer {
	if b.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return b.tracerProvider.Tracer(instrumentationName)
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDataDirectory sets the directory used when no database is configured
func WithDataDirectory(dir string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if dir == "" {
			return fmt.Errorf("data directory cannot be empty")
		}
		cfg.dataDir = filepath.Clean(dir)
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithFRSClient allows injecting a custom API client (for testing)
func WithFRSClient(c frs.Client) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.frsClient = c
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager (for testing)
func WithSyncManager(sm pkgsync.Manager) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithSessionStore allows injecting a custom sync session store (for testing)
func WithSessionStore(s state.SessionStore) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.sessionStore = s
		return nil
	}
}

// WithAuthMiddleware replaces the auth middleware built from the configuration
func WithAuthMiddleware(mw func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.authMiddleware = mw
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for metrics
func WithMeterProvider(mp metric.MeterProvider) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *syncAppConfig,
	c *AppComponents,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing come first to capture requests rejected by auth
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, middlewares...)
			slog.Info("HTTP metrics middleware enabled")
		}
	}
	if b.tracerProvider != nil {
		middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, middlewares...)
	}

	webhookPath := b.config.Webhook.GetPath()
	publicPaths := auth.PublicPaths(webhookPath, hooks.CompatPath)
	middlewares = append(middlewares, auth.WrapWithPublicPaths(b.authMiddleware, publicPaths))

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithReadiness(c.Storage),
		api.WithWebhookReceiver(c.receiver, webhookPath),
		api.WithImages(c.media),
		api.WithAdmin(admin.Dependencies{
			Client:     c.client,
			Manager:    c.SyncManager,
			Settings:   c.Settings,
			People:     c.People,
			Registrar:  c.registrar,
			Linker:     c.linker,
			FRSBaseURL: strings.TrimSuffix(b.config.API.GetBaseURL(), "/api"),
		}),
	}
	if b.metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(b.metricsHandler))
	}

	server := &http.Server{
		Addr:              b.address,
		Handler:           api.NewServer(serverOpts...),
		ReadTimeout:       b.readTimeout,
		ReadHeaderTimeout: b.readTimeout,
		WriteTimeout:      b.writeTimeout,
		IdleTimeout:       b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
