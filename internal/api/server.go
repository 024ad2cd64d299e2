// Package api assembles the HTTP surface of the sync service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/frsworks/frs-sync/internal/api/admin"
	"github.com/frsworks/frs-sync/internal/api/hooks"
	"github.com/frsworks/frs-sync/internal/api/images"
	"github.com/frsworks/frs-sync/internal/api/system"
	"github.com/frsworks/frs-sync/internal/media"
)

// AdminPrefix is where the admin API is mounted
const AdminPrefix = "/api/v1"

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	readiness      system.ReadinessChecker
	metricsHandler http.Handler
	receiver       hooks.Receiver
	webhookPath    string
	admin          *admin.Dependencies
	images         media.Store
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithReadiness sets the readiness checker behind /readiness
func WithReadiness(checker system.ReadinessChecker) ServerOption {
	return func(cfg *serverConfig) {
		cfg.readiness = checker
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithWebhookReceiver mounts the webhook receiver on path
func WithWebhookReceiver(receiver hooks.Receiver, path string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.receiver = receiver
		cfg.webhookPath = path
	}
}

// WithAdmin mounts the admin API under AdminPrefix
func WithAdmin(deps admin.Dependencies) ServerOption {
	return func(cfg *serverConfig) {
		cfg.admin = &deps
	}
}

// WithImages serves stored headshots under /media
func WithImages(store media.Store) ServerOption {
	return func(cfg *serverConfig) {
		cfg.images = store
	}
}

// NewServer creates and configures the HTTP router
func NewServer(opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Mount("/", system.Router(cfg.readiness))

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}
	if cfg.receiver != nil {
		hooks.Register(r, cfg.receiver, cfg.webhookPath)
	}
	if cfg.images != nil {
		r.Mount("/media", images.Router(cfg.images))
	}
	if cfg.admin != nil {
		r.Mount(AdminPrefix, admin.Router(*cfg.admin))
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}
