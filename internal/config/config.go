// Package config provides configuration loading and management for the sync service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frsworks/frs-sync/internal/telemetry"
)

// EnvPrefix is the prefix for environment variables read by the service
const EnvPrefix = "FRS_SYNC"

const (
	// DefaultBaseURL is the FRS API base URL used when none is configured
	DefaultBaseURL = "https://base.frs.works/api"

	// DefaultRequestTimeout bounds single-record API calls
	DefaultRequestTimeout = 30 * time.Second

	// DefaultBatchTimeout bounds batch list calls
	DefaultBatchTimeout = 60 * time.Second

	// DefaultSyncInterval is the period of the automatic full sync
	DefaultSyncInterval = 24 * time.Hour

	// DefaultResyncDelay is the delay applied to resyncs requested by bulk webhook events
	DefaultResyncDelay = 60 * time.Second

	// DefaultSessionTTL is how long an incremental sync session is kept alive
	DefaultSessionTTL = time.Hour

	// DefaultWebhookPath is the path the webhook receiver is mounted on
	DefaultWebhookPath = "/webhook"
)

// Environment variables consulted for secrets when no file is configured
const (
	EnvAPIToken         = "FRS_API_TOKEN"
	EnvWebhookSecret    = "FRS_WEBHOOK_SECRET"
	EnvDatabasePassword = "FRS_DATABASE_PASSWORD"
	EnvRedisPassword    = "FRS_REDIS_PASSWORD"
	EnvJWTSecret        = "FRS_AUTH_JWT_SECRET"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// SiteName identifies this installation when registering webhooks
	SiteName string `yaml:"siteName,omitempty"`

	API     APIConfig     `yaml:"api"`
	Sync    SyncConfig    `yaml:"sync,omitempty"`
	Webhook WebhookConfig `yaml:"webhook,omitempty"`
	Media   MediaConfig   `yaml:"media,omitempty"`

	// Database enables the PostgreSQL store. When nil, people and settings
	// are kept in memory.
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Redis enables shared sync sessions. When nil, sessions are kept in memory.
	Redis *RedisConfig `yaml:"redis,omitempty"`

	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// APIConfig defines how the FRS API is reached
type APIConfig struct {
	// BaseURL is the API root, e.g. https://base.frs.works/api
	BaseURL string `yaml:"baseURL,omitempty"`

	// TokenFile is the path to a file containing the API token
	TokenFile string `yaml:"tokenFile,omitempty"`

	// RequestTimeout bounds single-record calls (default 30s)
	RequestTimeout string `yaml:"requestTimeout,omitempty"`

	// BatchTimeout bounds list calls (default 60s)
	BatchTimeout string `yaml:"batchTimeout,omitempty"`
}

// SyncConfig defines the scheduling of syncs
type SyncConfig struct {
	// AutoSync is the initial value of the auto-sync setting
	AutoSync bool `yaml:"autoSync,omitempty"`

	// Interval between automatic full syncs (default 24h)
	Interval string `yaml:"interval,omitempty"`

	// ResyncDelay before a resync requested by a bulk event runs (default 60s)
	ResyncDelay string `yaml:"resyncDelay,omitempty"`

	// SessionTTL bounds the lifetime of an incremental sync session (default 1h)
	SessionTTL string `yaml:"sessionTTL,omitempty"`
}

// WebhookConfig defines the inbound webhook settings
type WebhookConfig struct {
	// PublicURL is the externally reachable base URL of this service
	PublicURL string `yaml:"publicURL,omitempty"`

	// Path is the receiver path appended to PublicURL (default /webhook)
	Path string `yaml:"path,omitempty"`

	// SecretFile holds the shared signing secret. A secret stored in
	// settings by webhook registration takes precedence.
	SecretFile string `yaml:"secretFile,omitempty"`
}

// MediaConfig defines where downloaded headshots are stored when no database is configured
type MediaConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// RedisConfig defines the Redis connection used for sync sessions
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	DB           int    `yaml:"db,omitempty"`
	PasswordFile string `yaml:"passwordFile,omitempty"`
	KeyPrefix    string `yaml:"keyPrefix,omitempty"`
}

// AuthConfig defines how administrative endpoints are protected
type AuthConfig struct {
	// Disabled turns off authentication on the admin API. Only for local use.
	Disabled bool `yaml:"disabled,omitempty"`

	// Issuer is the expected "iss" claim
	Issuer string `yaml:"issuer,omitempty"`

	// SecretFile is the path to the HMAC secret used to sign admin tokens
	SecretFile string `yaml:"secretFile,omitempty"`
}

// readSecret reads a secret from the given file, falling back to an
// environment variable. Whitespace around the secret is trimmed.
func readSecret(path, envVar string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return os.Getenv(envVar), nil
}

// GetBaseURL returns the API base URL without a trailing slash
func (a *APIConfig) GetBaseURL() string {
	if a.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(a.BaseURL, "/")
}

// GetToken returns the API token from TokenFile or FRS_API_TOKEN.
// An empty token is not an error here; API calls report it.
func (a *APIConfig) GetToken() (string, error) {
	return readSecret(a.TokenFile, EnvAPIToken)
}

// GetRequestTimeout returns the single-record call timeout
func (a *APIConfig) GetRequestTimeout() time.Duration {
	return parseDurationOr(a.RequestTimeout, DefaultRequestTimeout)
}

// GetBatchTimeout returns the list call timeout
func (a *APIConfig) GetBatchTimeout() time.Duration {
	return parseDurationOr(a.BatchTimeout, DefaultBatchTimeout)
}

// GetInterval returns the automatic sync interval
func (s *SyncConfig) GetInterval() time.Duration {
	return parseDurationOr(s.Interval, DefaultSyncInterval)
}

// GetResyncDelay returns the delay for resyncs triggered by bulk events
func (s *SyncConfig) GetResyncDelay() time.Duration {
	return parseDurationOr(s.ResyncDelay, DefaultResyncDelay)
}

// GetSessionTTL returns the lifetime of an incremental sync session
func (s *SyncConfig) GetSessionTTL() time.Duration {
	return parseDurationOr(s.SessionTTL, DefaultSessionTTL)
}

// GetPath returns the webhook receiver path
func (w *WebhookConfig) GetPath() string {
	if w.Path == "" {
		return DefaultWebhookPath
	}
	return w.Path
}

// GetSecret returns the configured webhook secret, if any
func (w *WebhookConfig) GetSecret() (string, error) {
	return readSecret(w.SecretFile, EnvWebhookSecret)
}

// GetSecret returns the admin token signing secret
func (a *AuthConfig) GetSecret() (string, error) {
	secret, err := readSecret(a.SecretFile, EnvJWTSecret)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("no auth secret configured: set secretFile or %s environment variable", EnvJWTSecret)
	}
	return secret, nil
}

// GetPassword returns the Redis password, which may be empty
func (r *RedisConfig) GetPassword() (string, error) {
	return readSecret(r.PasswordFile, EnvRedisPassword)
}

// GetKeyPrefix returns the prefix for session keys
func (r *RedisConfig) GetKeyPrefix() string {
	if r.KeyPrefix == "" {
		return "frs-sync:session:"
	}
	return r.KeyPrefix
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from FRS_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	password, err := readSecret(d.PasswordFile, EnvDatabasePassword)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf(
			"no database password configured: set passwordFile or %s environment variable", EnvDatabasePassword,
		)
	}
	return password, nil
}

// GetConnectionString builds a PostgreSQL connection string.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// GetSiteName returns the name used to identify this installation
func (c *Config) GetSiteName() string {
	if c.SiteName == "" {
		return "frs-sync"
	}
	return c.SiteName
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateURL(c.API.BaseURL, "api.baseURL"); err != nil {
		return err
	}
	if err := validateDurations(map[string]string{
		"api.requestTimeout": c.API.RequestTimeout,
		"api.batchTimeout":   c.API.BatchTimeout,
		"sync.interval":      c.Sync.Interval,
		"sync.resyncDelay":   c.Sync.ResyncDelay,
		"sync.sessionTTL":    c.Sync.SessionTTL,
	}); err != nil {
		return err
	}

	if err := validateURL(c.Webhook.PublicURL, "webhook.publicURL"); err != nil {
		return err
	}
	if c.Webhook.Path != "" && !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook.path must start with '/', got %q", c.Webhook.Path)
	}

	if c.Database != nil {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	if c.Redis != nil && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is configured")
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", d.Port)
	}
	if d.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database.connMaxLifetime must be a valid duration: %w", err)
		}
	}
	return nil
}

func validateURL(raw, field string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, raw)
	}
	return nil
}

func validateDurations(fields map[string]string) error {
	for field, value := range fields {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g., '30s', '1h'): %w", field, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", field, value)
		}
	}
	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
