package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frsworks/frs-sync/internal/config"
)

// NewAuthMiddleware creates authentication middleware based on config.
// A nil config still requires tokens, signed with the secret from the
// environment. Only an explicit disabled flag turns authentication off.
func NewAuthMiddleware(cfg *config.AuthConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		cfg = &config.AuthConfig{}
	}

	if cfg.Disabled {
		slog.Warn("auth: admin API authentication disabled")
		return anonymousMiddleware, nil
	}

	secret, err := cfg.GetSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to load auth secret: %w", err)
	}

	m := newBearerMiddleware(newHMACValidator(secret, cfg.Issuer), DefaultRealm)
	slog.Info("auth: bearer token mode", "issuer", cfg.Issuer)
	return m.Middleware, nil
}

// anonymousMiddleware is a no-op middleware that passes requests through without authentication.
func anonymousMiddleware(next http.Handler) http.Handler {
	return next
}
