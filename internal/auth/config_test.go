package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicPath(t *testing.T) {
	t.Parallel()

	standardPublicPaths := []string{"/health", "/webhook", "/metrics"}

	tests := []struct {
		name        string
		path        string
		publicPaths []string
		want        bool
	}{
		// Basic functionality
		{"exact match", "/health", standardPublicPaths, true},
		{"subpath match", "/webhook/api/v1", standardPublicPaths, true},
		{"no match", "/api/v1/status", standardPublicPaths, false},
		{"empty public paths", "/any", []string{}, false},
		{"nil public paths", "/health", nil, false},

		// Path traversal attacks (security critical)
		{"traversal to protected", "/health/../api/v1/status", standardPublicPaths, false},
		{"traversal multiple levels", "/webhook/../../api/secrets", standardPublicPaths, false},
		{"traversal stays in public", "/webhook/v1/../v2", standardPublicPaths, true},

		// Double encoding attacks
		{"encoded path separators", "/metrics/..%2f..%2fapi/v1/status", standardPublicPaths, false},

		// Unintended prefix matches (security critical)
		{"healthcheck not health", "/healthcheck", standardPublicPaths, false},
		{"metricsz not metrics", "/metricsz", standardPublicPaths, false},

		// Correct segment boundaries
		{"health/check matches", "/health/check", standardPublicPaths, true},
		{"trailing slash", "/health/", standardPublicPaths, true},

		// Path normalization
		{"double slash", "//health", standardPublicPaths, true},
		{"dot reference", "/./webhook/api", standardPublicPaths, true},

		// Root path special case
		{"root exact", "/", []string{"/"}, true},
		{"root makes all public", "/api/v1/status", []string{"/"}, true},

		// Case sensitivity (URLs are case-sensitive)
		{"case sensitive", "/Health", standardPublicPaths, false},

		// Combined attack
		{"traversal with normalization", "//health/..//api", standardPublicPaths, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsPublicPath(tt.path, tt.publicPaths)
			assert.Equal(t, tt.want, got, "path=%q, publicPaths=%v", tt.path, tt.publicPaths)
		})
	}
}

func TestPublicPaths(t *testing.T) {
	t.Parallel()

	paths := PublicPaths("/webhook", "/wp-json/frs/v1/webhook")

	assert.True(t, IsPublicPath("/webhook", paths))
	assert.True(t, IsPublicPath("/wp-json/frs/v1/webhook", paths))
	assert.True(t, IsPublicPath("/media/8f1c4c8e-4d7e-4a53-9a43-2a4f7c1f0d11", paths))
	assert.True(t, IsPublicPath("/readiness", paths))
	assert.False(t, IsPublicPath("/api/v1/status", paths))
	assert.False(t, IsPublicPath("/webhook/../api/v1/sync/full", paths))
}
