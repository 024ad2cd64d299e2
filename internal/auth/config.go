package auth

import (
	"path"
	"strings"
)

// DefaultRealm is the protection space reported in WWW-Authenticate
const DefaultRealm = "frs-sync"

// RoleAdmin is the role claim required on admin tokens
const RoleAdmin = "admin"

// IsPublicPath checks if a path should bypass authentication.
// It performs secure path matching by:
// 1. Rejecting paths with encoded path separators to prevent double-encoding attacks
// 2. Normalizing the path to prevent traversal attacks (e.g., /health/../api/v1/sync/full)
// 3. Using segment-aware matching so /health matches /health and /health/check but NOT /healthcheck
func IsPublicPath(requestPath string, publicPaths []string) bool {
	// %2f = /, %2F = /, %2e = ., %2E = .
	lowerPath := strings.ToLower(requestPath)
	if strings.Contains(lowerPath, "%2f") || strings.Contains(lowerPath, "%2e") {
		return false
	}

	cleanPath := path.Clean(requestPath)
	if !strings.HasPrefix(cleanPath, "/") {
		cleanPath = "/" + cleanPath
	}

	for _, publicPath := range publicPaths {
		cleanPublicPath := path.Clean(publicPath)
		if !strings.HasPrefix(cleanPublicPath, "/") {
			cleanPublicPath = "/" + cleanPublicPath
		}

		// Root path "/" makes everything public
		if cleanPublicPath == "/" {
			return true
		}

		if cleanPath == cleanPublicPath {
			return true
		}

		// /health matches /health/check but NOT /healthcheck
		if strings.HasPrefix(cleanPath, cleanPublicPath+"/") {
			return true
		}
	}
	return false
}

// PublicPaths returns the paths served without authentication: the system
// endpoints, metrics, media and the given webhook receiver paths.
func PublicPaths(webhookPaths ...string) []string {
	paths := []string{"/health", "/readiness", "/version", "/metrics", "/media"}
	return append(paths, webhookPaths...)
}
