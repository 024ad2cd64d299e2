package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrForbidden is returned for valid tokens that lack the admin role
var ErrForbidden = errors.New("token does not grant admin access")

// Claims are the claims carried by admin tokens
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tokenValidatorInterface abstracts token validation for testability.
type tokenValidatorInterface interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// hmacValidator validates HS256 tokens signed with a shared secret
type hmacValidator struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func newHMACValidator(secret, issuer string) *hmacValidator {
	return &hmacValidator{
		secret: []byte(secret),
		issuer: issuer,
		leeway: 30 * time.Second,
	}
}

func (v *hmacValidator) ValidateToken(_ context.Context, token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return claims, nil
}

// IssueToken signs an admin token. It is used by the CLI and by tests.
func IssueToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
