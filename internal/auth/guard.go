package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means the bearer credential is missing or does not
	// resolve to a known identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity resolved but lacks superadmin privilege.
	ErrForbidden = errors.New("forbidden")
)

const bearerPrefix = "Bearer "

// PrivilegeStore answers the is-superadmin question for a resolved identity.
type PrivilegeStore interface {
	IsSuperadmin(ctx context.Context, userID string) (bool, error)
}

// Guard authenticates a bearer credential and confirms superadmin privilege.
// It is stateless per request: one signature check, one privilege lookup.
type Guard struct {
	priv PrivilegeStore
}

// NewGuard constructs a Guard.
func NewGuard(priv PrivilegeStore) (*Guard, error) {
	if priv == nil {
		return nil, errors.New("privilege store is required")
	}
	return &Guard{priv: priv}, nil
}

// Authorize resolves the caller from the raw Authorization header value and
// returns the actor id. It must short-circuit before any mutation: missing
// header or unverifiable token yields ErrUnauthenticated, a valid identity
// without elevated privilege yields ErrForbidden.
func (g *Guard) Authorize(ctx context.Context, rawHeader string) (string, error) {
	token, err := extractBearerToken(rawHeader)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnauthenticated, err.Error())
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		return "", fmt.Errorf("%w: invalid credential", ErrUnauthenticated)
	}
	elevated, err := g.priv.IsSuperadmin(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("privilege check: %w", err)
	}
	if !elevated {
		return "", fmt.Errorf("%w: superadmin privilege required", ErrForbidden)
	}
	return claims.Subject, nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
