package httpx

import (
	"context"

	"github.com/classline/live-api/internal/domain/session"
)

// claimsKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type claimsKey struct{}

// SetClaimsInContext returns a child context that carries the verified session claims.
func SetClaimsInContext(ctx context.Context, claims session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaimsFromContext returns the session claims from context and a boolean
// indicating presence.
func GetClaimsFromContext(ctx context.Context) (session.Claims, bool) {
	if claims, ok := ctx.Value(claimsKey{}).(session.Claims); ok {
		return claims, true
	}
	return session.Claims{}, false
}
