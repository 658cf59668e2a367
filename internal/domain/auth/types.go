package auth

// Package auth contains domain-level types for platform login. It is pure and
// free of framework/adapter concerns. A successful login produces an Identity;
// the HTTP layer then mints session claims bound to a class and room.

import "time"

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., sub)
	Name      string
	Email     string
	AvatarURL string
	ExpiresAt time.Time // absolute expiry from IdP token
}
