package ports

import (
	"context"
	"time"
)

// JoinSession is the record of a capability token issued to one identity for
// one room. Storing it makes join idempotent: a repeated or racing join for
// the same identity returns the stored session instead of re-racing the
// duplicate-join check against token issuance.
type JoinSession struct {
	ID        string    `json:"id"`
	RoomName  string    `json:"room_name"`
	Identity  string    `json:"identity"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JoinStore persists issued join sessions, keyed by room and identity, with a
// TTL matching the capability token's lifetime.
type JoinStore interface {
	Save(ctx context.Context, sess JoinSession) error

	// Get returns the stored session, or a NotFound error.
	Get(ctx context.Context, roomName, identity string) (JoinSession, error)

	Delete(ctx context.Context, roomName, identity string) error

	// DeleteRoom drops every stored session for a room (used when a session ends).
	DeleteRoom(ctx context.Context, roomName string) error
}
