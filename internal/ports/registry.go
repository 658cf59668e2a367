package ports

import (
	"context"

	"github.com/classline/live-api/internal/domain/session"
)

// ClassRegistry is the persistent class registry. The broker reads class facts
// from it and writes back the room name and status transitions; the registry's
// schema beyond this abstract record is not the broker's concern.
type ClassRegistry interface {
	// GetClass returns the class record, or a NotFound error.
	GetClass(ctx context.Context, classID string) (session.ClassSession, error)

	// SetRoomName persists the room name after a successful room creation.
	SetRoomName(ctx context.Context, classID, roomName string) error

	// SetStatus records a lifecycle transition. Implementations reject
	// transitions the state machine does not allow.
	SetStatus(ctx context.Context, classID string, status session.Status) error
}
