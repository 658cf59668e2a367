package ports

// Package ports defines interfaces (hexagonal ports) for the broker's external
// collaborators. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"

	"github.com/classline/live-api/internal/domain/room"
)

// CreateRoomRequest carries everything the SFU needs to provision a room.
type CreateRoomRequest struct {
	Name     string
	Metadata room.Metadata
	Limits   room.Limits
}

// SFUClient is the control-plane surface of the external media routing service.
// The broker is the sole mediator of all room and participant mutation against
// it. Implementations map SFU failures to the application error taxonomy:
// a missing room or participant is a NotFound error, everything else Upstream.
type SFUClient interface {
	// CreateRoom provisions a room. The SFU treats an existing room of the
	// same name as an update, so creation is safe to retry.
	CreateRoom(ctx context.Context, req CreateRoomRequest) (room.Room, error)

	// DeleteRoom tears the room down, disconnecting all participants.
	DeleteRoom(ctx context.Context, roomName string) error

	// GetRoom returns the room and its decoded metadata.
	GetRoom(ctx context.Context, roomName string) (room.Room, error)

	// ListRooms returns all rooms currently provisioned in the SFU.
	ListRooms(ctx context.Context) ([]room.Room, error)

	// GetParticipant returns the live record of a connected identity.
	GetParticipant(ctx context.Context, roomName, identity string) (room.Participant, error)

	// UpdateParticipantMetadata overwrites a connected identity's metadata blob.
	UpdateParticipantMetadata(ctx context.Context, roomName, identity, metadata string) error

	// UpdateParticipantPermissions overwrites a connected identity's permission grants.
	UpdateParticipantPermissions(ctx context.Context, roomName, identity string, perms room.Permissions) error
}
