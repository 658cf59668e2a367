package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// RoomServiceOptions groups dependencies for RoomService.
type RoomServiceOptions struct {
	SFU    ports.SFUClient
	Logger *slog.Logger
}

// RoomService manages room lifecycle in the SFU: provisioning, teardown, and
// metadata reads. Creation is idempotent per class so a crashed caller can
// safely retry without orphaning rooms.
type RoomService struct {
	sfu    ports.SFUClient
	logger *slog.Logger
}

// NewRoomService constructs a new RoomService.
func NewRoomService(opts RoomServiceOptions) *RoomService {
	if opts.SFU == nil {
		panic("SFU client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomService{sfu: opts.SFU, logger: logger}
}

// Create provisions a room with the given metadata and limits. If a room of
// the same name already exists for the same class, the existing room is
// returned unchanged; an existing room bound to a different class is a
// conflict.
func (s *RoomService) Create(
	ctx context.Context,
	roomName string,
	metadata room.Metadata,
	limits room.Limits,
) (room.Room, error) {
	if roomName == "" {
		return room.Room{}, apperrors.ValidationField("room_name", "room_name is required")
	}
	if err := metadata.Validate(); err != nil {
		return room.Room{}, fmt.Errorf("validate room metadata: %w", err)
	}

	existing, err := s.sfu.GetRoom(ctx, roomName)
	switch {
	case err == nil:
		if existing.Metadata.ClassID != metadata.ClassID {
			return room.Room{}, apperrors.Conflictf(
				"room %q already exists for class %q", roomName, existing.Metadata.ClassID)
		}
		s.logger.InfoContext(ctx, "room already exists, reusing",
			"room", roomName, "class_id", metadata.ClassID)
		return existing, nil
	case apperrors.IsNotFound(err):
		// Expected: create it below.
	default:
		return room.Room{}, fmt.Errorf("check existing room: %w", err)
	}

	created, err := s.sfu.CreateRoom(ctx, ports.CreateRoomRequest{
		Name:     roomName,
		Metadata: metadata,
		Limits:   limits,
	})
	if err != nil {
		return room.Room{}, fmt.Errorf("create room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created",
		"room", roomName,
		"class_id", metadata.ClassID,
		"max_participants", limits.MaxParticipants)
	return created, nil
}

// Delete tears the room down, disconnecting all participants.
func (s *RoomService) Delete(ctx context.Context, roomName string) error {
	if roomName == "" {
		return apperrors.ValidationField("room_name", "room_name is required")
	}
	if err := s.sfu.DeleteRoom(ctx, roomName); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	s.logger.InfoContext(ctx, "room deleted", "room", roomName)
	return nil
}

// Get returns the room and its metadata, or a NotFound error if the room does
// not exist. Downstream authorization recovers the instructor id from the
// returned metadata.
func (s *RoomService) Get(ctx context.Context, roomName string) (room.Room, error) {
	if roomName == "" {
		return room.Room{}, apperrors.ValidationField("room_name", "room_name is required")
	}
	rm, err := s.sfu.GetRoom(ctx, roomName)
	if err != nil {
		return room.Room{}, fmt.Errorf("get room metadata: %w", err)
	}
	return rm, nil
}
