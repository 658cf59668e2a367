package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// ParticipantServiceOptions groups dependencies for ParticipantService.
type ParticipantServiceOptions struct {
	SFU    ports.SFUClient
	Logger *slog.Logger
}

// ParticipantService applies state changes to connected participants: the
// hand-raise flag in metadata and the publish bit in permissions. Metadata
// writes go through a per-room lock so concurrent read-modify-write cycles
// never clobber each other.
type ParticipantService struct {
	sfu    ports.SFUClient
	locks  *roomLocks
	logger *slog.Logger
}

// NewParticipantService constructs a new ParticipantService.
func NewParticipantService(opts ParticipantServiceOptions) *ParticipantService {
	if opts.SFU == nil {
		panic("SFU client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipantService{sfu: opts.SFU, locks: newRoomLocks(), logger: logger}
}

// SetHandRaised updates the participant's hand-raise flag. A participant whose
// metadata is missing or unreadable is reset to a fresh record, with the
// instructor flag re-derived from the room, so a client that connected before
// its metadata write landed can still raise a hand. Raising an instructor's
// hand is rejected.
func (s *ParticipantService) SetHandRaised(
	ctx context.Context,
	roomName, identity string,
	raised bool,
) (room.ParticipantMetadata, error) {
	if roomName == "" {
		return room.ParticipantMetadata{}, apperrors.ValidationField("room_name", "room_name is required")
	}
	if identity == "" {
		return room.ParticipantMetadata{}, apperrors.ValidationField("identity", "identity is required")
	}

	lock := s.locks.For(roomName)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.sfu.GetParticipant(ctx, roomName, identity)
	if err != nil {
		return room.ParticipantMetadata{}, fmt.Errorf("get participant: %w", err)
	}

	meta, err := room.DecodeParticipantMetadata(p.Metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "participant metadata unreadable, resetting",
			"room", roomName, "identity", identity, "error", err)
		meta, err = s.resetMetadata(ctx, roomName, identity)
		if err != nil {
			return room.ParticipantMetadata{}, err
		}
	}
	if meta.IsInstructor && raised {
		return room.ParticipantMetadata{}, apperrors.Validation("instructors cannot raise a hand")
	}
	if meta.HandRaised == raised {
		return meta, nil
	}

	updated := room.WithHandRaised(meta, raised)
	encoded, err := updated.Encode()
	if err != nil {
		return room.ParticipantMetadata{}, fmt.Errorf("encode participant metadata: %w", err)
	}
	if err := s.sfu.UpdateParticipantMetadata(ctx, roomName, identity, encoded); err != nil {
		return room.ParticipantMetadata{}, fmt.Errorf("update participant metadata: %w", err)
	}

	s.logger.InfoContext(ctx, "hand state changed",
		"room", roomName, "identity", identity, "raised", raised)
	return updated, nil
}

// resetMetadata synthesizes a fresh record for an identity whose stored
// metadata would not decode. The instructor flag is re-derived from the room
// record so a reset never demotes a connected instructor.
func (s *ParticipantService) resetMetadata(
	ctx context.Context,
	roomName, identity string,
) (room.ParticipantMetadata, error) {
	rm, err := s.sfu.GetRoom(ctx, roomName)
	if err != nil {
		return room.ParticipantMetadata{}, fmt.Errorf("get room for metadata reset: %w", err)
	}
	meta := room.DefaultParticipantMetadata(identity)
	meta.IsInstructor = rm.Metadata.InstructorID == identity
	return meta, nil
}

// SetPublish flips the participant's publish permission, leaving the other
// permission bits as the SFU reports them.
func (s *ParticipantService) SetPublish(
	ctx context.Context,
	roomName, identity string,
	canPublish bool,
) (room.Permissions, error) {
	if roomName == "" {
		return room.Permissions{}, apperrors.ValidationField("room_name", "room_name is required")
	}
	if identity == "" {
		return room.Permissions{}, apperrors.ValidationField("identity", "identity is required")
	}

	lock := s.locks.For(roomName)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.sfu.GetParticipant(ctx, roomName, identity)
	if err != nil {
		return room.Permissions{}, fmt.Errorf("get participant: %w", err)
	}

	perms := room.WithPublish(p.Permissions, canPublish)
	if perms == p.Permissions {
		return perms, nil
	}
	if err := s.sfu.UpdateParticipantPermissions(ctx, roomName, identity, perms); err != nil {
		return room.Permissions{}, fmt.Errorf("update participant permissions: %w", err)
	}

	s.logger.InfoContext(ctx, "publish permission changed",
		"room", roomName, "identity", identity, "can_publish", canPublish)
	return perms, nil
}
