package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
)

// AuthzServiceOptions groups dependencies for AuthzService.
type AuthzServiceOptions struct {
	Rooms  *RoomService
	Logger *slog.Logger
}

// AuthzService is the gate every room-scoped operation passes through. It
// answers two questions from live state rather than from anything baked into
// a token: does the room the caller names actually exist, and is the caller
// the instructor that room's metadata records.
type AuthzService struct {
	rooms  *RoomService
	logger *slog.Logger
}

// NewAuthzService constructs a new AuthzService.
func NewAuthzService(opts AuthzServiceOptions) *AuthzService {
	if opts.Rooms == nil {
		panic("room service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthzService{rooms: opts.Rooms, logger: logger}
}

// RequireRoomMatch verifies the caller's claims are bound to the room it is
// operating on. Claims minted for one class never open another class's room.
func (s *AuthzService) RequireRoomMatch(claims session.Claims, roomName string) error {
	if claims.RoomName != roomName {
		return apperrors.Forbiddenf("token is not valid for room %q", roomName)
	}
	return nil
}

// RequireScope verifies the claims carry the named scope.
func (s *AuthzService) RequireScope(claims session.Claims, scope session.Scope) error {
	if !claims.HasScope(scope) {
		return apperrors.Forbiddenf("missing required scope %q", scope)
	}
	return nil
}

// RequireActiveRoom verifies the room is live in the SFU and returns it. A
// missing room means the session ended or never started; callers surface that
// as NotFound so clients stop retrying.
func (s *AuthzService) RequireActiveRoom(ctx context.Context, roomName string) (room.Room, error) {
	rm, err := s.rooms.Get(ctx, roomName)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return room.Room{}, apperrors.NotFoundf("room %q is not active", roomName)
		}
		return room.Room{}, fmt.Errorf("check room liveness: %w", err)
	}
	return rm, nil
}

// RequireInstructor verifies the caller is the instructor recorded in the live
// room's metadata. Instructor status is re-derived from room state on every
// call, so a stale token cannot retain moderation rights after a handover.
func (s *AuthzService) RequireInstructor(
	ctx context.Context,
	claims session.Claims,
	roomName string,
) (room.Room, error) {
	if err := s.RequireRoomMatch(claims, roomName); err != nil {
		return room.Room{}, err
	}
	rm, err := s.RequireActiveRoom(ctx, roomName)
	if err != nil {
		return room.Room{}, err
	}
	if rm.Metadata.InstructorID != claims.UserID {
		s.logger.WarnContext(ctx, "moderation attempt by non-instructor",
			"room", roomName, "user_id", claims.UserID)
		return room.Room{}, apperrors.Forbidden("only the instructor can perform this action")
	}
	return rm, nil
}

// RequireSelfOrInstructor allows an operation on the target identity when the
// caller either is that identity or is the room's instructor.
func (s *AuthzService) RequireSelfOrInstructor(
	ctx context.Context,
	claims session.Claims,
	roomName, targetIdentity string,
) (room.Room, error) {
	if err := s.RequireRoomMatch(claims, roomName); err != nil {
		return room.Room{}, err
	}
	rm, err := s.RequireActiveRoom(ctx, roomName)
	if err != nil {
		return room.Room{}, err
	}
	if claims.UserID == targetIdentity {
		return rm, nil
	}
	if rm.Metadata.InstructorID == claims.UserID {
		return rm, nil
	}
	return room.Room{}, apperrors.Forbidden("cannot act on another participant")
}
