package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// Default room limits applied at session creation.
const (
	DefaultMaxParticipants = uint32(100)
	DefaultEmptyTimeout    = 5 * time.Minute
)

// ClassSessionServiceOptions groups dependencies for ClassSessionService.
type ClassSessionServiceOptions struct {
	Registry     ports.ClassRegistry
	Joins        ports.JoinStore
	Rooms        *RoomService
	Participants *ParticipantService
	Tokens       *TokenIssuer
	Authz        *AuthzService
	Limits       room.Limits
	Logger       *slog.Logger
	Now          func() time.Time
}

// ClassSessionService is the operation surface everything else hangs off: it
// orchestrates the registry, the SFU room, and token issuance into the
// session lifecycle and the in-class speaking flow.
type ClassSessionService struct {
	registry     ports.ClassRegistry
	joins        ports.JoinStore
	rooms        *RoomService
	participants *ParticipantService
	tokens       *TokenIssuer
	authz        *AuthzService
	limits       room.Limits
	joinGroup    singleflight.Group
	logger       *slog.Logger
	now          func() time.Time
}

// NewClassSessionService constructs a new ClassSessionService.
func NewClassSessionService(opts ClassSessionServiceOptions) *ClassSessionService {
	if opts.Registry == nil {
		panic("class registry is required")
	}
	if opts.Joins == nil {
		panic("join store is required")
	}
	if opts.Rooms == nil {
		panic("room service is required")
	}
	if opts.Participants == nil {
		panic("participant service is required")
	}
	if opts.Tokens == nil {
		panic("token issuer is required")
	}
	if opts.Authz == nil {
		panic("authz service is required")
	}

	limits := opts.Limits
	if limits.MaxParticipants == 0 {
		limits.MaxParticipants = DefaultMaxParticipants
	}
	if limits.EmptyTimeout <= 0 {
		limits.EmptyTimeout = DefaultEmptyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &ClassSessionService{
		registry:     opts.Registry,
		joins:        opts.Joins,
		rooms:        opts.Rooms,
		participants: opts.Participants,
		tokens:       opts.Tokens,
		authz:        opts.Authz,
		limits:       limits,
		logger:       logger,
		now:          now,
	}
}

// SessionInfo describes the session state returned by lifecycle operations.
type SessionInfo struct {
	RoomName string         `json:"room_name"`
	ClassID  string         `json:"class_id"`
	Status   session.Status `json:"status"`
}

// CreateSession brings a class live: it provisions the room, records the room
// name in the registry, and moves the class to live. Only the class's
// instructor may start it. The whole operation is safe to retry; a second
// call after a partial failure finishes the remaining steps and a call
// against an already-live class returns the existing session.
func (s *ClassSessionService) CreateSession(
	ctx context.Context,
	claims session.Claims,
	classID string,
) (SessionInfo, error) {
	if classID == "" {
		return SessionInfo{}, apperrors.ValidationField("class_id", "class_id is required")
	}
	if claims.ClassID != classID {
		return SessionInfo{}, apperrors.Forbiddenf("token is not valid for class %q", classID)
	}

	class, err := s.registry.GetClass(ctx, classID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("load class: %w", err)
	}
	if class.InstructorID != claims.UserID {
		return SessionInfo{}, apperrors.Forbidden("only the instructor can start a session")
	}
	if class.Status == session.StatusCompleted {
		return SessionInfo{}, apperrors.Conflictf("class %q has already completed", classID)
	}

	roomName := session.RoomNameForClass(classID)
	metadata := room.Metadata{
		InstructorID: class.InstructorID,
		ClassID:      classID,
	}
	if _, err := s.rooms.Create(ctx, roomName, metadata, s.limits); err != nil {
		return SessionInfo{}, fmt.Errorf("provision room: %w", err)
	}

	if class.RoomName != roomName {
		if err := s.registry.SetRoomName(ctx, classID, roomName); err != nil {
			s.rollbackRoom(ctx, roomName)
			return SessionInfo{}, fmt.Errorf("record room name: %w", err)
		}
	}
	if class.Status == session.StatusScheduled {
		if err := s.registry.SetStatus(ctx, classID, session.StatusLive); err != nil {
			// A concurrent starter won the transition; the session is live
			// either way.
			if !apperrors.IsConflict(err) {
				s.rollbackRoom(ctx, roomName)
				return SessionInfo{}, fmt.Errorf("mark class live: %w", err)
			}
		}
	}

	s.logger.InfoContext(ctx, "session started",
		"class_id", classID, "room", roomName, "instructor_id", class.InstructorID)
	return SessionInfo{RoomName: roomName, ClassID: classID, Status: session.StatusLive}, nil
}

// rollbackRoom is the compensating step when the registry write after room
// creation fails. Best effort: a leaked room is eventually collected by the
// reconciler.
func (s *ClassSessionService) rollbackRoom(ctx context.Context, roomName string) {
	if err := s.rooms.Delete(ctx, roomName); err != nil && !apperrors.IsNotFound(err) {
		s.logger.WarnContext(ctx, "room rollback failed, reconciler will collect it",
			"room", roomName, "error", err)
	}
}

// EndSession tears the session down: the room is deleted, disconnecting
// everyone, the class moves to completed, and stored join sessions for the
// room are purged. Only the instructor recorded in the room may end it.
func (s *ClassSessionService) EndSession(
	ctx context.Context,
	claims session.Claims,
	roomName string,
) (SessionInfo, error) {
	rm, err := s.authz.RequireInstructor(ctx, claims, roomName)
	if err != nil {
		return SessionInfo{}, err
	}
	classID := rm.Metadata.ClassID

	if err := s.rooms.Delete(ctx, roomName); err != nil && !apperrors.IsNotFound(err) {
		return SessionInfo{}, fmt.Errorf("tear down room: %w", err)
	}

	if err := s.registry.SetStatus(ctx, classID, session.StatusCompleted); err != nil {
		if !apperrors.IsConflict(err) {
			return SessionInfo{}, fmt.Errorf("mark class completed: %w", err)
		}
		s.logger.WarnContext(ctx, "class already completed", "class_id", classID)
	}

	if err := s.joins.DeleteRoom(ctx, roomName); err != nil {
		s.logger.WarnContext(ctx, "purge join sessions failed",
			"room", roomName, "error", err)
	}

	s.logger.InfoContext(ctx, "session ended", "class_id", classID, "room", roomName)
	return SessionInfo{RoomName: roomName, ClassID: classID, Status: session.StatusCompleted}, nil
}

// JoinInstructor issues the instructor's capability token for a live room.
// Joining is idempotent: a retry inside the previous token's lifetime returns
// the stored token instead of minting a second one.
func (s *ClassSessionService) JoinInstructor(
	ctx context.Context,
	claims session.Claims,
	roomName string,
) (CapabilityToken, error) {
	return s.join(ctx, claims, roomName, func(rm room.Room) (CapabilityToken, error) {
		if rm.Metadata.InstructorID != claims.UserID {
			return CapabilityToken{}, apperrors.Forbidden("only the instructor can join as host")
		}
		return s.tokens.IssueInstructorToken(roomName, claims.UserID)
	})
}

// JoinParticipant issues a participant capability token for a live room.
// Tokens never carry publish grants; speaking rights arrive later through the
// invite flow. Same idempotency as JoinInstructor.
func (s *ClassSessionService) JoinParticipant(
	ctx context.Context,
	claims session.Claims,
	roomName string,
	profile JoinProfile,
) (CapabilityToken, error) {
	return s.join(ctx, claims, roomName, func(rm room.Room) (CapabilityToken, error) {
		if rm.NumParticipants >= rm.MaxParticipants && rm.MaxParticipants > 0 {
			return CapabilityToken{}, apperrors.Conflictf("room %q is full", roomName)
		}
		return s.tokens.IssueParticipantToken(roomName, claims.UserID, profile)
	})
}

// join runs the shared join flow under a singleflight key so concurrent
// retries from the same identity collapse into one token.
func (s *ClassSessionService) join(
	ctx context.Context,
	claims session.Claims,
	roomName string,
	mint func(rm room.Room) (CapabilityToken, error),
) (CapabilityToken, error) {
	if err := s.authz.RequireRoomMatch(claims, roomName); err != nil {
		return CapabilityToken{}, err
	}

	key := roomName + "/" + claims.UserID
	result, err, _ := s.joinGroup.Do(key, func() (any, error) {
		rm, err := s.authz.RequireActiveRoom(ctx, roomName)
		if err != nil {
			return nil, err
		}

		stored, err := s.joins.Get(ctx, roomName, claims.UserID)
		if err == nil && stored.ExpiresAt.After(s.now()) {
			s.logger.InfoContext(ctx, "join replayed from stored session",
				"room", roomName, "identity", claims.UserID)
			return CapabilityToken{
				Token:     stored.Token,
				Identity:  stored.Identity,
				RoomName:  stored.RoomName,
				ExpiresAt: stored.ExpiresAt,
			}, nil
		}
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("check join session: %w", err)
		}

		token, err := mint(rm)
		if err != nil {
			return nil, err
		}

		join := ports.JoinSession{
			ID:        uuid.NewString(),
			RoomName:  roomName,
			Identity:  claims.UserID,
			Token:     token.Token,
			IssuedAt:  s.now(),
			ExpiresAt: token.ExpiresAt,
		}
		if err := s.joins.Save(ctx, join); err != nil {
			s.logger.WarnContext(ctx, "persist join session failed",
				"room", roomName, "identity", claims.UserID, "error", err)
		}

		s.logger.InfoContext(ctx, "join token issued",
			"room", roomName, "identity", claims.UserID, "expires_at", token.ExpiresAt)
		return token, nil
	})
	if err != nil {
		return CapabilityToken{}, err
	}
	return result.(CapabilityToken), nil
}

// RaiseHand marks the caller's hand as raised.
func (s *ClassSessionService) RaiseHand(
	ctx context.Context,
	claims session.Claims,
	roomName string,
) (room.ParticipantMetadata, error) {
	if err := s.authz.RequireScope(claims, session.ScopeSelf); err != nil {
		return room.ParticipantMetadata{}, err
	}
	if err := s.authz.RequireRoomMatch(claims, roomName); err != nil {
		return room.ParticipantMetadata{}, err
	}
	if _, err := s.authz.RequireActiveRoom(ctx, roomName); err != nil {
		return room.ParticipantMetadata{}, err
	}
	return s.participants.SetHandRaised(ctx, roomName, claims.UserID, true)
}

// LowerHand lowers a hand. Participants lower their own; the instructor may
// lower anyone's.
func (s *ClassSessionService) LowerHand(
	ctx context.Context,
	claims session.Claims,
	roomName, targetIdentity string,
) (room.ParticipantMetadata, error) {
	if targetIdentity == "" {
		targetIdentity = claims.UserID
	}
	if _, err := s.authz.RequireSelfOrInstructor(ctx, claims, roomName, targetIdentity); err != nil {
		return room.ParticipantMetadata{}, err
	}
	return s.participants.SetHandRaised(ctx, roomName, targetIdentity, false)
}

// InviteToSpeak grants publish rights to a connected participant and lowers
// their hand. The hand write is best effort: a failure there leaves the
// participant speaking with the hand still up, which the next metadata write
// corrects.
func (s *ClassSessionService) InviteToSpeak(
	ctx context.Context,
	claims session.Claims,
	roomName, targetIdentity string,
) (room.Permissions, error) {
	if err := s.authz.RequireScope(claims, session.ScopeModerate); err != nil {
		return room.Permissions{}, err
	}
	if _, err := s.authz.RequireInstructor(ctx, claims, roomName); err != nil {
		return room.Permissions{}, err
	}
	if targetIdentity == "" {
		return room.Permissions{}, apperrors.ValidationField("identity", "identity is required")
	}
	if targetIdentity == claims.UserID {
		return room.Permissions{}, apperrors.Validation("the instructor already has publish rights")
	}

	perms, err := s.participants.SetPublish(ctx, roomName, targetIdentity, true)
	if err != nil {
		return room.Permissions{}, err
	}
	if _, err := s.participants.SetHandRaised(ctx, roomName, targetIdentity, false); err != nil {
		s.logger.WarnContext(ctx, "lower hand after invite failed",
			"room", roomName, "identity", targetIdentity, "error", err)
	}

	s.logger.InfoContext(ctx, "participant invited to speak",
		"room", roomName, "identity", targetIdentity)
	return perms, nil
}

// RemoveFromSpeaking revokes a participant's publish rights.
func (s *ClassSessionService) RemoveFromSpeaking(
	ctx context.Context,
	claims session.Claims,
	roomName, targetIdentity string,
) (room.Permissions, error) {
	if err := s.authz.RequireScope(claims, session.ScopeModerate); err != nil {
		return room.Permissions{}, err
	}
	if _, err := s.authz.RequireInstructor(ctx, claims, roomName); err != nil {
		return room.Permissions{}, err
	}
	if targetIdentity == "" {
		return room.Permissions{}, apperrors.ValidationField("identity", "identity is required")
	}

	perms, err := s.participants.SetPublish(ctx, roomName, targetIdentity, false)
	if err != nil {
		return room.Permissions{}, err
	}

	s.logger.InfoContext(ctx, "participant removed from speaking",
		"room", roomName, "identity", targetIdentity)
	return perms, nil
}
