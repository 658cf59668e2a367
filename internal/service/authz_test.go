package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	sfumock "github.com/classline/live-api/internal/mocks/sfu"
	"github.com/classline/live-api/internal/service"
)

func newAuthzService(t *testing.T) (*service.AuthzService, *sfumock.FakeSFU) {
	t.Helper()
	fake := sfumock.NewFakeSFU()
	rooms := service.NewRoomService(service.RoomServiceOptions{SFU: fake})
	svc := service.NewAuthzService(service.AuthzServiceOptions{Rooms: rooms})
	return svc, fake
}

func TestAuthzService_RequireRoomMatch(t *testing.T) {
	svc, _ := newAuthzService(t)
	claims := session.Claims{RoomName: "class-1", UserID: "user-1", ClassID: "1"}

	assert.NoError(t, svc.RequireRoomMatch(claims, "class-1"))

	err := svc.RequireRoomMatch(claims, "class-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthzService_RequireScope(t *testing.T) {
	svc, _ := newAuthzService(t)

	instructor := session.Claims{Scopes: session.ScopesFor(true)}
	student := session.Claims{Scopes: session.ScopesFor(false)}

	assert.NoError(t, svc.RequireScope(instructor, session.ScopeModerate))
	assert.NoError(t, svc.RequireScope(student, session.ScopeSelf))

	err := svc.RequireScope(student, session.ScopeModerate)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthzService_RequireActiveRoom(t *testing.T) {
	ctx := context.Background()
	svc, fake := newAuthzService(t)

	t.Run("missing room is not found", func(t *testing.T) {
		_, err := svc.RequireActiveRoom(ctx, "class-missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("live room is returned", func(t *testing.T) {
		_, err := service.NewRoomService(service.RoomServiceOptions{SFU: fake}).
			Create(ctx, "class-1", room.Metadata{InstructorID: "instructor-1", ClassID: "1"}, room.Limits{})
		require.NoError(t, err)

		rm, err := svc.RequireActiveRoom(ctx, "class-1")
		require.NoError(t, err)
		assert.Equal(t, "class-1", rm.Name)
	})
}

func TestAuthzService_RequireInstructor(t *testing.T) {
	ctx := context.Background()
	svc, fake := newAuthzService(t)

	_, err := service.NewRoomService(service.RoomServiceOptions{SFU: fake}).
		Create(ctx, "class-1", room.Metadata{InstructorID: "instructor-1", ClassID: "1"}, room.Limits{})
	require.NoError(t, err)

	instructorClaims := session.Claims{
		RoomName: "class-1",
		UserID:   "instructor-1",
		ClassID:  "1",
		Scopes:   session.ScopesFor(true),
	}
	studentClaims := session.Claims{
		RoomName: "class-1",
		UserID:   "student-1",
		ClassID:  "1",
		Scopes:   session.ScopesFor(false),
	}

	t.Run("passes for the recorded instructor", func(t *testing.T) {
		rm, err := svc.RequireInstructor(ctx, instructorClaims, "class-1")
		require.NoError(t, err)
		assert.Equal(t, "instructor-1", rm.Metadata.InstructorID)
	})

	t.Run("rejects other identities", func(t *testing.T) {
		_, err := svc.RequireInstructor(ctx, studentClaims, "class-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("rejects claims bound to another room", func(t *testing.T) {
		other := instructorClaims
		other.RoomName = "class-2"
		_, err := svc.RequireInstructor(ctx, other, "class-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("rejects when the room is gone", func(t *testing.T) {
		gone := instructorClaims
		gone.RoomName = "class-gone"
		_, err := svc.RequireInstructor(ctx, gone, "class-gone")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestAuthzService_RequireSelfOrInstructor(t *testing.T) {
	ctx := context.Background()
	svc, fake := newAuthzService(t)

	_, err := service.NewRoomService(service.RoomServiceOptions{SFU: fake}).
		Create(ctx, "class-1", room.Metadata{InstructorID: "instructor-1", ClassID: "1"}, room.Limits{})
	require.NoError(t, err)

	student := session.Claims{RoomName: "class-1", UserID: "student-1", ClassID: "1"}
	instructor := session.Claims{RoomName: "class-1", UserID: "instructor-1", ClassID: "1"}

	t.Run("self is allowed", func(t *testing.T) {
		_, err := svc.RequireSelfOrInstructor(ctx, student, "class-1", "student-1")
		assert.NoError(t, err)
	})

	t.Run("instructor may act on anyone", func(t *testing.T) {
		_, err := svc.RequireSelfOrInstructor(ctx, instructor, "class-1", "student-1")
		assert.NoError(t, err)
	})

	t.Run("students cannot act on each other", func(t *testing.T) {
		_, err := svc.RequireSelfOrInstructor(ctx, student, "class-1", "student-2")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})
}
