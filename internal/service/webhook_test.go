package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/mocks/stores"
	"github.com/classline/live-api/internal/ports"
	"github.com/classline/live-api/internal/service"
)

func newWebhookService(t *testing.T) (*service.WebhookService, *stores.MemoryRegistry, *stores.MemoryJoinStore) {
	t.Helper()
	registry := stores.NewMemoryRegistry()
	joins := stores.NewMemoryJoinStore()
	svc := service.NewWebhookService(service.WebhookServiceOptions{
		Registry: registry,
		Joins:    joins,
	})
	return svc, registry, joins
}

func TestWebhookService_RoomFinished(t *testing.T) {
	ctx := context.Background()

	t.Run("completes the class and purges joins", func(t *testing.T) {
		svc, registry, joins := newWebhookService(t)
		registry.Seed(session.ClassSession{
			ClassID:      "101",
			InstructorID: "instructor-1",
			RoomName:     "class-101",
			Status:       session.StatusLive,
		})
		require.NoError(t, joins.Save(ctx, ports.JoinSession{
			ID: "j1", RoomName: "class-101", Identity: "student-1",
		}))

		payload := []byte(`{"event":"room_finished","room":{"name":"class-101"}}`)
		require.NoError(t, svc.Process(ctx, payload))

		class, err := registry.GetClass(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, session.StatusCompleted, class.Status)
		assert.Zero(t, joins.Len())
	})

	t.Run("already completed classes are tolerated", func(t *testing.T) {
		svc, registry, _ := newWebhookService(t)
		registry.Seed(session.ClassSession{
			ClassID: "101",
			Status:  session.StatusCompleted,
		})

		payload := []byte(`{"event":"room_finished","room":{"name":"class-101"}}`)
		assert.NoError(t, svc.Process(ctx, payload))
	})

	t.Run("rooms with unknown classes are tolerated", func(t *testing.T) {
		svc, _, _ := newWebhookService(t)

		payload := []byte(`{"event":"room_finished","room":{"name":"class-999"}}`)
		assert.NoError(t, svc.Process(ctx, payload))
	})

	t.Run("unmanaged rooms are ignored", func(t *testing.T) {
		svc, registry, _ := newWebhookService(t)
		registry.Seed(session.ClassSession{ClassID: "101", Status: session.StatusLive})

		payload := []byte(`{"event":"room_finished","room":{"name":"other-tenant-room"}}`)
		require.NoError(t, svc.Process(ctx, payload))

		class, err := registry.GetClass(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, session.StatusLive, class.Status)
	})
}

func TestWebhookService_ParticipantLeft(t *testing.T) {
	ctx := context.Background()
	svc, _, joins := newWebhookService(t)

	require.NoError(t, joins.Save(ctx, ports.JoinSession{
		ID: "j1", RoomName: "class-101", Identity: "student-1",
	}))
	require.NoError(t, joins.Save(ctx, ports.JoinSession{
		ID: "j2", RoomName: "class-101", Identity: "student-2",
	}))

	payload := []byte(`{"event":"participant_left","room":{"name":"class-101"},"participant":{"identity":"student-1"}}`)
	require.NoError(t, svc.Process(ctx, payload))

	_, err := joins.Get(ctx, "class-101", "student-1")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = joins.Get(ctx, "class-101", "student-2")
	assert.NoError(t, err)
}

func TestWebhookService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown events are acknowledged", func(t *testing.T) {
		svc, _, _ := newWebhookService(t)
		payload := []byte(`{"event":"track_published","room":{"name":"class-101"}}`)
		assert.NoError(t, svc.Process(ctx, payload))
	})

	t.Run("malformed payloads are validation errors", func(t *testing.T) {
		svc, _, _ := newWebhookService(t)

		err := svc.Process(ctx, []byte(`{not json`))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing fields are validation errors", func(t *testing.T) {
		svc, _, _ := newWebhookService(t)

		err := svc.Process(ctx, []byte(`{"event":"room_finished"}`))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}
