package httpx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/session"
	"github.com/classline/live-api/internal/mediatoken"
	"github.com/classline/live-api/internal/mocks/stores"
	"github.com/classline/live-api/internal/service"
)

const (
	webhookTestKey    = "test-key"
	webhookTestSecret = "test-secret-test-secret-test-secret"
)

type webhookFixture struct {
	handlers *WebhookHandlers
	registry *stores.MemoryRegistry
	joins    *stores.MemoryJoinStore
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	registry := stores.NewMemoryRegistry()
	joins := stores.NewMemoryJoinStore()
	svc := service.NewWebhookService(service.WebhookServiceOptions{
		Registry: registry,
		Joins:    joins,
		Logger:   discardLogger(),
	})
	return &webhookFixture{
		handlers: &WebhookHandlers{Svc: svc, APISecret: webhookTestSecret, Logger: discardLogger()},
		registry: registry,
		joins:    joins,
	}
}

func signedWebhookRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()

	token, err := mediatoken.New(webhookTestKey, webhookTestSecret).SetBody(body).SignedString()
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/v1/webhooks/sfu", bytes.NewReader(body))
	r.Header.Set("Authorization", token)
	return r
}

func TestWebhookHandlers_Receive(t *testing.T) {
	t.Run("room finished completes the class", func(t *testing.T) {
		f := newWebhookFixture(t)
		f.registry.Seed(session.ClassSession{
			ClassID:      "42",
			InstructorID: "instructor-1",
			RoomName:     "class-42",
			Status:       session.StatusLive,
		})

		body := []byte(`{"event":"room_finished","room":{"name":"class-42"}}`)
		w := httptest.NewRecorder()
		f.handlers.Receive(w, signedWebhookRequest(t, body))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		class, err := f.registry.GetClass(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, session.StatusCompleted, class.Status)
	})

	t.Run("missing authorization", func(t *testing.T) {
		f := newWebhookFixture(t)

		body := []byte(`{"event":"room_finished","room":{"name":"class-42"}}`)
		r := httptest.NewRequest(http.MethodPost, "/v1/webhooks/sfu", bytes.NewReader(body))
		w := httptest.NewRecorder()
		f.handlers.Receive(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing_signature")
	})

	t.Run("tampered body", func(t *testing.T) {
		f := newWebhookFixture(t)

		body := []byte(`{"event":"room_finished","room":{"name":"class-42"}}`)
		r := signedWebhookRequest(t, body)
		r.Body = nopCloser{bytes.NewReader([]byte(`{"event":"room_finished","room":{"name":"class-666"}}`))}
		w := httptest.NewRecorder()
		f.handlers.Receive(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_signature")
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		f := newWebhookFixture(t)

		body := []byte(`{"event":"room_finished","room":{"name":"class-42"}}`)
		token, err := mediatoken.New(webhookTestKey, "another-secret-entirely-padded-out").SetBody(body).SignedString()
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/v1/webhooks/sfu", bytes.NewReader(body))
		r.Header.Set("Authorization", token)
		w := httptest.NewRecorder()
		f.handlers.Receive(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid payload after valid signature", func(t *testing.T) {
		f := newWebhookFixture(t)

		body := []byte(`not json`)
		w := httptest.NewRecorder()
		f.handlers.Receive(w, signedWebhookRequest(t, body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }
