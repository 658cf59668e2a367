package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/classline/live-api/internal/mediatoken"
)

// webhookBodyLimit caps how much of an SFU event body is read. Events are
// small; anything larger is not an SFU event.
const webhookBodyLimit = 1 << 20

// WebhookProcessor consumes a verified SFU event payload.
type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte) error
}

// WebhookHandlers receives signed event posts from the SFU.
type WebhookHandlers struct {
	Svc       WebhookProcessor
	APISecret string
	Logger    *slog.Logger
}

func (h *WebhookHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Receive handles an SFU event post. The Authorization header carries a token
// signed with the shared SFU secret over the body's digest; unverifiable
// posts are rejected before any processing.
// POST /v1/webhooks/sfu.
func (h *WebhookHandlers) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "unreadable_body",
			Err:     errors.New("could not read request body"),
		})
		return
	}

	token := r.Header.Get("Authorization")
	if token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "missing_signature",
			Err:     errors.New("authorization token is required"),
		})
		return
	}
	if _, err := mediatoken.VerifyWebhook(token, h.APISecret, body); err != nil {
		h.logger().WarnContext(r.Context(), "webhook signature rejected", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "invalid_signature",
			Err:     errors.New("webhook signature verification failed"),
		})
		return
	}

	if err := h.Svc.Process(r.Context(), body); err != nil {
		h.logger().ErrorContext(r.Context(), "webhook processing failed", "error", err)
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
