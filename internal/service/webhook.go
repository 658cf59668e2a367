package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// SFU webhook event names this service reacts to. Everything else is
// acknowledged and dropped.
const (
	EventRoomFinished    = "room_finished"
	EventParticipantLeft = "participant_left"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// WebhookServiceOptions groups dependencies for WebhookService.
type WebhookServiceOptions struct {
	Registry  ports.ClassRegistry
	Joins     ports.JoinStore
	Evaluator JMESPathEvaluator
	Logger    *slog.Logger
}

// WebhookService reconciles broker-side state from SFU events: a finished
// room completes its class and drops stored join sessions, a departing
// participant drops theirs so a rejoin mints a fresh token.
type WebhookService struct {
	registry ports.ClassRegistry
	joins    ports.JoinStore
	jems     JMESPathEvaluator
	logger   *slog.Logger
}

// NewWebhookService constructs a new WebhookService.
func NewWebhookService(opts WebhookServiceOptions) *WebhookService {
	if opts.Registry == nil {
		panic("class registry is required")
	}
	if opts.Joins == nil {
		panic("join store is required")
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{registry: opts.Registry, joins: opts.Joins, jems: jems, logger: logger}
}

// Process handles a verified SFU webhook payload. Unknown events are ignored
// so the SFU's delivery queue keeps draining.
func (s *WebhookService) Process(ctx context.Context, payload []byte) error {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return apperrors.Validationf("decode webhook payload: %v", err)
	}

	event, err := s.extractString(doc, "event")
	if err != nil {
		return err
	}
	roomName, err := s.extractString(doc, "room.name")
	if err != nil {
		return err
	}

	switch event {
	case EventRoomFinished:
		return s.roomFinished(ctx, roomName)
	case EventParticipantLeft:
		identity, err := s.extractString(doc, "participant.identity")
		if err != nil {
			return err
		}
		return s.participantLeft(ctx, roomName, identity)
	default:
		s.logger.DebugContext(ctx, "ignoring webhook event", "event", event, "room", roomName)
		return nil
	}
}

func (s *WebhookService) extractString(doc any, expr string) (string, error) {
	value, err := s.jems.Evaluate(expr, doc)
	if err != nil {
		return "", fmt.Errorf("evaluate webhook field %q: %w", expr, err)
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", apperrors.Validationf("webhook payload is missing %q", expr)
	}
	return str, nil
}

func (s *WebhookService) roomFinished(ctx context.Context, roomName string) error {
	classID, ok := session.ClassIDForRoom(roomName)
	if !ok {
		// Not one of ours; rooms provisioned outside the broker share the SFU.
		s.logger.DebugContext(ctx, "ignoring unmanaged room", "room", roomName)
		return nil
	}

	if err := s.registry.SetStatus(ctx, classID, session.StatusCompleted); err != nil {
		switch {
		case apperrors.IsConflict(err):
			s.logger.InfoContext(ctx, "class already completed", "class_id", classID)
		case apperrors.IsNotFound(err):
			s.logger.WarnContext(ctx, "finished room has no class", "room", roomName)
		default:
			return fmt.Errorf("complete class %q: %w", classID, err)
		}
	}

	if err := s.joins.DeleteRoom(ctx, roomName); err != nil {
		return fmt.Errorf("purge join sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "room finished", "room", roomName, "class_id", classID)
	return nil
}

func (s *WebhookService) participantLeft(ctx context.Context, roomName, identity string) error {
	if err := s.joins.Delete(ctx, roomName, identity); err != nil {
		return fmt.Errorf("drop join session: %w", err)
	}
	s.logger.InfoContext(ctx, "participant left", "room", roomName, "identity", identity)
	return nil
}
