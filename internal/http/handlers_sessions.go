package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/domain/session"
	"github.com/classline/live-api/internal/service"
)

// SessionServiceInterface defines the session operations the handlers call.
type SessionServiceInterface interface {
	CreateSession(ctx context.Context, claims session.Claims, classID string) (service.SessionInfo, error)
	EndSession(ctx context.Context, claims session.Claims, roomName string) (service.SessionInfo, error)
	JoinInstructor(ctx context.Context, claims session.Claims, roomName string) (service.CapabilityToken, error)
	JoinParticipant(ctx context.Context, claims session.Claims, roomName string, profile service.JoinProfile) (service.CapabilityToken, error)
	RaiseHand(ctx context.Context, claims session.Claims, roomName string) (room.ParticipantMetadata, error)
	LowerHand(ctx context.Context, claims session.Claims, roomName, targetIdentity string) (room.ParticipantMetadata, error)
	InviteToSpeak(ctx context.Context, claims session.Claims, roomName, targetIdentity string) (room.Permissions, error)
	RemoveFromSpeaking(ctx context.Context, claims session.Claims, roomName, targetIdentity string) (room.Permissions, error)
}

// SessionHandlers provides HTTP handlers for session lifecycle, joining, and
// in-room moderation.
type SessionHandlers struct {
	Svc    SessionServiceInterface
	Logger *slog.Logger
}

type createSessionRequest struct {
	ClassID string `json:"class_id"`
}

type joinRequest struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type lowerHandRequest struct {
	Identity string `json:"identity,omitempty"`
}

type speakerRequest struct {
	Identity string `json:"identity"`
}

// joinResponse is the wire shape of an issued capability token.
type joinResponse struct {
	Token     string    `json:"token"`
	Identity  string    `json:"identity"`
	RoomName  string    `json:"room_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toJoinResponse(t service.CapabilityToken) joinResponse {
	return joinResponse{
		Token:     t.Token,
		Identity:  t.Identity,
		RoomName:  t.RoomName,
		ExpiresAt: t.ExpiresAt,
	}
}

// requireClaims pulls the verified claims from the request context. The
// middleware guarantees they are present on protected routes; a miss means a
// routing mistake, answered as unauthenticated rather than a panic.
func requireClaims(w http.ResponseWriter, r *http.Request) (session.Claims, bool) {
	claims, ok := GetClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	}
	return claims, ok
}

// Create handles session creation.
// POST /v1/sessions.
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req createSessionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	info, err := h.Svc.CreateSession(r.Context(), claims, req.ClassID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, info)
}

// End handles session teardown.
// DELETE /v1/sessions/{room}.
func (h *SessionHandlers) End(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	info, err := h.Svc.EndSession(r.Context(), claims, r.PathValue("room"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// JoinInstructor issues the instructor's capability token.
// POST /v1/sessions/{room}/join/instructor.
func (h *SessionHandlers) JoinInstructor(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	token, err := h.Svc.JoinInstructor(r.Context(), claims, r.PathValue("room"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toJoinResponse(token))
}

// JoinParticipant issues a participant capability token.
// POST /v1/sessions/{room}/join.
func (h *SessionHandlers) JoinParticipant(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req joinRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile := service.JoinProfile{Username: req.Username, AvatarURL: req.AvatarURL}
	token, err := h.Svc.JoinParticipant(r.Context(), claims, r.PathValue("room"), profile)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toJoinResponse(token))
}

// RaiseHand marks the caller's hand as raised.
// POST /v1/sessions/{room}/hand/raise.
func (h *SessionHandlers) RaiseHand(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	meta, err := h.Svc.RaiseHand(r.Context(), claims, r.PathValue("room"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, meta)
}

// LowerHand lowers a hand, the caller's own unless an identity is given.
// POST /v1/sessions/{room}/hand/lower.
func (h *SessionHandlers) LowerHand(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req lowerHandRequest
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	meta, err := h.Svc.LowerHand(r.Context(), claims, r.PathValue("room"), req.Identity)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, meta)
}

// InviteToSpeak grants a participant publish rights.
// POST /v1/sessions/{room}/speakers.
func (h *SessionHandlers) InviteToSpeak(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req speakerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	perms, err := h.Svc.InviteToSpeak(r.Context(), claims, r.PathValue("room"), req.Identity)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, perms)
}

// RemoveFromSpeaking revokes a participant's publish rights.
// DELETE /v1/sessions/{room}/speakers/{identity}.
func (h *SessionHandlers) RemoveFromSpeaking(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	perms, err := h.Svc.RemoveFromSpeaking(r.Context(), claims, r.PathValue("room"), r.PathValue("identity"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, perms)
}
