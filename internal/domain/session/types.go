package session

// Package session contains domain-level types for class sessions and the signed
// claims that authorize follow-up API calls. It is pure and free of
// framework/adapter concerns.

import (
	"slices"
	"strings"
	"time"
)

// Status represents the lifecycle state of a class session.
// The machine only moves forward: Scheduled -> Live -> Completed.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// CanTransition reports whether moving from s to next is a legal forward step.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusLive
	case StatusLive:
		return next == StatusCompleted
	default:
		return false
	}
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusCompleted:
		return true
	default:
		return false
	}
}

// ClassSession is the broker's view of one live class. The registry is the
// system of record for Status; the SFU is the system of record for the room's
// existence.
type ClassSession struct {
	RoomName     string `json:"room_name"`
	ClassID      string `json:"class_id"`
	InstructorID string `json:"instructor_id"`
	Status       Status `json:"status"`
}

// RoomNamePrefix marks rooms provisioned by this broker. Rooms without it
// belong to other tenants of the SFU and are left alone.
const RoomNamePrefix = "class-"

// RoomNameForClass derives the SFU room name for a class. The mapping is
// deterministic so that a class always maps to the same room.
func RoomNameForClass(classID string) string {
	return RoomNamePrefix + classID
}

// ClassIDForRoom inverts RoomNameForClass. The second return is false for
// rooms this broker did not provision.
func ClassIDForRoom(roomName string) (string, bool) {
	classID, ok := strings.CutPrefix(roomName, RoomNamePrefix)
	if !ok || classID == "" {
		return "", false
	}
	return classID, true
}

// Scope limits what a session token may be used for. Read-only calls need
// ScopeRead, self-mutations (raise hand, join) need ScopeSelf, and privileged
// mutations of other participants or the room need ScopeModerate.
type Scope string

const (
	ScopeRead     Scope = "read"
	ScopeSelf     Scope = "self"
	ScopeModerate Scope = "moderate"
)

// Claims is the verified content of a session token: which user it belongs to,
// which room and class it is bound to, and what it may do. Claims are a bearer
// capability reconstructed on every call; nothing is stored server-side.
type Claims struct {
	RoomName  string    `json:"room_name"`
	UserID    string    `json:"user_id"`
	ClassID   string    `json:"class_id"`
	Scopes    []Scope   `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasScope reports whether the claims carry the given scope.
func (c Claims) HasScope(s Scope) bool {
	return slices.Contains(c.Scopes, s)
}

// ScopesFor returns the scope set minted for a caller. Instructors additionally
// receive ScopeModerate so they can end sessions and change others' grants.
func ScopesFor(isInstructor bool) []Scope {
	if isInstructor {
		return []Scope{ScopeRead, ScopeSelf, ScopeModerate}
	}
	return []Scope{ScopeRead, ScopeSelf}
}
