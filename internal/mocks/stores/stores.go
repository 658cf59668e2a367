package stores

// Package stores contains simple hand-written in-memory doubles for the
// registry and join-store ports. These are lightweight and suitable for unit
// tests without codegen or external services.

import (
	"context"
	"sync"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.ClassRegistry = (*MemoryRegistry)(nil)
	_ ports.JoinStore     = (*MemoryJoinStore)(nil)
)

// MemoryRegistry is an in-memory class registry that enforces the same status
// state machine as the real adapter.
type MemoryRegistry struct {
	mu      sync.Mutex
	classes map[string]session.ClassSession

	// Optional overrides for failure injection.
	GetClassFunc    func(ctx context.Context, classID string) (session.ClassSession, error)
	SetRoomNameFunc func(ctx context.Context, classID, roomName string) error
	SetStatusFunc   func(ctx context.Context, classID string, status session.Status) error
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{classes: make(map[string]session.ClassSession)}
}

// Seed inserts or replaces a class record.
func (r *MemoryRegistry) Seed(class session.ClassSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[class.ClassID] = class
}

func (r *MemoryRegistry) GetClass(ctx context.Context, classID string) (session.ClassSession, error) {
	if r.GetClassFunc != nil {
		return r.GetClassFunc(ctx, classID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	class, ok := r.classes[classID]
	if !ok {
		return session.ClassSession{}, apperrors.NotFoundf("class %q not found", classID)
	}
	return class, nil
}

func (r *MemoryRegistry) SetRoomName(ctx context.Context, classID, roomName string) error {
	if r.SetRoomNameFunc != nil {
		return r.SetRoomNameFunc(ctx, classID, roomName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	class, ok := r.classes[classID]
	if !ok {
		return apperrors.NotFoundf("class %q not found", classID)
	}
	class.RoomName = roomName
	r.classes[classID] = class
	return nil
}

func (r *MemoryRegistry) SetStatus(ctx context.Context, classID string, status session.Status) error {
	if r.SetStatusFunc != nil {
		return r.SetStatusFunc(ctx, classID, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	class, ok := r.classes[classID]
	if !ok {
		return apperrors.NotFoundf("class %q not found", classID)
	}
	if !class.Status.CanTransition(status) {
		return apperrors.Conflictf("class %q cannot move from %s to %s", classID, class.Status, status)
	}
	class.Status = status
	r.classes[classID] = class
	return nil
}

// MemoryJoinStore is an in-memory join-session store.
type MemoryJoinStore struct {
	mu       sync.Mutex
	sessions map[string]ports.JoinSession

	// Optional overrides for failure injection.
	SaveFunc func(ctx context.Context, sess ports.JoinSession) error
	GetFunc  func(ctx context.Context, roomName, identity string) (ports.JoinSession, error)
}

// NewMemoryJoinStore creates an empty store.
func NewMemoryJoinStore() *MemoryJoinStore {
	return &MemoryJoinStore{sessions: make(map[string]ports.JoinSession)}
}

func joinKey(roomName, identity string) string {
	return roomName + "/" + identity
}

func (s *MemoryJoinStore) Save(ctx context.Context, sess ports.JoinSession) error {
	if s.SaveFunc != nil {
		return s.SaveFunc(ctx, sess)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[joinKey(sess.RoomName, sess.Identity)] = sess
	return nil
}

func (s *MemoryJoinStore) Get(ctx context.Context, roomName, identity string) (ports.JoinSession, error) {
	if s.GetFunc != nil {
		return s.GetFunc(ctx, roomName, identity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[joinKey(roomName, identity)]
	if !ok {
		return ports.JoinSession{}, apperrors.NotFoundf("join session for %q in %q not found", identity, roomName)
	}
	return sess, nil
}

func (s *MemoryJoinStore) Delete(ctx context.Context, roomName, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, joinKey(roomName, identity))
	return nil
}

func (s *MemoryJoinStore) DeleteRoom(ctx context.Context, roomName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sess := range s.sessions {
		if sess.RoomName == roomName {
			delete(s.sessions, key)
		}
	}
	return nil
}

// Len reports how many sessions are stored; for assertions.
func (s *MemoryJoinStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
