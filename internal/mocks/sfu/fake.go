package sfu

// Package sfu contains a stateful in-memory test double for the SFU control
// plane. It mirrors the error mapping of the real adapter: missing rooms and
// participants surface as NotFound errors. Per-method Func overrides allow
// failure injection without codegen.

import (
	"context"
	"sync"
	"time"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// Ensure compile-time conformance to the port.
var _ ports.SFUClient = (*FakeSFU)(nil)

// FakeSFU is an in-memory SFU: rooms and connected participants live in maps.
// All methods are safe for concurrent use.
type FakeSFU struct {
	mu           sync.Mutex
	rooms        map[string]room.Room
	participants map[string]map[string]room.Participant

	// Optional overrides for failure injection.
	CreateRoomFunc                   func(ctx context.Context, req ports.CreateRoomRequest) (room.Room, error)
	DeleteRoomFunc                   func(ctx context.Context, roomName string) error
	GetRoomFunc                      func(ctx context.Context, roomName string) (room.Room, error)
	ListRoomsFunc                    func(ctx context.Context) ([]room.Room, error)
	GetParticipantFunc               func(ctx context.Context, roomName, identity string) (room.Participant, error)
	UpdateParticipantMetadataFunc    func(ctx context.Context, roomName, identity, metadata string) error
	UpdateParticipantPermissionsFunc func(ctx context.Context, roomName, identity string, perms room.Permissions) error
}

// NewFakeSFU creates an empty fake.
func NewFakeSFU() *FakeSFU {
	return &FakeSFU{
		rooms:        make(map[string]room.Room),
		participants: make(map[string]map[string]room.Participant),
	}
}

func (f *FakeSFU) CreateRoom(ctx context.Context, req ports.CreateRoomRequest) (room.Room, error) {
	if f.CreateRoomFunc != nil {
		return f.CreateRoomFunc(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rm := room.Room{
		Name:            req.Name,
		Metadata:        req.Metadata,
		MaxParticipants: req.Limits.MaxParticipants,
		CreatedAt:       time.Now(),
	}
	f.rooms[req.Name] = rm
	if f.participants[req.Name] == nil {
		f.participants[req.Name] = make(map[string]room.Participant)
	}
	return rm, nil
}

func (f *FakeSFU) DeleteRoom(ctx context.Context, roomName string) error {
	if f.DeleteRoomFunc != nil {
		return f.DeleteRoomFunc(ctx, roomName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[roomName]; !ok {
		return apperrors.NotFoundf("room %q not found", roomName)
	}
	delete(f.rooms, roomName)
	delete(f.participants, roomName)
	return nil
}

func (f *FakeSFU) GetRoom(ctx context.Context, roomName string) (room.Room, error) {
	if f.GetRoomFunc != nil {
		return f.GetRoomFunc(ctx, roomName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rm, ok := f.rooms[roomName]
	if !ok {
		return room.Room{}, apperrors.NotFoundf("room %q not found", roomName)
	}
	rm.NumParticipants = uint32(len(f.participants[roomName]))
	return rm, nil
}

func (f *FakeSFU) ListRooms(ctx context.Context) ([]room.Room, error) {
	if f.ListRoomsFunc != nil {
		return f.ListRoomsFunc(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rooms := make([]room.Room, 0, len(f.rooms))
	for _, rm := range f.rooms {
		rooms = append(rooms, rm)
	}
	return rooms, nil
}

func (f *FakeSFU) GetParticipant(ctx context.Context, roomName, identity string) (room.Participant, error) {
	if f.GetParticipantFunc != nil {
		return f.GetParticipantFunc(ctx, roomName, identity)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.participants[roomName][identity]
	if !ok {
		return room.Participant{}, apperrors.NotFoundf("participant %q not found in room %q", identity, roomName)
	}
	return p, nil
}

func (f *FakeSFU) UpdateParticipantMetadata(ctx context.Context, roomName, identity, metadata string) error {
	if f.UpdateParticipantMetadataFunc != nil {
		return f.UpdateParticipantMetadataFunc(ctx, roomName, identity, metadata)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.participants[roomName][identity]
	if !ok {
		return apperrors.NotFoundf("participant %q not found in room %q", identity, roomName)
	}
	p.Metadata = metadata
	f.participants[roomName][identity] = p
	return nil
}

func (f *FakeSFU) UpdateParticipantPermissions(
	ctx context.Context,
	roomName, identity string,
	perms room.Permissions,
) error {
	if f.UpdateParticipantPermissionsFunc != nil {
		return f.UpdateParticipantPermissionsFunc(ctx, roomName, identity, perms)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.participants[roomName][identity]
	if !ok {
		return apperrors.NotFoundf("participant %q not found in room %q", identity, roomName)
	}
	p.Permissions = perms
	f.participants[roomName][identity] = p
	return nil
}

// Connect simulates an identity connecting to a room with the given metadata
// blob and permissions, the way the real SFU records a client join.
func (f *FakeSFU) Connect(roomName, identity, metadata string, perms room.Permissions) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.participants[roomName] == nil {
		f.participants[roomName] = make(map[string]room.Participant)
	}
	f.participants[roomName][identity] = room.Participant{
		Identity:    identity,
		Metadata:    metadata,
		Permissions: perms,
		JoinedAt:    time.Now(),
	}
}

// SetRoomCreatedAt rewrites a room's creation time for age-based assertions.
func (f *FakeSFU) SetRoomCreatedAt(roomName string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rm, ok := f.rooms[roomName]
	if !ok {
		return
	}
	rm.CreatedAt = at
	f.rooms[roomName] = rm
}

// Participant returns the stored participant record for assertions.
func (f *FakeSFU) Participant(roomName, identity string) (room.Participant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.participants[roomName][identity]
	return p, ok
}

// RoomExists reports whether the room is currently provisioned.
func (f *FakeSFU) RoomExists(roomName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.rooms[roomName]
	return ok
}
