// Package mocks provides mock implementations for testing the live-api broker.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The generated files are committed so tests build
// without a codegen step.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockSFU := mocks.NewMockSFUClient(ctrl)
//	mockSFU.EXPECT().ListRooms(gomock.Any()).Return(nil, nil)
package mocks

// Generate mock for the SFUClient interface from internal/ports.
// This creates MockSFUClient with methods for all SFUClient interface methods:
// CreateRoom, DeleteRoom, GetRoom, ListRooms, GetParticipant,
// UpdateParticipantMetadata, UpdateParticipantPermissions
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sfu_client_mock.go github.com/classline/live-api/internal/ports SFUClient

// Generate mock for the ClassRegistry interface from internal/ports.
// This creates MockClassRegistry with methods for all ClassRegistry interface methods:
// GetClass, SetRoomName, SetStatus
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=class_registry_mock.go github.com/classline/live-api/internal/ports ClassRegistry
