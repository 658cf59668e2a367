package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"scheduled to live", StatusScheduled, StatusLive, true},
		{"live to completed", StatusLive, StatusCompleted, true},
		{"scheduled to completed skips live", StatusScheduled, StatusCompleted, false},
		{"completed is terminal", StatusCompleted, StatusLive, false},
		{"no back transition", StatusLive, StatusScheduled, false},
		{"no self transition", StatusLive, StatusLive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusScheduled.Valid())
	assert.True(t, StatusLive.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("paused").Valid())
	assert.False(t, Status("").Valid())
}

func TestRoomNameForClass(t *testing.T) {
	assert.Equal(t, "class-42", RoomNameForClass("42"))

	// Deterministic: the same class always maps to the same room.
	assert.Equal(t, RoomNameForClass("abc"), RoomNameForClass("abc"))
}

func TestClaims_HasScope(t *testing.T) {
	c := Claims{Scopes: []Scope{ScopeRead, ScopeSelf}}

	assert.True(t, c.HasScope(ScopeRead))
	assert.True(t, c.HasScope(ScopeSelf))
	assert.False(t, c.HasScope(ScopeModerate))
}

func TestScopesFor(t *testing.T) {
	instructor := ScopesFor(true)
	assert.Contains(t, instructor, ScopeModerate)
	assert.Contains(t, instructor, ScopeSelf)
	assert.Contains(t, instructor, ScopeRead)

	participant := ScopesFor(false)
	assert.NotContains(t, participant, ScopeModerate)
	assert.Contains(t, participant, ScopeSelf)
	assert.Contains(t, participant, ScopeRead)
}
