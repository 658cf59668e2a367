package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/classline/live-api/internal/errors"
)

func TestMetadata_RoundTrip(t *testing.T) {
	m := Metadata{
		InstructorID: "teacher-1",
		ClassID:      "42",
		Features:     map[string]bool{"chat": true, "whiteboard": false},
	}

	raw, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMetadata_Validate(t *testing.T) {
	tests := []struct {
		name      string
		m         Metadata
		wantField string
	}{
		{"valid", Metadata{InstructorID: "t1", ClassID: "42"}, ""},
		{"missing instructor", Metadata{ClassID: "42"}, "instructor_id"},
		{"missing class", Metadata{InstructorID: "t1"}, "class_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestDecodeMetadata_Invalid(t *testing.T) {
	_, err := DecodeMetadata("{not json")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestParticipantMetadata_RoundTrip(t *testing.T) {
	avatar := "https://cdn.example.com/a.png"
	m := ParticipantMetadata{
		UserID:     "student-7",
		Username:   "sam",
		AvatarURL:  &avatar,
		HandRaised: true,
	}

	raw, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeParticipantMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestDecodeParticipantMetadata_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeParticipantMetadata(`{"user_id":"u1","xp_points":100}`)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestParticipantMetadata_Validate(t *testing.T) {
	assert.NoError(t, ParticipantMetadata{UserID: "u1"}.Validate())

	err := ParticipantMetadata{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "user_id", apperrors.GetField(err))

	err = ParticipantMetadata{UserID: "t1", IsInstructor: true, HandRaised: true}.Validate()
	assert.True(t, apperrors.IsValidation(err))
}

func TestWithHandRaised_PreservesOtherFields(t *testing.T) {
	avatar := "https://cdn.example.com/b.png"
	before := ParticipantMetadata{
		UserID:    "student-7",
		Username:  "sam",
		AvatarURL: &avatar,
	}

	after := WithHandRaised(before, true)

	assert.True(t, after.HandRaised)
	assert.Equal(t, before.UserID, after.UserID)
	assert.Equal(t, before.Username, after.Username)
	assert.Equal(t, before.AvatarURL, after.AvatarURL)
	assert.Equal(t, before.IsInstructor, after.IsInstructor)

	// Idempotent: applying the same value again converges.
	assert.Equal(t, after, WithHandRaised(after, true))
}

func TestWithPublish_PreservesOtherFlags(t *testing.T) {
	before := Permissions{
		CanSubscribe:      true,
		CanPublishData:    true,
		CanUpdateMetadata: true,
	}

	granted := WithPublish(before, true)
	assert.True(t, granted.CanPublish)
	assert.True(t, granted.CanSubscribe)
	assert.True(t, granted.CanPublishData)
	assert.True(t, granted.CanUpdateMetadata)

	revoked := WithPublish(granted, false)
	assert.False(t, revoked.CanPublish)
	assert.Equal(t, before, revoked)
}

func TestDefaultParticipantMetadata(t *testing.T) {
	m := DefaultParticipantMetadata("student-9")

	assert.Equal(t, "student-9", m.UserID)
	assert.False(t, m.IsInstructor)
	assert.False(t, m.HandRaised)
}
