package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/mediatoken"
)

const (
	testSFUKey    = "sfu-key"
	testSFUSecret = "sfu-secret-sfu-secret-sfu-secret"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	return NewTokenIssuer(TokenIssuerOptions{APIKey: testSFUKey, APISecret: testSFUSecret})
}

func TestNewTokenIssuer_RequiresCredentials(t *testing.T) {
	assert.Panics(t, func() {
		NewTokenIssuer(TokenIssuerOptions{APIKey: "k"})
	})
}

func TestIssueInstructorToken(t *testing.T) {
	issuer := newTestIssuer(t)

	tok, err := issuer.IssueInstructorToken("class-42", "teacher-1")
	require.NoError(t, err)

	assert.True(t, tok.Grants.RoomJoin)
	assert.True(t, tok.Grants.CanPublish)
	assert.True(t, tok.Grants.CanSubscribe)
	assert.True(t, tok.Grants.CanPublishData)
	assert.True(t, tok.Grants.CanUpdateOwnMetadata)
	assert.Equal(t, "class-42", tok.Grants.Room)
	assert.True(t, tok.Metadata.IsInstructor)
	assert.Equal(t, "teacher-1", tok.Metadata.UserID)

	// The signed token carries the same grants and metadata.
	claims, err := mediatoken.Parse(tok.Token, testSFUSecret)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.Subject)
	assert.Equal(t, tok.Grants, claims.Grants)

	embedded, err := room.DecodeParticipantMetadata(claims.Metadata)
	require.NoError(t, err)
	assert.Equal(t, tok.Metadata, embedded)
}

func TestIssueParticipantToken_NeverGrantsPublish(t *testing.T) {
	issuer := newTestIssuer(t)
	avatar := "https://cdn.example.com/s.png"

	identities := []string{"student-1", "student-2", "student-3"}
	for _, identity := range identities {
		tok, err := issuer.IssueParticipantToken("class-42", identity, JoinProfile{
			Username:  "name-" + identity,
			AvatarURL: &avatar,
		})
		require.NoError(t, err)

		assert.False(t, tok.Grants.CanPublish, "participant %s must not get publish", identity)
		assert.True(t, tok.Grants.RoomJoin)
		assert.True(t, tok.Grants.CanSubscribe)
		assert.True(t, tok.Grants.CanPublishData)
		assert.True(t, tok.Grants.CanUpdateOwnMetadata)

		assert.False(t, tok.Metadata.IsInstructor)
		assert.False(t, tok.Metadata.HandRaised)
		assert.Equal(t, identity, tok.Metadata.UserID)
		assert.Equal(t, "name-"+identity, tok.Metadata.Username)
		require.NotNil(t, tok.Metadata.AvatarURL)
		assert.Equal(t, avatar, *tok.Metadata.AvatarURL)
	}
}

func TestIssue_Validation(t *testing.T) {
	issuer := newTestIssuer(t)

	_, err := issuer.IssueParticipantToken("", "student-1", JoinProfile{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "room_name", apperrors.GetField(err))

	_, err = issuer.IssueInstructorToken("class-42", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "identity", apperrors.GetField(err))
}
