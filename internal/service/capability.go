package service

import (
	"fmt"
	"time"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/mediatoken"
)

// DefaultCapabilityTokenTTL bounds how long an issued media token can be used
// to connect. It does not bound the connection itself.
const DefaultCapabilityTokenTTL = 2 * time.Hour

// JoinProfile carries the display profile embedded in a participant's token.
type JoinProfile struct {
	Username  string
	AvatarURL *string
}

// CapabilityToken is an issued media-access token plus the metadata and grants
// that were baked into it.
type CapabilityToken struct {
	Token     string
	Identity  string
	RoomName  string
	Grants    mediatoken.Grants
	Metadata  room.ParticipantMetadata
	ExpiresAt time.Time
}

// TokenIssuerOptions groups dependencies for TokenIssuer.
type TokenIssuerOptions struct {
	// APIKey and APISecret are the SFU credential pair tokens are signed with.
	APIKey    string
	APISecret string
	// TTL bounds token lifetime; DefaultCapabilityTokenTTL when zero.
	TTL time.Duration
}

// TokenIssuer mints per-participant capability tokens carrying role-scoped
// grants and initial metadata. Publish rights are fixed at issuance: a
// participant token never grants publish, and any later upgrade happens
// against the live connection through the participant service.
type TokenIssuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenIssuer constructs a new TokenIssuer.
func NewTokenIssuer(opts TokenIssuerOptions) *TokenIssuer {
	if opts.APIKey == "" || opts.APISecret == "" {
		panic("sfu api key and secret are required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCapabilityTokenTTL
	}

	return &TokenIssuer{
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// IssueInstructorToken issues the instructor's token for a room: full media
// grants, instructor-flagged metadata.
func (i *TokenIssuer) IssueInstructorToken(roomName, identity string) (CapabilityToken, error) {
	metadata := room.ParticipantMetadata{
		UserID:       identity,
		IsInstructor: true,
	}
	grants := mediatoken.Grants{
		Room:                 roomName,
		RoomJoin:             true,
		CanPublish:           true,
		CanSubscribe:         true,
		CanPublishData:       true,
		CanUpdateOwnMetadata: true,
	}
	return i.issue(roomName, identity, grants, metadata)
}

// IssueParticipantToken issues a participant's token: join, subscribe, and
// data grants but no publish. The embedded metadata starts with the hand down.
func (i *TokenIssuer) IssueParticipantToken(roomName, identity string, profile JoinProfile) (CapabilityToken, error) {
	metadata := room.ParticipantMetadata{
		UserID:       identity,
		Username:     profile.Username,
		AvatarURL:    profile.AvatarURL,
		IsInstructor: false,
		HandRaised:   false,
	}
	grants := mediatoken.Grants{
		Room:                 roomName,
		RoomJoin:             true,
		CanPublish:           false,
		CanSubscribe:         true,
		CanPublishData:       true,
		CanUpdateOwnMetadata: true,
	}
	return i.issue(roomName, identity, grants, metadata)
}

func (i *TokenIssuer) issue(
	roomName, identity string,
	grants mediatoken.Grants,
	metadata room.ParticipantMetadata,
) (CapabilityToken, error) {
	if roomName == "" {
		return CapabilityToken{}, apperrors.ValidationField("room_name", "room_name is required")
	}
	if identity == "" {
		return CapabilityToken{}, apperrors.ValidationField("identity", "identity is required")
	}
	if err := metadata.Validate(); err != nil {
		return CapabilityToken{}, fmt.Errorf("validate embedded metadata: %w", err)
	}

	encoded, err := metadata.Encode()
	if err != nil {
		return CapabilityToken{}, fmt.Errorf("encode embedded metadata: %w", err)
	}

	expiresAt := i.now().Add(i.ttl)
	signed, err := mediatoken.New(i.apiKey, i.apiSecret).
		SetIdentity(identity).
		SetTTL(i.ttl).
		SetGrants(grants).
		SetMetadata(encoded).
		SignedString()
	if err != nil {
		return CapabilityToken{}, fmt.Errorf("issue capability token: %w", err)
	}

	return CapabilityToken{
		Token:     signed,
		Identity:  identity,
		RoomName:  roomName,
		Grants:    grants,
		Metadata:  metadata,
		ExpiresAt: expiresAt,
	}, nil
}
