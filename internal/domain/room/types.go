package room

// Package room contains domain-level types for SFU rooms and connected
// participants: room metadata, participant metadata, and permission grants.
// Mutations are expressed as pure old-state -> new-state functions so that the
// write path is a straight read, merge, write sequence.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/classline/live-api/internal/errors"
)

// Metadata is the room-level metadata blob stored in the SFU at creation time.
// It carries the facts downstream authorization needs without a registry read.
type Metadata struct {
	InstructorID string          `json:"instructor_id"`
	ClassID      string          `json:"class_id"`
	Features     map[string]bool `json:"features,omitempty"`
}

// Validate checks that the metadata carries the fields authorization depends on.
func (m Metadata) Validate() error {
	if m.InstructorID == "" {
		return apperrors.ValidationField("instructor_id", "instructor_id is required")
	}
	if m.ClassID == "" {
		return apperrors.ValidationField("class_id", "class_id is required")
	}
	return nil
}

// Encode serializes room metadata for storage in the SFU.
func (m Metadata) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode room metadata: %w", err)
	}
	return string(data), nil
}

// DecodeMetadata parses room metadata previously written by Encode.
func DecodeMetadata(raw string) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Metadata{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "decode room metadata")
	}
	return m, nil
}

// Limits are the numeric constraints applied to a room at creation time.
type Limits struct {
	// MaxParticipants caps connected identities; zero means unlimited.
	MaxParticipants uint32
	// EmptyTimeout is how long the SFU keeps an empty room alive before
	// garbage-collecting it.
	EmptyTimeout time.Duration
}

// Room is the SFU-side resource representing one live class's media session.
type Room struct {
	Name            string
	Metadata        Metadata
	MaxParticipants uint32
	NumParticipants uint32
	CreatedAt       time.Time
}

// ParticipantMetadata is the per-identity profile and ephemeral state stored in
// the SFU. Every field is named so merges cannot silently drop data.
type ParticipantMetadata struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	IsInstructor bool    `json:"is_instructor"`
	HandRaised   bool    `json:"hand_raised"`
}

// Validate checks the invariant fields of participant metadata.
func (m ParticipantMetadata) Validate() error {
	if m.UserID == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	if m.IsInstructor && m.HandRaised {
		return apperrors.Validation("hand_raised is not meaningful for instructors")
	}
	return nil
}

// Encode serializes participant metadata for storage in the SFU.
func (m ParticipantMetadata) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode participant metadata: %w", err)
	}
	return string(data), nil
}

// DecodeParticipantMetadata parses a participant metadata blob. Unknown fields
// are rejected so a schema drift surfaces at the boundary instead of being
// silently dropped on the next write.
func DecodeParticipantMetadata(raw string) (ParticipantMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var m ParticipantMetadata
	if err := dec.Decode(&m); err != nil {
		return ParticipantMetadata{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "decode participant metadata")
	}
	return m, nil
}

// DefaultParticipantMetadata synthesizes the scaffold used when a connected
// identity has no metadata yet (e.g., a participant whose token carried none).
func DefaultParticipantMetadata(identity string) ParticipantMetadata {
	return ParticipantMetadata{
		UserID:       identity,
		IsInstructor: false,
		HandRaised:   false,
	}
}

// WithHandRaised returns a copy of m with hand_raised set. All other fields are
// carried over untouched.
func WithHandRaised(m ParticipantMetadata, raised bool) ParticipantMetadata {
	m.HandRaised = raised
	return m
}

// Permissions is the SFU's live, mutable view of a connected identity's
// grants. It is independent of the grants baked into the capability token the
// identity originally joined with.
type Permissions struct {
	CanPublish        bool `json:"can_publish"`
	CanSubscribe      bool `json:"can_subscribe"`
	CanPublishData    bool `json:"can_publish_data"`
	CanUpdateMetadata bool `json:"can_update_metadata"`
}

// WithPublish returns a copy of p with CanPublish flipped to the given value,
// preserving every other flag.
func WithPublish(p Permissions, canPublish bool) Permissions {
	p.CanPublish = canPublish
	return p
}

// Participant is the SFU's record of a connected identity. Metadata is kept in
// its raw form here; the service layer decodes it at the merge boundary.
type Participant struct {
	Identity    string
	Metadata    string
	Permissions Permissions
	JoinedAt    time.Time
}
