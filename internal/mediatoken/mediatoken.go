package mediatoken

// Package mediatoken builds and verifies the signed access tokens the SFU
// accepts: capability tokens handed to participants at join time, admin tokens
// the control-plane client authenticates with, and the webhook tokens the SFU
// signs delivery payloads with. Tokens are HS256 JWTs signed with the shared
// SFU API secret.

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is applied when a token is built without an explicit TTL.
const DefaultTTL = 6 * time.Hour

// Grants describes what the bearer may do in the SFU. Grants are baked in at
// mint time and immutable for the life of the token; later permission changes
// happen against the participant's live connection, not by reissuing.
type Grants struct {
	// Room scopes the token to a single room.
	Room string `json:"room,omitempty"`
	// RoomJoin allows connecting to the room.
	RoomJoin bool `json:"room_join,omitempty"`
	// RoomAdmin allows control-plane operations (create/delete/list/mutate).
	RoomAdmin bool `json:"room_admin,omitempty"`
	// RoomList allows listing rooms.
	RoomList bool `json:"room_list,omitempty"`

	CanPublish           bool `json:"can_publish,omitempty"`
	CanSubscribe         bool `json:"can_subscribe,omitempty"`
	CanPublishData       bool `json:"can_publish_data,omitempty"`
	CanUpdateOwnMetadata bool `json:"can_update_own_metadata,omitempty"`
}

// Claims is the full JWT claim set of an SFU token.
type Claims struct {
	jwt.RegisteredClaims

	Grants Grants `json:"grants"`
	// Metadata is the participant metadata blob embedded at issuance.
	Metadata string `json:"metadata,omitempty"`
	// Sha256 carries the hex digest of a webhook body; only set on tokens the
	// SFU attaches to webhook deliveries.
	Sha256 string `json:"sha256,omitempty"`
}

// Token builds a single signed SFU token. Zero value is not usable; construct
// with New.
type Token struct {
	apiKey    string
	apiSecret string
	identity  string
	ttl       time.Duration
	grants    Grants
	metadata  string
	sha256sum string
	now       func() time.Time
}

// New creates a token builder for the given API key pair.
func New(apiKey, apiSecret string) *Token {
	return &Token{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

// SetIdentity sets the participant identity (JWT subject).
func (t *Token) SetIdentity(identity string) *Token {
	t.identity = identity
	return t
}

// SetTTL sets the token lifetime.
func (t *Token) SetTTL(ttl time.Duration) *Token {
	t.ttl = ttl
	return t
}

// SetGrants sets the grant set baked into the token.
func (t *Token) SetGrants(grants Grants) *Token {
	t.grants = grants
	return t
}

// SetMetadata embeds a participant metadata blob.
func (t *Token) SetMetadata(metadata string) *Token {
	t.metadata = metadata
	return t
}

// SetBody records the digest of a webhook body, making the token a webhook
// signature the receiver can check with VerifyWebhook.
func (t *Token) SetBody(body []byte) *Token {
	sum := sha256.Sum256(body)
	t.sha256sum = hex.EncodeToString(sum[:])
	return t
}

// SetNow overrides the clock; for tests.
func (t *Token) SetNow(now func() time.Time) *Token {
	t.now = now
	return t
}

// SignedString signs the token and returns its compact serialization.
func (t *Token) SignedString() (string, error) {
	if t.apiKey == "" || t.apiSecret == "" {
		return "", errors.New("api key and secret are required")
	}

	ttl := t.ttl
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.apiKey,
			Subject:   t.identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Grants:   t.grants,
		Metadata: t.metadata,
		Sha256:   t.sha256sum,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.apiSecret))
	if err != nil {
		return "", fmt.Errorf("sign media token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token's signature and expiry against the API secret and
// returns its claims.
func Parse(token, apiSecret string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("parse media token: %w", err)
	}
	return claims, nil
}

// VerifyWebhook verifies a webhook delivery: the bearer token must be signed
// with the API secret and its sha256 claim must match the body digest.
func VerifyWebhook(token, apiSecret string, body []byte) (Claims, error) {
	claims, err := Parse(token, apiSecret)
	if err != nil {
		return Claims{}, err
	}

	sum := sha256.Sum256(body)
	if claims.Sha256 != hex.EncodeToString(sum[:]) {
		return Claims{}, errors.New("webhook body digest mismatch")
	}
	return claims, nil
}
