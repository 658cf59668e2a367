package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
)

// DefaultSessionTokenTTL bounds how long a session token authorizes calls.
const DefaultSessionTokenTTL = 4 * time.Hour

// sessionTokenClaims is the JWT claim set of a session token. The subject
// carries the user id; room, class, and scopes are custom claims.
type sessionTokenClaims struct {
	jwt.RegisteredClaims

	Room   string          `json:"room"`
	Class  string          `json:"class"`
	Scopes []session.Scope `json:"scopes"`
}

// TokenServiceOptions groups dependencies for TokenService.
type TokenServiceOptions struct {
	// Secret is the shared signing secret. Required.
	Secret []byte
	// TTL bounds token lifetime; DefaultSessionTokenTTL when zero.
	TTL time.Duration
	// Now overrides the clock; for tests.
	Now func() time.Time
}

// TokenService mints and verifies session tokens: compact signed claims
// binding a user to one room and class with a bounded lifetime and scope set.
// It is pure and stateless; nothing is stored server-side, the claims are
// reconstructed and verified on every call.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

const sessionTokenIssuer = "live-api"

// NewTokenService constructs a new TokenService.
func NewTokenService(opts TokenServiceOptions) *TokenService {
	if len(opts.Secret) == 0 {
		panic("session token secret is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		secret: opts.Secret,
		ttl:    ttl,
		now:    now,
	}
}

// Mint serializes and signs the claim set and returns the compact token.
func (s *TokenService) Mint(claims session.Claims) (string, error) {
	if claims.RoomName == "" {
		return "", apperrors.ValidationField("room_name", "room_name is required")
	}
	if claims.UserID == "" {
		return "", apperrors.ValidationField("user_id", "user_id is required")
	}
	if claims.ClassID == "" {
		return "", apperrors.ValidationField("class_id", "class_id is required")
	}

	now := s.now()
	expires := claims.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(s.ttl)
	}

	jwtClaims := sessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Room:   claims.RoomName,
		Class:  claims.ClassID,
		Scopes: claims.Scopes,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the claims.
// Absent, malformed, tampered, and expired tokens all fail with an
// Unauthenticated error.
func (s *TokenService) Verify(token string) (session.Claims, error) {
	if token == "" {
		return session.Claims{}, apperrors.Unauthenticated("session token is required")
	}

	var claims sessionTokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return session.Claims{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "invalid session token")
	}

	return session.Claims{
		RoomName:  claims.Room,
		UserID:    claims.Subject,
		ClassID:   claims.Class,
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
