package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/session"
	authmock "github.com/classline/live-api/internal/mocks/auth"
	"github.com/classline/live-api/internal/mocks/stores"
	"github.com/classline/live-api/internal/ports"
	"github.com/classline/live-api/internal/service"
)

type authFixture struct {
	handlers *AuthHandlers
	provider *authmock.MockIdentityProvider
	registry *stores.MemoryRegistry
	tokens   *service.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	provider := authmock.NewMockIdentityProvider()
	registry := stores.NewMemoryRegistry()
	tokens := service.NewTokenService(service.TokenServiceOptions{Secret: testSigningSecret})

	return &authFixture{
		handlers: &AuthHandlers{
			Provider: provider,
			Registry: registry,
			Tokens:   tokens,
			TokenTTL: 30 * time.Minute,
			Logger:   discardLogger(),
		},
		provider: provider,
		registry: registry,
		tokens:   tokens,
	}
}

func cookieValue(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %q not set", name)
	return ""
}

func TestAuthHandlers_Login(t *testing.T) {
	t.Run("redirects to the identity provider", func(t *testing.T) {
		f := newAuthFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/login?class_id=42", nil)
		w := httptest.NewRecorder()
		f.handlers.Login(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://mock-idp/auth", w.Header().Get("Location"))
		assert.NotEmpty(t, cookieValue(t, w, "oauth_state"))
		assert.NotEmpty(t, cookieValue(t, w, "oauth_nonce"))
		assert.Equal(t, "42", cookieValue(t, w, "login_class"))
	})

	t.Run("missing class_id", func(t *testing.T) {
		f := newAuthFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		w := httptest.NewRecorder()
		f.handlers.Login(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_class_id")
	})

	t.Run("absolute redirect_uri is replaced", func(t *testing.T) {
		f := newAuthFixture(t)
		var gotRedirect string
		f.provider.BeginFunc = func(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
			gotRedirect = in.RedirectURL
			return "https://mock-idp/auth", "state-1", "nonce-1", nil
		}

		r := httptest.NewRequest(http.MethodGet, "/auth/login?class_id=42&redirect_uri=https://evil.example/", nil)
		w := httptest.NewRecorder()
		f.handlers.Login(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/callback", gotRedirect)
	})
}

// callbackRequest builds a callback request carrying the cookies a login
// round trip would have set.
func callbackRequest(code, state, nonce, classID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?code="+code+"&state="+state, nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})
	r.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: nonce})
	r.AddCookie(&http.Cookie{Name: "login_class", Value: classID})
	return r
}

func TestAuthHandlers_Callback(t *testing.T) {
	t.Run("instructor gets moderate scope", func(t *testing.T) {
		f := newAuthFixture(t)
		f.registry.Seed(session.ClassSession{
			ClassID:      "42",
			InstructorID: f.provider.DefaultUser.UserID,
			Status:       session.StatusScheduled,
		})

		w := httptest.NewRecorder()
		f.handlers.Callback(w, callbackRequest("code-1", "state-1", "nonce-1", "42"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		result := decodeBody[LoginResult](t, w)
		assert.Equal(t, "class-42", result.RoomName)
		assert.Equal(t, "42", result.ClassID)
		assert.Contains(t, result.Scopes, session.ScopeModerate)

		claims, err := f.tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, f.provider.DefaultUser.UserID, claims.UserID)
		assert.Equal(t, "class-42", claims.RoomName)
		assert.True(t, claims.HasScope(session.ScopeModerate))
	})

	t.Run("participant gets self scope only", func(t *testing.T) {
		f := newAuthFixture(t)
		f.registry.Seed(session.ClassSession{
			ClassID:      "42",
			InstructorID: "someone-else",
			Status:       session.StatusLive,
		})

		w := httptest.NewRecorder()
		f.handlers.Callback(w, callbackRequest("code-1", "state-1", "nonce-1", "42"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		result := decodeBody[LoginResult](t, w)
		assert.NotContains(t, result.Scopes, session.ScopeModerate)
		assert.Contains(t, result.Scopes, session.ScopeSelf)
	})

	t.Run("state mismatch", func(t *testing.T) {
		f := newAuthFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1&state=state-1", nil)
		r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-other"})
		w := httptest.NewRecorder()
		f.handlers.Callback(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_state")
	})

	t.Run("missing class cookie", func(t *testing.T) {
		f := newAuthFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/callback?code=code-1&state=state-1", nil)
		r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
		r.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
		w := httptest.NewRecorder()
		f.handlers.Callback(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_class")
	})

	t.Run("unknown class", func(t *testing.T) {
		f := newAuthFixture(t)

		w := httptest.NewRecorder()
		f.handlers.Callback(w, callbackRequest("code-1", "state-1", "nonce-1", "404"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "class_not_found")
	})

	t.Run("missing code", func(t *testing.T) {
		f := newAuthFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-1", nil)
		w := httptest.NewRecorder()
		f.handlers.Callback(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_code")
	})
}
