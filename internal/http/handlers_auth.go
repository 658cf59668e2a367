package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/classline/live-api/internal/domain/auth"
	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// SessionMinter mints signed session tokens from verified claims.
type SessionMinter interface {
	Mint(claims session.Claims) (string, error)
}

// AuthHandlers provides HTTP handlers for the login flow. Login sends the
// caller to the identity provider; Callback exchanges the code, resolves the
// caller's role against the class registry, and answers with a session token
// bound to the class's room.
type AuthHandlers struct {
	Provider     ports.IdentityProvider
	Registry     ports.ClassRegistry
	Tokens       SessionMinter
	TokenTTL     time.Duration
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginResult is the JSON body returned by a successful callback.
type LoginResult struct {
	Token     string          `json:"token"`
	RoomName  string          `json:"room_name"`
	ClassID   string          `json:"class_id"`
	UserID    string          `json:"user_id"`
	Scopes    []session.Scope `json:"scopes"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Login handles the login initiation endpoint.
// GET /auth/login?class_id=<class>&redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	classID := r.URL.Query().Get("class_id")
	if classID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_class_id",
			Err:     errors.New("class_id is required"),
		})
		return
	}

	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = "/auth/callback"
	}
	// Allow only relative paths (no scheme/host), must start with "/".
	u, err := url.Parse(redirectURI)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		redirectURI = "/auth/callback"
	}

	authURL, state, nonce, err := h.Provider.Begin(r.Context(), ports.BeginInput{RedirectURL: redirectURI})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start login"),
		})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: state, Nonce: nonce, ClassID: classID})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}
	classCookie, err := r.Cookie("login_class")
	if err != nil || classCookie.Value == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_class",
			Err:     errors.New("login flow lost its class binding, restart from /auth/login"),
		})
		return
	}
	classID := classCookie.Value

	identity, err := h.Provider.Exchange(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login exchange failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Err:     errors.New("identity verification failed"),
		})
		return
	}

	class, err := h.Registry.GetClass(r.Context(), classID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			WriteError(w, ErrorParams{
				Code:    http.StatusNotFound,
				ErrCode: "class_not_found",
				Err:     errors.New("class not found"),
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "class lookup failed", "class_id", classID, "error", err)
		WriteDomainError(w, err)
		return
	}

	isInstructor := class.InstructorID == identity.UserID
	claims := session.Claims{
		RoomName:  session.RoomNameForClass(classID),
		UserID:    identity.UserID,
		ClassID:   classID,
		Scopes:    session.ScopesFor(isInstructor),
		ExpiresAt: h.tokenExpiry(identity),
	}
	token, err := h.Tokens.Mint(claims)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "mint session token failed", "error", err)
		WriteDomainError(w, err)
		return
	}

	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")
	h.clearCookie(w, r, "login_class")

	h.logger().InfoContext(r.Context(), "login completed",
		"class_id", classID, "user_id", identity.UserID, "instructor", isInstructor)
	WriteJSON(w, http.StatusOK, LoginResult{
		Token:     token,
		RoomName:  claims.RoomName,
		ClassID:   classID,
		UserID:    identity.UserID,
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt,
	})
}

// tokenExpiry picks the session token expiry: the configured TTL, capped by
// the IdP token's own expiry when that comes sooner.
func (h *AuthHandlers) tokenExpiry(identity domainauth.Identity) time.Time {
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	expires := time.Now().Add(ttl)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expires) {
		expires = identity.ExpiresAt
	}
	return expires
}

// oauthCookieParams groups values stored across the login round trip.
type oauthCookieParams struct {
	State   string
	Nonce   string
	ClassID string
}

// setOAuthCookies stores OAuth state, nonce, and the class binding in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    p.State,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_nonce",
		Value:    p.Nonce,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "login_class",
		Value:    p.ClassID,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting
// cookies to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
