package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/classline/live-api/internal/ports"
	"github.com/classline/live-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions *service.ClassSessionService
	Tokens   *service.TokenService
	Webhooks *service.WebhookService
	// Optional: login flow. Nil disables the /auth routes; callers then bring
	// their own session tokens.
	Provider ports.IdentityProvider
	Registry ports.ClassRegistry
	// SFUAPISecret verifies webhook signatures.
	SFUAPISecret string
	// Session token lifetime for tokens minted by the login callback.
	SessionTokenTTL time.Duration
	CookieDomain    string
	Logger          *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	sessionHandlers := &SessionHandlers{Svc: services.Sessions, Logger: logger}
	registerSessionRoutes(mux, sessionHandlers, services.Tokens)

	if services.Webhooks != nil {
		webhookHandlers := &WebhookHandlers{
			Svc:       services.Webhooks,
			APISecret: services.SFUAPISecret,
			Logger:    logger,
		}
		mux.HandleFunc("POST /v1/webhooks/sfu", webhookHandlers.Receive)
	}

	if services.Provider != nil {
		authHandlers := &AuthHandlers{
			Provider:     services.Provider,
			Registry:     services.Registry,
			Tokens:       services.Tokens,
			TokenTTL:     services.SessionTokenTTL,
			CookieDomain: services.CookieDomain,
			Logger:       logger,
		}
		mux.HandleFunc("GET /auth/login", authHandlers.Login)
		mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// registerSessionRoutes mounts the session surface behind token verification.
func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers, verifier SessionVerifier) {
	authed := RequireSession(verifier)
	wrap := func(fn http.HandlerFunc) http.Handler {
		return authed(fn)
	}

	mux.Handle("POST /v1/sessions", wrap(h.Create))
	mux.Handle("DELETE /v1/sessions/{room}", wrap(h.End))
	mux.Handle("POST /v1/sessions/{room}/join", wrap(h.JoinParticipant))
	mux.Handle("POST /v1/sessions/{room}/join/instructor", wrap(h.JoinInstructor))
	mux.Handle("POST /v1/sessions/{room}/hand/raise", wrap(h.RaiseHand))
	mux.Handle("POST /v1/sessions/{room}/hand/lower", wrap(h.LowerHand))
	mux.Handle("POST /v1/sessions/{room}/speakers", wrap(h.InviteToSpeak))
	mux.Handle("DELETE /v1/sessions/{room}/speakers/{identity}", wrap(h.RemoveFromSpeaking))
}
