package bootstrap

import (
	"log/slog"

	"github.com/classline/live-api/config"
	"github.com/classline/live-api/internal/adapters/devauth"
	"github.com/classline/live-api/internal/adapters/oidc"
	"github.com/classline/live-api/internal/ports"
)

// AuthConfig contains configuration for the identity provider.
type AuthConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildIdentityProvider creates an identity provider based on the configured
// auth mode. Returns nil if configuration is missing or invalid; the login
// routes are then disabled and callers must bring their own session tokens.
//
//nolint:ireturn // the caller only needs the port, not the concrete provider.
func BuildIdentityProvider(cfg AuthConfig) ports.IdentityProvider {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevProvider(cfg)

	case config.AuthModeOAuth:
		return buildOAuthProvider(cfg)

	default:
		return nil
	}
}

//nolint:ireturn
func buildDevProvider(cfg AuthConfig) ports.IdentityProvider {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID: cfg.Auth.DevAuth.UserID,
		Name:   cfg.Auth.DevAuth.Name,
		Email:  cfg.Auth.DevAuth.Email,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, login disabled", "error", err)
		}
		return nil
	}
	return prov
}

//nolint:ireturn
func buildOAuthProvider(cfg AuthConfig) ports.IdentityProvider {
	oauth := cfg.Auth.OAuth

	// Only enable when fully configured
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; login disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create oidc provider, login disabled", "error", err)
		}
		return nil
	}
	return prov
}
