package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/config"
	"github.com/classline/live-api/internal/ports"
)

func TestBuildIdentityProvider(t *testing.T) {
	t.Run("mock mode builds a working provider", func(t *testing.T) {
		prov := BuildIdentityProvider(AuthConfig{
			Auth: config.AuthConfig{
				Mode: config.AuthModeMock,
				DevAuth: config.DevAuthConfig{
					UserID: "dev-user",
					Name:   "Dev User",
					Email:  "dev@example.com",
				},
			},
		})
		require.NotNil(t, prov)

		_, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/auth/callback"})
		require.NoError(t, err)

		identity, err := prov.Exchange(context.Background(), ports.ExchangeInput{
			Code:  "dev",
			State: state,
			Nonce: nonce,
		})
		require.NoError(t, err)
		assert.Equal(t, "dev-user", identity.UserID)
	})

	t.Run("oauth mode without discovery url is disabled", func(t *testing.T) {
		prov := BuildIdentityProvider(AuthConfig{
			Auth: config.AuthConfig{
				Mode: config.AuthModeOAuth,
				OAuth: config.OAuthConfig{
					ClientID:     "live-api",
					ClientSecret: "live-api",
				},
			},
		})
		assert.Nil(t, prov)
	})

	t.Run("unknown mode is disabled", func(t *testing.T) {
		prov := BuildIdentityProvider(AuthConfig{
			Auth: config.AuthConfig{Mode: config.AuthMode("saml")},
		})
		assert.Nil(t, prov)
	})
}
