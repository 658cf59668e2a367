package config

import "time"

// SFUConfig contains the SFU endpoint, the shared credential pair, and the
// defaults applied to rooms the broker provisions.
type SFUConfig struct {
	// Endpoint is the base URL of the SFU control-plane API.
	Endpoint string `env:"ENDPOINT" envDefault:"http://localhost:7880"`

	// APIKey and APISecret are the credential pair shared with the SFU. Every
	// minted media token and every webhook signature is bound to them.
	APIKey    string `env:"API_KEY,required"`
	APISecret string `env:"API_SECRET,required"`

	// CapabilityTokenTTL bounds how long an issued media token can be used to
	// connect.
	CapabilityTokenTTL time.Duration `env:"CAPABILITY_TOKEN_TTL" envDefault:"2h"`

	// RoomMaxParticipants caps room occupancy; 0 leaves the SFU default.
	RoomMaxParticipants uint32 `env:"ROOM_MAX_PARTICIPANTS" envDefault:"100"`

	// RoomEmptyTimeout is how long the SFU keeps an empty room alive.
	RoomEmptyTimeout time.Duration `env:"ROOM_EMPTY_TIMEOUT" envDefault:"5m"`
}

// Sanitize applies guardrails to SFU configuration values.
func (c *SFUConfig) Sanitize() {
	if c.CapabilityTokenTTL <= 0 {
		c.CapabilityTokenTTL = 2 * time.Hour
	}
	if c.RoomEmptyTimeout <= 0 {
		c.RoomEmptyTimeout = 5 * time.Minute
	}
}

// ReconcilerConfig contains reconciler service configuration.
type ReconcilerConfig struct {
	// Interval is how often the reconciler sweeps the SFU's room list for
	// rooms whose class is gone or completed.
	Interval time.Duration `env:"RECONCILER_INTERVAL" envDefault:"1m"`
}

// Sanitize applies guardrails to reconciler configuration values.
func (c *ReconcilerConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
}
