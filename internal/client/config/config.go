// Package config loads runtime settings for the MeetDeck CLI.
//
// Sources are layered, later ones overriding earlier ones:
// defaults -> JSON file (-c/-config) -> environment -> command-line flags.
package config

import "time"

// Config holds runtime settings for the MeetDeck CLI.
type Config struct {
	// GatewayBaseURL is the MeetDeck auth gateway, e.g. "http://localhost:8080".
	GatewayBaseURL string `env:"MEETDECK_GATEWAY_URL"`

	// RequestTimeout bounds every gateway call, including the silent
	// token-refresh round trip.
	RequestTimeout time.Duration `env:"MEETDECK_REQUEST_TIMEOUT"`

	// DatabasePath is the SQLite file holding the encrypted token pair.
	DatabasePath string `env:"MEETDECK_DB_PATH"`

	// SecretPath is the device secret file the storage key derives from.
	SecretPath string `env:"MEETDECK_SECRET_PATH"`

	// OnlineCheckInterval is how often the CLI probes gateway reachability.
	OnlineCheckInterval time.Duration `env:"MEETDECK_ONLINE_CHECK_INTERVAL"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `env:"MEETDECK_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults for local development.
func (c *Config) LoadDefaults() {
	c.GatewayBaseURL = "http://localhost:8080"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "meetdeck.db"
	c.SecretPath = "meetdeck.secret"
	c.OnlineCheckInterval = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
