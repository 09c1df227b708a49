package main

import (
	"time"

	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

// Config holds server configuration loaded from environment variables.
// envconfig fails fast at startup and names the missing required fields.
type Config struct {
	Port              int           `envconfig:"PORT" default:"8787"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	TokenStorePath    string        `envconfig:"TOKEN_STORE_PATH" default:"token_store.json"`
	WhoopClientID     string        `envconfig:"WHOOP_CLIENT_ID" required:"true"`
	WhoopClientSecret string        `envconfig:"WHOOP_CLIENT_SECRET" required:"true"`
	WhoopRedirectURI  string        `envconfig:"WHOOP_REDIRECT_URI" required:"true"`
	WhoopScope        string        `envconfig:"WHOOP_SCOPE" default:"offline read:recovery"`
	WhoopAuthURL      string        `envconfig:"WHOOP_AUTH_URL" default:"https://api.prod.whoop.com/oauth/oauth2/auth"`
	WhoopTokenURL     string        `envconfig:"WHOOP_TOKEN_URL" default:"https://api.prod.whoop.com/oauth/oauth2/token"`
	WhoopRecoveryURL  string        `envconfig:"WHOOP_RECOVERY_URL" default:"https://api.prod.whoop.com/developer/v2/recovery"`
	StateExpiry       time.Duration `envconfig:"STATE_EXPIRY" default:"10m"`
	UpstreamTimeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

func (c Config) whoopClientConfig() whoop.Config {
	return whoop.Config{
		ClientID:     c.WhoopClientID,
		ClientSecret: c.WhoopClientSecret,
		TokenURL:     c.WhoopTokenURL,
		RecoveryURL:  c.WhoopRecoveryURL,
		Timeout:      c.UpstreamTimeout,
	}
}
