package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings persistence backends.
const (
	SettingsBackendRedis    = "redis"
	SettingsBackendPostgres = "postgres"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	RateLimitPerMin   int           `envconfig:"APP_RATE_LIMIT" default:"300"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	CSRFSecret string        `envconfig:"CSRF_SECRET" required:"true"`

	SettingsBackend string `envconfig:"SETTINGS_BACKEND" default:"redis"`
	PGDSN           string `envconfig:"PG_DSN"`
	PGMaxConns      int32  `envconfig:"PG_MAX_CONNS" default:"4"`

	GatewayLatency  time.Duration `envconfig:"GATEWAY_LATENCY" default:"500ms"`
	DefaultTenantID string        `envconfig:"DEFAULT_TENANT_ID" default:"tenant-123"`
	TOTPIssuer      string        `envconfig:"TOTP_ISSUER" default:"Colloki Console"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	switch c.SettingsBackend {
	case SettingsBackendRedis:
	case SettingsBackendPostgres:
		if c.PGDSN == "" {
			return errors.New("PG_DSN is required for the postgres settings backend")
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.SettingsBackend)
	}
	if c.GatewayLatency < 0 {
		return errors.New("gateway latency must not be negative")
	}
	if c.DefaultTenantID == "" {
		return errors.New("default tenant must be provided")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
