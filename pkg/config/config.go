package config

import (
	"context"
	"time"
)

// Config is the process-wide configuration. It is built once at startup and
// handed by pointer to the components that need it.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Runtime  RuntimeConfig  `koanf:"runtime"  validate:"required"`
	Auth     AuthConfig     `koanf:"auth"`
}

// DatabaseConfig contains database connection configuration.
type DatabaseConfig struct {
	URL            SensitiveString `koanf:"url"             env:"DATABASE_URL"       validate:"required"       sensitive:"true"`
	ConnectTimeout time.Duration   `koanf:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	UsernameColumn string          `koanf:"username_column" env:"DB_USERNAME_COLUMN" validate:"sql_identifier"`
	UserTable      string          `koanf:"user_table"      env:"DB_USER_TABLE"      validate:"sql_identifier"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	LogLevel string `koanf:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogJSON  bool   `koanf:"log_json"  env:"LOG_JSON"`
	Debug    bool   `koanf:"debug"     env:"DEBUG"`
}

// AuthConfig holds the two signing secrets shared with the web backend.
// dbprobe only carries them so a misconfigured .env is caught early.
type AuthConfig struct {
	Secret           SensitiveString `koanf:"secret"             env:"AUTH_SECRET"        sensitive:"true"`
	BetterAuthSecret SensitiveString `koanf:"better_auth_secret" env:"BETTER_AUTH_SECRET" sensitive:"true"`
}

// DefaultSecret is the placeholder both auth secrets fall back to.
const DefaultSecret = "your-super-secret-key-change-this-in-production"

// Default returns the built-in configuration values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			UsernameColumn: "username",
			UserTable:      "user",
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
		Auth: AuthConfig{
			Secret:           DefaultSecret,
			BetterAuthSecret: DefaultSecret,
		},
	}
}

// UsesDefaultSecrets reports whether either auth secret is still the placeholder.
func (c *Config) UsesDefaultSecrets() bool {
	return c.Auth.Secret.Value() == DefaultSecret || c.Auth.BetterAuthSecret.Value() == DefaultSecret
}

// Service defines the configuration loading interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks the configuration against its struct tags.
	Validate(config *Config) error
}

// SourceType identifies where a configuration value came from.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Source provides configuration values keyed by nested maps.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}
