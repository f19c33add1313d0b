package config

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "postgresql+asyncpg://u:p@host/db?sslmode=require"

func TestLoader_Load(t *testing.T) {
	t.Run("Should fail validation when DATABASE_URL is missing", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := NewService().Load(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "URL")
	})

	t.Run("Should load defaults and environment", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testURL)
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("DEBUG", "true")
		t.Setenv("DB_CONNECT_TIMEOUT", "5s")

		cfg, err := NewService().Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, testURL, cfg.Database.URL.Value())
		assert.Equal(t, "debug", cfg.Runtime.LogLevel)
		assert.True(t, cfg.Runtime.Debug)
		assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
		assert.Equal(t, "username", cfg.Database.UsernameColumn)
		assert.Equal(t, "user", cfg.Database.UserTable)
		assert.True(t, cfg.UsesDefaultSecrets())
	})

	t.Run("Should let CLI source override environment", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testURL)
		t.Setenv("LOG_LEVEL", "info")
		svc := NewService()

		cfg, err := svc.Load(context.Background(), NewCLIProvider(map[string]any{
			"runtime.log_level": "warn",
		}))

		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Runtime.LogLevel)
		assert.Equal(t, SourceCLI, SourceOf(svc, "runtime.log_level"))
		assert.Equal(t, SourceEnv, SourceOf(svc, "database.url"))
		assert.Equal(t, SourceDefault, SourceOf(svc, "database.user_table"))
	})

	t.Run("Should reject invalid log level", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testURL)
		t.Setenv("LOG_LEVEL", "verbose")

		_, err := NewService().Load(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevel")
	})

	t.Run("Should reject username column that is not a plain identifier", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testURL)
		t.Setenv("DB_USERNAME_COLUMN", "user_name; DROP TABLE x")

		_, err := NewService().Load(context.Background())

		require.Error(t, err)
	})

	t.Run("Should read auth secrets from environment", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testURL)
		t.Setenv("AUTH_SECRET", "a")
		t.Setenv("BETTER_AUTH_SECRET", "b")

		cfg, err := NewService().Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "a", cfg.Auth.Secret.Value())
		assert.Equal(t, "b", cfg.Auth.BetterAuthSecret.Value())
		assert.False(t, cfg.UsesDefaultSecrets())
	})
}

func TestSensitiveString(t *testing.T) {
	t.Run("Should redact value in String and JSON", func(t *testing.T) {
		s := SensitiveString("hunter2")

		assert.Equal(t, "[REDACTED]", s.String())
		out, err := json.Marshal(struct{ P SensitiveString }{P: s})
		require.NoError(t, err)
		assert.NotContains(t, string(out), "hunter2")
		assert.Equal(t, "hunter2", s.Value())
	})

	t.Run("Should print empty for empty value", func(t *testing.T) {
		assert.Equal(t, "", SensitiveString("").String())
	})
}

func TestFields(t *testing.T) {
	t.Run("Should map every tagged field", func(t *testing.T) {
		m := EnvToPath()
		assert.Equal(t, "database.url", m["DATABASE_URL"])
		assert.Equal(t, "runtime.log_level", m["LOG_LEVEL"])
		assert.Equal(t, "runtime.debug", m["DEBUG"])
		assert.Equal(t, "auth.secret", m["AUTH_SECRET"])
		assert.Equal(t, "auth.better_auth_secret", m["BETTER_AUTH_SECRET"])
	})

	t.Run("Should mark secrets as sensitive", func(t *testing.T) {
		sensitive := make(map[string]bool)
		for _, f := range Fields() {
			sensitive[f.Path] = f.Sensitive
		}
		assert.True(t, sensitive["database.url"])
		assert.True(t, sensitive["auth.secret"])
		assert.False(t, sensitive["runtime.log_level"])
	})

	t.Run("Should render values with secrets redacted", func(t *testing.T) {
		cfg := Default()
		cfg.Database.URL = "postgresql://u:p@host/db"
		cfg.Database.ConnectTimeout = 5 * time.Second
		values := cfg.Values()
		assert.Equal(t, "user", values["database.user_table"])
		assert.Equal(t, "5s", values["database.connect_timeout"])
		assert.NotContains(t, values["database.url"], "u:p@")
		assert.NotContains(t, values["auth.secret"], DefaultSecret)
	})
}
