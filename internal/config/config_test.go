package config_test

import (
	"testing"

	"github.com/mkadlec/theater-api/internal/config"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "theater")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "theater")

	// neutralize ambient overrides so defaults are observable
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE",
		"REDIS_ADDR", "REDIS_PASSWORD",
		"SMTP_HOST", "SMTP_PORT", "SMTP_FROM",
		"ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestNewDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.New()
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "localhost", cfg.Postgres.Host)
	require.Equal(t, 5432, cfg.Postgres.Port)
	require.Equal(t, "disable", cfg.Postgres.SSLMode)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Empty(t, cfg.SMTP.Host)
	require.Equal(t, "admin", cfg.Admin.Username)
}

func TestNewMissingPostgresUser(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := config.New()
	require.Error(t, err)
}

func TestNewInvalidServerPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := config.New()
	require.Error(t, err)
}

func TestNewOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ADMIN_USERNAME", "boss")
	t.Setenv("ADMIN_PASSWORD", "hunter2!")

	cfg, err := config.New()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	require.Equal(t, 2525, cfg.SMTP.Port)
	require.Equal(t, "boss", cfg.Admin.Username)
	require.Equal(t, "hunter2!", cfg.Admin.Password)
}
