package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"DB_DSN", "SESSION_SECRET", "SERVER_PORT", "LOG_LEVEL", "APP_ENV",
		"DB_CONNECT_ATTEMPTS", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	} {
		t.Setenv(k, kv[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_DSN":         "postgres://audit@localhost/audit",
		"SESSION_SECRET": "secret",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Production)
	assert.Equal(t, 10, cfg.DBConnectAttempts)
	assert.NotEmpty(t, cfg.AdminUsername)
	assert.NotEmpty(t, cfg.AdminPassword)
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_DSN":              "postgres://audit@db/audit",
		"SESSION_SECRET":      "secret",
		"SERVER_PORT":         "9000",
		"LOG_LEVEL":           "debug",
		"APP_ENV":             "development",
		"DB_CONNECT_ATTEMPTS": "3",
		"ADMIN_USERNAME":      "root@audit.local",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Production)
	assert.Equal(t, 3, cfg.DBConnectAttempts)
	assert.Equal(t, "root@audit.local", cfg.AdminUsername)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{"SESSION_SECRET": "s"}},
		{"missing secret", map[string]string{"DB_DSN": "postgres://x"}},
		{"bad attempts", map[string]string{"DB_DSN": "postgres://x", "SESSION_SECRET": "s", "DB_CONNECT_ATTEMPTS": "zero"}},
		{"negative attempts", map[string]string{"DB_DSN": "postgres://x", "SESSION_SECRET": "s", "DB_CONNECT_ATTEMPTS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
