package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envVars перечисляет все переменные, которые надо очищать между тестами
var envVars = []string{
	"BUNDLEGATE_DB_PATH", "BUNDLEGATE_SESSION_DB_PATH", "BUNDLEGATE_LISTEN_ADDR",
	"BUNDLEGATE_TELEGRAM_TOKEN", "BUNDLEGATE_JWT_SECRET", "BUNDLEGATE_JWT_TTL",
	"BUNDLEGATE_APP_ID_HEADER", "BUNDLEGATE_OK_RESPONSE", "BUNDLEGATE_BLOCKED_RESPONSE",
	"BUNDLEGATE_APPS_PER_PAGE", "BUNDLEGATE_TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bundlegate.sqlite", c.DBPath)
	assert.Equal(t, ":9000", c.ListenAddr)
	assert.Equal(t, "APP_ID", c.AppIDHeader)
	assert.Equal(t, "OK", c.OKResponse)
	assert.Equal(t, "BLOCKED", c.BlockedResponse)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 10, c.AppsPerPage)
	assert.Equal(t, time.UTC, c.Location)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUNDLEGATE_APP_ID_HEADER", "X-Bundle-Id")
	t.Setenv("BUNDLEGATE_JWT_TTL", "15m")
	t.Setenv("BUNDLEGATE_APPS_PER_PAGE", "5")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "X-Bundle-Id", c.AppIDHeader)
	assert.Equal(t, 15*time.Minute, c.JWTTTL)
	assert.Equal(t, 5, c.AppsPerPage)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad ttl", key: "BUNDLEGATE_JWT_TTL", value: "not-a-duration"},
		{name: "bad page size", key: "BUNDLEGATE_APPS_PER_PAGE", value: "zero"},
		{name: "zero page size", key: "BUNDLEGATE_APPS_PER_PAGE", value: "0"},
		{name: "bad timezone", key: "BUNDLEGATE_TIMEZONE", value: "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateServer(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Error(t, c.ValidateServer())

	c.TelegramToken = "123:abc"
	assert.Error(t, c.ValidateServer())

	c.JWTSecret = "secret"
	assert.NoError(t, c.ValidateServer())
}
