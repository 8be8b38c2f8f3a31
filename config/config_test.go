package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv удаляет переменные на время теста: пустое значение envconfig
// не заменяет значением по умолчанию.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "DATABASE_URL", "SERVER_PORT", "LOG_LEVEL", "AUTO_START_MATCHES",
		"AUTO_START_INTERVAL", "CORS_ALLOWED_ORIGINS", "R2_ARCHIVE_PREFIX")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.AutoStartInterval)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
	assert.Equal(t, "standings", cfg.R2.ArchivePrefix)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "AUTO_START_MATCHES")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTO_START_INTERVAL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://copa.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.AutoStartInterval)
	assert.Equal(t, []string{"https://copa.example.com"}, cfg.CORSAllowedOrigins)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	base := Config{ServerPort: 8080, LogLevel: "info", AutoStartMatches: true, AutoStartInterval: time.Minute}

	bad := base
	bad.ServerPort = 70000
	assert.Error(t, bad.Validate())

	bad = base
	bad.AutoStartInterval = 10 * time.Millisecond
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())

	assert.NoError(t, base.Validate())
}
