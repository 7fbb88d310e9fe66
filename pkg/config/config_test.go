package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://superforce:pw@localhost:5432/superforce?sslmode=disable")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8089", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5, cfg.Database.MinConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5.0, cfg.Provider.RatePerSec)
	assert.Equal(t, "config/strategy/super_main_force_v1.yaml", cfg.StrategyConfigPath)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/superforce")
	t.Setenv("ENV", "testing123")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/superforce")
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("PROVIDER_RATE_PER_SEC", "2.5")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2.5, cfg.Provider.RatePerSec)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestGetEnvAsInt_Malformed(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	got := getEnvAsInt("DB_MAX_CONNS", 25)
	assert.Equal(t, 25, got, "malformed value should fall back to default")
}
