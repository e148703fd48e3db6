package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	require.Equal(t, "test-secret", cfg.TokenSecret)
	require.Equal(t, 120, cfg.RateLimitRequests)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_ADDR", ":9000")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.AppAddr)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.True(t, cfg.IsProduction())
}

func TestLoadConfigRequiresTokenSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
