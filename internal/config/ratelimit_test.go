package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, 60, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, time.Second, cfg.RefillInterval)
	require.Equal(t, "ip_route", cfg.KeyStrategy)
}

func TestLoadRateLimitConfigClampsNonsenseValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 10*time.Second, cfg.TTL, "TTL is raised to cover several refill intervals")
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.False(t, cfg.Methods["POST"])
	require.Equal(t, 30*time.Second, cfg.TTL)
	require.Equal(t, "route_query", cfg.KeyStrategy)
}
