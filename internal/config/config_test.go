package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, "nominatim", cfg.Geocode.Provider)
	assert.Equal(t, "us", cfg.Geocode.Country)
	assert.Equal(t, time.Second, cfg.Geocode.MinInterval)
	assert.Equal(t, 24*time.Hour, cfg.Geocode.CacheTTL)
	assert.Equal(t, 3, cfg.Geocode.MaxRetries)
	assert.Equal(t, "osrm", cfg.Routing.Provider)
	assert.False(t, cfg.Routing.RouteAwareMPG)
	assert.Equal(t, 6*time.Hour, cfg.Fuel.PriceTTL)
	assert.Equal(t, 10*time.Second, cfg.Providers.Timeout)
	assert.Empty(t, cfg.Relay.URL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("ROUTE_PROVIDER", " Google ")
	t.Setenv("GEOCODE_MIN_INTERVAL", "250ms")
	t.Setenv("ROUTE_AWARE_MPG", "true")
	t.Setenv("EIA_API_KEY", "secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerPort)
	assert.Equal(t, "google", cfg.Routing.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Geocode.MinInterval)
	assert.True(t, cfg.Routing.RouteAwareMPG)
	assert.Equal(t, "secret", cfg.Fuel.EIAAPIKey)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "GEOCODE_PROVIDER=google\nGOOGLE_MAPS_API_KEY=abc\nCORS_RELAY_URL=https://relay.test/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.Geocode.Provider)
	assert.Equal(t, "abc", cfg.Providers.GoogleMapsAPIKey)
	assert.Equal(t, "https://relay.test/", cfg.Relay.URL)
}
