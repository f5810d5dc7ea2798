package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/fleetwatch/fleetwatch/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.StaleVehicleWindow)
	assert.Equal(t, 30*time.Second, cfg.VehicleListTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("STALE_VEHICLE_WINDOW", "6h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6*time.Hour, cfg.StaleVehicleWindow)
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("FLEETWATCH_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv("FLEETWATCH_TEST_MODE", "")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv("FLEETWATCH_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}
