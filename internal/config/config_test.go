package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, []string{"1", "2", "3", "Z"}, cfg.Zones)
	assert.Equal(t, 4, cfg.CommandMaxAttempts)
	assert.Equal(t, 1000, cfg.CommandRetryDelayMs)
	assert.Equal(t, 10, cfg.RefreshIntervalSec)
	assert.False(t, cfg.DisableAutoQuery)
	assert.False(t, cfg.VolumeStepOnly)
	assert.Zero(t, cfg.SimDropRate)
	assert.Empty(t, cfg.DeviceAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("AVR_ZONES", "1, 2")
	t.Setenv("AVR_COMMAND_MAX_ATTEMPTS", "6")
	t.Setenv("AVR_SIM_DROP_RATE", "0.25")
	t.Setenv("AVR_VOLUME_STEP_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, cfg.Zones)
	assert.Equal(t, 6, cfg.CommandMaxAttempts)
	assert.InDelta(t, 0.25, cfg.SimDropRate, 0.0001)
	assert.True(t, cfg.VolumeStepOnly)
}

func TestLoad_RequiresStrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Setenv("AVR_COMMAND_MAX_ATTEMPTS", "0")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("AVR_COMMAND_MAX_ATTEMPTS", "")

	t.Setenv("AVR_REFRESH_INTERVAL_SEC", "0")
	_, err = Load()
	assert.Error(t, err)
	t.Setenv("AVR_REFRESH_INTERVAL_SEC", "")

	t.Setenv("AVR_SIM_DROP_RATE", "1.0")
	_, err = Load()
	assert.Error(t, err)
}
