package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeDB_MainZoneCalibration(t *testing.T) {
	state := ZoneState{VolumeRaw: intPtr(121), VolumeMax: intPtr(185)}
	db, ok := VolumeDB(ZoneMain, state)
	require.True(t, ok)
	assert.InDelta(t, -20.0, db, 0.001) // 121/2 - 80.5
}

func TestVolumeDB_SubZoneCalibration(t *testing.T) {
	state := ZoneState{VolumeRaw: intPtr(61), VolumeMax: intPtr(81)}
	for _, zone := range []ZoneID{Zone2, Zone3, ZoneHD} {
		db, ok := VolumeDB(zone, state)
		require.True(t, ok, "zone %s", zone)
		assert.InDelta(t, -20.0, db, 0.001, "zone %s", zone) // 61 - 81
	}
}

func TestVolumeDB_UnreportedVolume(t *testing.T) {
	_, ok := VolumeDB(ZoneMain, ZoneState{})
	assert.False(t, ok)

	_, ok = VolumeDB(ZoneMain, ZoneState{VolumeRaw: intPtr(100)})
	assert.False(t, ok)
}

func TestVolumeLevel(t *testing.T) {
	state := ZoneState{VolumeRaw: intPtr(37), VolumeMax: intPtr(185)}
	assert.InDelta(t, 0.2, state.VolumeLevel(), 0.001)

	assert.Zero(t, ZoneState{}.VolumeLevel())
	assert.Zero(t, ZoneState{VolumeRaw: intPtr(10), VolumeMax: intPtr(0)}.VolumeLevel())
}

func TestVolumeLevel_ToleratesRawAboveMax(t *testing.T) {
	// Some firmware reports raw > max; the level just exceeds 1.
	state := ZoneState{VolumeRaw: intPtr(200), VolumeMax: intPtr(185)}
	assert.Greater(t, state.VolumeLevel(), 1.0)
}
