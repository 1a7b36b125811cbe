package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneAvailable_TracksDeviceOnly(t *testing.T) {
	// Zone availability is device liveness alone; power and source are
	// irrelevant.
	off := ZoneState{Power: boolPtr(false), SourceID: strPtr("CD")}
	assert.True(t, ZoneAvailable(true, off))
	assert.False(t, ZoneAvailable(false, off))
	assert.True(t, ZoneAvailable(true, ZoneState{}))
}

func TestZoneStrictlyAvailable_RequiresPowerAndTuner(t *testing.T) {
	tunerOn := ZoneState{Power: boolPtr(true), SourceID: strPtr(SourceTuner)}
	assert.True(t, ZoneStrictlyAvailable(true, tunerOn))
	assert.False(t, ZoneStrictlyAvailable(false, tunerOn))

	tunerOff := ZoneState{Power: boolPtr(false), SourceID: strPtr(SourceTuner)}
	assert.False(t, ZoneStrictlyAvailable(true, tunerOff))

	cdOn := ZoneState{Power: boolPtr(true), SourceID: strPtr("CD")}
	assert.False(t, ZoneStrictlyAvailable(true, cdOn))
}

func TestZoneStrictlyAvailable_UnknownFieldsFailClosed(t *testing.T) {
	assert.False(t, ZoneStrictlyAvailable(true, ZoneState{}))
	assert.False(t, ZoneStrictlyAvailable(true, ZoneState{Power: boolPtr(true)}))
}

func TestZoneStrictlyAvailable_FlipsWithSource(t *testing.T) {
	store := NewStateStore([]ZoneID{Zone2})
	store.Apply(Zone2, Report{Power: boolPtr(true), SourceID: strPtr(SourceTuner)})

	state, _ := store.Snapshot(Zone2)
	assert.True(t, ZoneStrictlyAvailable(true, state))

	store.Apply(Zone2, Report{SourceID: strPtr("CD")})
	state, _ = store.Snapshot(Zone2)
	assert.False(t, ZoneStrictlyAvailable(true, state))
	// Zone-wide availability is untouched by the source change.
	assert.True(t, ZoneAvailable(true, state))
}
