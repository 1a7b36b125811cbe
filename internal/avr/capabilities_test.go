package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCapabilities_EmptyStateMainZone(t *testing.T) {
	// A never-reported main zone still gets sound mode from the static
	// override; nothing else.
	caps := ResolveCapabilities(ZoneMain, ZoneState{}, Options{})
	assert.Equal(t, CapSelectSoundMode, caps)
}

func TestResolveCapabilities_EmptyStateSubZone(t *testing.T) {
	caps := ResolveCapabilities(Zone2, ZoneState{}, Options{})
	assert.Equal(t, Capability(0), caps)
}

func TestResolveCapabilities_PowerAfterFirstReport(t *testing.T) {
	state := ZoneState{Power: boolPtr(false)}
	caps := ResolveCapabilities(Zone3, state, Options{})
	assert.True(t, caps.Has(CapPower))
	assert.False(t, caps.Has(CapVolumeSet))
}

func TestResolveCapabilities_VolumeGrantsSetAndStep(t *testing.T) {
	state := ZoneState{VolumeRaw: intPtr(50)}
	caps := ResolveCapabilities(Zone2, state, Options{})
	assert.True(t, caps.Has(CapVolumeSet))
	assert.True(t, caps.Has(CapVolumeStep))
}

func TestResolveCapabilities_MuteAndSource(t *testing.T) {
	state := ZoneState{Muted: boolPtr(true), SourceID: strPtr("CD")}
	caps := ResolveCapabilities(Zone2, state, Options{})
	assert.True(t, caps.Has(CapMute))
	assert.True(t, caps.Has(CapSelectSource))
	assert.False(t, caps.Has(CapTrackSeek))
}

func TestResolveCapabilities_SoundModeWithheldWhenAutoQueryDisabled(t *testing.T) {
	caps := ResolveCapabilities(ZoneMain, ZoneState{}, Options{AutoQueryDisabled: true})
	assert.False(t, caps.Has(CapSelectSoundMode))
}

func TestResolveCapabilities_SoundModeNeverOnSubZones(t *testing.T) {
	state := ZoneState{Power: boolPtr(true), ListeningMode: strPtr("STEREO")}
	for _, zone := range []ZoneID{Zone2, Zone3, ZoneHD} {
		caps := ResolveCapabilities(zone, state, Options{})
		assert.False(t, caps.Has(CapSelectSoundMode), "zone %s", zone)
	}
}

func TestResolveCapabilities_TrackSeekRequiresTunerSource(t *testing.T) {
	tuner := ZoneState{SourceID: strPtr(SourceTuner)}
	assert.True(t, ResolveCapabilities(Zone2, tuner, Options{}).Has(CapTrackSeek))

	cd := ZoneState{SourceID: strPtr("CD")}
	assert.False(t, ResolveCapabilities(Zone2, cd, Options{}).Has(CapTrackSeek))
}

func TestResolveCapabilities_MonotonicAsFieldsArrive(t *testing.T) {
	// Capabilities only grow as more fields are reported for the first
	// time; switching the source away from the tuner is the lone exception
	// and is driven by a value change, not field absence.
	store := NewStateStore([]ZoneID{Zone2})

	snapshot := func() Capability {
		state, _ := store.Snapshot(Zone2)
		return ResolveCapabilities(Zone2, state, Options{})
	}

	prev := snapshot()
	reports := []Report{
		{Power: boolPtr(false)},
		{VolumeRaw: intPtr(60), VolumeMax: intPtr(185)},
		{Muted: boolPtr(false)},
		{SourceID: strPtr("CD")},
	}
	for _, report := range reports {
		store.Apply(Zone2, report)
		next := snapshot()
		assert.True(t, next.Has(prev), "capabilities regressed: %s -> %s", prev, next)
		prev = next
	}
}

func TestCapability_Names(t *testing.T) {
	caps := CapPower | CapMute | CapTrackSeek
	assert.Equal(t, []string{"power", "mute", "track_seek"}, caps.Names())
	assert.Equal(t, "power|mute|track_seek", caps.String())
}
