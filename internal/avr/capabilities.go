package avr

import "strings"

// Capability is one operation the resolver has determined is valid for a
// zone. Capabilities combine as a bitmask union.
type Capability uint16

const (
	CapPower Capability = 1 << iota
	CapVolumeSet
	CapVolumeStep
	CapMute
	CapSelectSource
	CapSelectSoundMode
	CapTrackSeek
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapPower, "power"},
	{CapVolumeSet, "volume_set"},
	{CapVolumeStep, "volume_step"},
	{CapMute, "mute"},
	{CapSelectSource, "select_source"},
	{CapSelectSoundMode, "select_sound_mode"},
	{CapTrackSeek, "track_seek"},
}

// Has reports whether all bits of other are present.
func (c Capability) Has(other Capability) bool { return c&other == other }

// Names returns the set as stable lowercase names for API responses.
func (c Capability) Names() []string {
	out := make([]string, 0, len(capabilityNames))
	for _, entry := range capabilityNames {
		if c.Has(entry.cap) {
			out = append(out, entry.name)
		}
	}
	return out
}

func (c Capability) String() string { return strings.Join(c.Names(), "|") }

// ResolveCapabilities derives the supported operations for a zone purely
// from which state fields the device has ever reported, with two static
// overrides:
//
//   - Sound mode has no per-zone state signal (the device does not report
//     it while powered off), so it is granted statically on the main zone
//     unless auto-query is disabled.
//   - Track seek maps to tuner preset stepping and needs the tuner as the
//     active source.
//
// No capability is ever granted from a default value; a field the zone has
// never reported contributes nothing until its first report arrives.
func ResolveCapabilities(zone ZoneID, state ZoneState, opts Options) Capability {
	var caps Capability
	if state.Power != nil {
		caps |= CapPower
	}
	if state.VolumeRaw != nil {
		caps |= CapVolumeSet | CapVolumeStep
	}
	if state.Muted != nil {
		caps |= CapMute
	}
	if state.SourceID != nil {
		caps |= CapSelectSource
	}
	if zone == ZoneMain && !opts.AutoQueryDisabled {
		caps |= CapSelectSoundMode
	}
	if state.SourceID != nil && *state.SourceID == SourceTuner {
		caps |= CapTrackSeek
	}
	return caps
}
