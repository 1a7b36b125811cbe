package avr

// ZoneAvailable is the zone-wide availability gate: a zone accepts commands
// whenever the device-wide liveness holds, regardless of zone power - a
// zone that is off must still accept a power-on command. Recomputed on
// every read; there is no cached flag to go stale.
func ZoneAvailable(deviceAvailable bool, _ ZoneState) bool {
	return deviceAvailable
}

// ZoneStrictlyAvailable is the per-feature gate used by tuner-dependent
// operations: the device must be live AND the zone powered on with the
// tuner as its active source.
func ZoneStrictlyAvailable(deviceAvailable bool, state ZoneState) bool {
	if !deviceAvailable {
		return false
	}
	if state.Power == nil || !*state.Power {
		return false
	}
	return state.SourceID != nil && *state.SourceID == SourceTuner
}
