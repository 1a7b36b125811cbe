package avr

// Volume-to-decibel calibration observed on the device family: the main
// zone maps raw/2 - 80.5 dB while the other zones map raw - 81 dB. Kept as
// device calibration data rather than a derived formula; confirm against
// device documentation before generalising.
const (
	mainZoneDBDivisor = 2
	mainZoneDBOffset  = -80.5
	subZoneDBOffset   = -81
)

// VolumeDB converts the zone's raw volume to decibels. The second return is
// false when the zone has never reported raw and max volume.
func VolumeDB(zone ZoneID, state ZoneState) (float64, bool) {
	if state.VolumeRaw == nil || state.VolumeMax == nil {
		return 0, false
	}
	if zone == ZoneMain {
		return float64(*state.VolumeRaw)/mainZoneDBDivisor + mainZoneDBOffset, true
	}
	return float64(*state.VolumeRaw) + subZoneDBOffset, true
}
