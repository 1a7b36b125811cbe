package avr

import "time"

// ZoneID identifies one independently controllable output of the receiver.
// Zone IDs are fixed at session construction; zones never appear or
// disappear at runtime.
type ZoneID string

const (
	// ZoneMain is the primary listening zone. Sound mode selection and the
	// main-zone volume calibration only apply here.
	ZoneMain ZoneID = "1"
	Zone2    ZoneID = "2"
	Zone3    ZoneID = "3"
	ZoneHD   ZoneID = "Z"
)

// SourceTuner is the source ID the receiver reports when a zone's input is
// the built-in tuner. Tuner preset seek and the strict availability gate
// key off this value.
const SourceTuner = "TUNER"

// ZoneState is the last-known semantic state of one zone. A nil field means
// the device has never reported that attribute for the zone - that absence
// is the sole signal the capability resolver uses, never a default value.
//
// VolumeRaw/VolumeMax may violate 0 <= raw <= max on some firmware; that is
// a device quirk and is tolerated, not rejected.
type ZoneState struct {
	Power         *bool
	VolumeRaw     *int
	VolumeMax     *int
	Muted         *bool
	SourceID      *string
	ListeningMode *string

	// UpdatedAt is the time the store last merged a report that changed
	// this zone. Zero until the first report arrives.
	UpdatedAt time.Time
}

// Clone returns a deep copy safe for concurrent use by callers.
func (s ZoneState) Clone() ZoneState {
	out := s
	out.Power = clonePtr(s.Power)
	out.VolumeRaw = clonePtr(s.VolumeRaw)
	out.VolumeMax = clonePtr(s.VolumeMax)
	out.Muted = clonePtr(s.Muted)
	out.SourceID = clonePtr(s.SourceID)
	out.ListeningMode = clonePtr(s.ListeningMode)
	return out
}

// VolumeLevel returns the zone volume scaled to 0..1, or 0 when either the
// raw volume or the max volume has never been reported.
func (s ZoneState) VolumeLevel() float64 {
	if s.VolumeRaw == nil || s.VolumeMax == nil || *s.VolumeMax == 0 {
		return 0
	}
	return float64(*s.VolumeRaw) / float64(*s.VolumeMax)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Report is a partial state update for one zone. Nil fields were not part
// of the report and must leave the stored value untouched.
type Report = ZoneState

// Outcome is the result of one command execution.
type Outcome string

const (
	// OutcomeConfirmed means the device accepted the command within the
	// attempt budget.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeExhausted means every attempt was ignored or dropped.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeRejected means the command was structurally invalid or the
	// session raised a fault; no retry was attempted past the failure.
	OutcomeRejected Outcome = "rejected"
)

// Options carries the static device configuration that influences
// capability resolution and retry policy. Loaded once at startup.
type Options struct {
	// AutoQueryDisabled mirrors the receiver's disable-auto-query setting.
	// When set, sound mode selection is withheld even on the main zone.
	AutoQueryDisabled bool
	// VolumeStepOnly marks receivers that only accept stepwise volume
	// changes; direct set_volume is then issued single-shot so a retry
	// cannot stack accidental double-steps.
	VolumeStepOnly bool
}
