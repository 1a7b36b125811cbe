package avr

import (
	"errors"
	"fmt"
)

// CommandKind enumerates the operations the hub can issue. Commands are
// plain data (zone, kind, parameters) rather than closures so they can be
// validated, logged, and replayed in tests.
type CommandKind string

const (
	CmdTurnOn              CommandKind = "turn_on"
	CmdTurnOff             CommandKind = "turn_off"
	CmdSetVolume           CommandKind = "set_volume"
	CmdVolumeUp            CommandKind = "volume_up"
	CmdVolumeDown          CommandKind = "volume_down"
	CmdMuteOn              CommandKind = "mute_on"
	CmdMuteOff             CommandKind = "mute_off"
	CmdSelectSource        CommandKind = "select_source"
	CmdSelectListeningMode CommandKind = "select_listening_mode"
	CmdTunerNextPreset     CommandKind = "tuner_next_preset"
	CmdTunerPreviousPreset CommandKind = "tuner_previous_preset"
	CmdSelectTunerBand     CommandKind = "select_tuner_band"
	CmdSelectTunerPreset   CommandKind = "select_tuner_preset"
	CmdSetTunerFrequency   CommandKind = "set_tuner_frequency"
	CmdSetPanelLock        CommandKind = "set_panel_lock"
	CmdSetRemoteLock       CommandKind = "set_remote_lock"
	CmdSetDimmer           CommandKind = "set_dimmer"
	CmdSetToneSettings     CommandKind = "set_tone_settings"
	CmdSetChannelLevels    CommandKind = "set_channel_levels"
)

// Tuner bands accepted by CmdSelectTunerBand and CmdSetTunerFrequency.
const (
	TunerBandFM = "FM"
	TunerBandAM = "AM"
)

// FM/AM frequency limits, in MHz and kHz respectively.
const (
	FMFrequencyMin = 87.5
	FMFrequencyMax = 108.0
	AMFrequencyMin = 530.0
	AMFrequencyMax = 1700.0
)

// Speaker channel trim limits, in dB.
const (
	ChannelLevelMin = -12.0
	ChannelLevelMax = 12.0
)

// CommandParams carries the per-kind arguments. Only the fields the kind
// needs are read; validation rejects commands missing them.
type CommandParams struct {
	Volume      *int     `json:"volume,omitempty"`
	Source      *string  `json:"source,omitempty"`
	Mode        *string  `json:"mode,omitempty"`
	Band        *string  `json:"band,omitempty"`
	PresetClass *string  `json:"preset_class,omitempty"`
	Preset      *int     `json:"preset,omitempty"`
	Frequency   *float64 `json:"frequency,omitempty"`
	PanelLock   *string  `json:"panel_lock,omitempty"`
	RemoteLock  *bool    `json:"remote_lock,omitempty"`
	Dimmer      *string  `json:"dimmer,omitempty"`
	Tone        *string  `json:"tone,omitempty"`
	Treble      *int     `json:"treble,omitempty"`
	Bass        *int     `json:"bass,omitempty"`
	Channel     *string  `json:"channel,omitempty"`
	Level       *float64 `json:"level,omitempty"`
}

// Command is one imperative action against a zone.
type Command struct {
	Zone   ZoneID        `json:"zone"`
	Kind   CommandKind   `json:"kind"`
	Params CommandParams `json:"params"`
}

// Name identifies the command in logs and failure messages.
func (c Command) Name() string { return string(c.Kind) }

// commandSpec describes the static policy for one command kind.
type commandSpec struct {
	// requires is the capability the zone must expose, 0 for device-level
	// commands with no per-zone state signal.
	requires Capability
	// strict marks tuner-dependent commands that need the powered-on,
	// tuner-selected gate.
	strict bool
	// singleShot marks incremental commands that are never retried: a lost
	// step self-corrects on the next user action, a retried one double-steps.
	singleShot bool
	validate   func(p CommandParams) error
}

var errUnknownCommand = errors.New("unknown command kind")

var commandSpecs = map[CommandKind]commandSpec{
	CmdTurnOn:  {requires: CapPower},
	CmdTurnOff: {requires: CapPower},
	CmdSetVolume: {requires: CapVolumeSet, validate: func(p CommandParams) error {
		if p.Volume == nil {
			return errors.New("volume is required")
		}
		if *p.Volume < 0 {
			return fmt.Errorf("volume %d out of range", *p.Volume)
		}
		return nil
	}},
	CmdVolumeUp:   {requires: CapVolumeStep, singleShot: true},
	CmdVolumeDown: {requires: CapVolumeStep, singleShot: true},
	CmdMuteOn:     {requires: CapMute},
	CmdMuteOff:    {requires: CapMute},
	CmdSelectSource: {requires: CapSelectSource, validate: func(p CommandParams) error {
		return requireString(p.Source, "source")
	}},
	CmdSelectListeningMode: {requires: CapSelectSoundMode, validate: func(p CommandParams) error {
		return requireString(p.Mode, "mode")
	}},
	CmdTunerNextPreset:     {requires: CapTrackSeek, strict: true, singleShot: true},
	CmdTunerPreviousPreset: {requires: CapTrackSeek, strict: true, singleShot: true},
	CmdSelectTunerBand: {strict: true, validate: func(p CommandParams) error {
		_, _, err := bandRange(p.Band)
		return err
	}},
	CmdSelectTunerPreset: {strict: true, validate: func(p CommandParams) error {
		if err := requireString(p.PresetClass, "preset_class"); err != nil {
			return err
		}
		if p.Preset == nil || *p.Preset < 1 || *p.Preset > 9 {
			return errors.New("preset must be between 1 and 9")
		}
		return nil
	}},
	CmdSetTunerFrequency: {strict: true, validate: func(p CommandParams) error {
		min, max, err := bandRange(p.Band)
		if err != nil {
			return err
		}
		if p.Frequency == nil {
			return errors.New("frequency is required")
		}
		if *p.Frequency < min || *p.Frequency > max {
			return fmt.Errorf("frequency %.1f outside %s band %.1f-%.1f", *p.Frequency, *p.Band, min, max)
		}
		return nil
	}},
	CmdSetPanelLock: {validate: func(p CommandParams) error {
		return requireString(p.PanelLock, "panel_lock")
	}},
	CmdSetRemoteLock: {validate: func(p CommandParams) error {
		if p.RemoteLock == nil {
			return errors.New("remote_lock is required")
		}
		return nil
	}},
	CmdSetDimmer: {validate: func(p CommandParams) error {
		return requireString(p.Dimmer, "dimmer")
	}},
	CmdSetChannelLevels: {validate: func(p CommandParams) error {
		if err := requireString(p.Channel, "channel"); err != nil {
			return err
		}
		if p.Level == nil || *p.Level < ChannelLevelMin || *p.Level > ChannelLevelMax {
			return errors.New("level must be between -12 and 12")
		}
		return nil
	}},
	CmdSetToneSettings: {validate: func(p CommandParams) error {
		if err := requireString(p.Tone, "tone"); err != nil {
			return err
		}
		if p.Treble == nil || *p.Treble < -6 || *p.Treble > 6 {
			return errors.New("treble must be between -6 and 6")
		}
		if p.Bass == nil || *p.Bass < -6 || *p.Bass > 6 {
			return errors.New("bass must be between -6 and 6")
		}
		return nil
	}},
}

// Validate checks the kind is known and its parameters are complete and in
// range. Failures are structural faults, never retried.
func (c Command) Validate() error {
	spec, ok := commandSpecs[c.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCommand, c.Kind)
	}
	if spec.validate != nil {
		return spec.validate(c.Params)
	}
	return nil
}

func requireString(p *string, name string) error {
	if p == nil || *p == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func bandRange(band *string) (min, max float64, err error) {
	if band == nil {
		return 0, 0, errors.New("band is required")
	}
	switch *band {
	case TunerBandFM:
		return FMFrequencyMin, FMFrequencyMax, nil
	case TunerBandAM:
		return AMFrequencyMin, AMFrequencyMax, nil
	default:
		return 0, 0, fmt.Errorf("unknown tuner band %q", *band)
	}
}
