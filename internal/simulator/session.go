// Package simulator provides an in-memory DeviceSession for development
// and tests. It honours the report/command shape of the real control
// channel, including silent command loss at a configurable rate, so the
// retry path can be exercised without hardware.
package simulator

import (
	"context"
	"log"
	"math/rand"
	"sync"

	"github.com/avrhub/avr-hub-go/internal/avr"
)

// Session is a simulated AV receiver.
type Session struct {
	mu        sync.Mutex
	zones     map[avr.ZoneID]*zoneSim
	available bool
	dropRate  float64
	rng       *rand.Rand
	onUpdate  func()
	logger    *log.Logger
}

type zoneSim struct {
	power         *bool
	volumeRaw     *int
	volumeMax     *int
	muted         *bool
	sourceID      *string
	listeningMode *string
}

// New creates a simulated session for the given zones. dropRate is the
// probability in [0, 1) that an issued command is silently ignored.
func New(zones []avr.ZoneID, dropRate float64, seed int64, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}

	sims := make(map[avr.ZoneID]*zoneSim, len(zones))
	for _, zone := range zones {
		sims[zone] = defaultZoneSim(zone)
	}

	return &Session{
		zones:     sims,
		available: true,
		dropRate:  dropRate,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    logger,
	}
}

// defaultZoneSim seeds each zone with a different report surface so
// capability detection has something to chew on out of the box.
func defaultZoneSim(zone avr.ZoneID) *zoneSim {
	off := false
	maxVol := 185
	switch zone {
	case avr.ZoneMain:
		vol := 121
		muted := false
		source := "CD"
		mode := "STEREO"
		return &zoneSim{power: &off, volumeRaw: &vol, volumeMax: &maxVol, muted: &muted, sourceID: &source, listeningMode: &mode}
	case avr.Zone2:
		vol := 81
		muted := false
		source := avr.SourceTuner
		return &zoneSim{power: &off, volumeRaw: &vol, volumeMax: &maxVol, muted: &muted, sourceID: &source}
	default:
		// Power-only zones: everything else stays unreported until the
		// firmware would send it.
		return &zoneSim{power: &off}
	}
}

// SetUpdateHook registers the push callback invoked after every accepted
// command, mirroring a real session's asynchronous state reports.
func (s *Session) SetUpdateHook(hook func()) {
	s.mu.Lock()
	s.onUpdate = hook
	s.mu.Unlock()
}

// SetAvailable toggles device-wide liveness.
func (s *Session) SetAvailable(available bool) {
	s.mu.Lock()
	s.available = available
	s.mu.Unlock()
}

// Available implements avr.DeviceSession.
func (s *Session) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// FetchReports implements avr.DeviceSession.
func (s *Session) FetchReports(_ context.Context) (map[avr.ZoneID]avr.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports := make(map[avr.ZoneID]avr.Report, len(s.zones))
	for zone, sim := range s.zones {
		reports[zone] = avr.Report{
			Power:         sim.power,
			VolumeRaw:     sim.volumeRaw,
			VolumeMax:     sim.volumeMax,
			Muted:         sim.muted,
			SourceID:      sim.sourceID,
			ListeningMode: sim.listeningMode,
		}
	}
	return reports, nil
}

// IssueCommand implements avr.DeviceSession. Commands are dropped with the
// configured probability; dropped commands return (false, nil) exactly as
// a lost command on the half-duplex channel would.
func (s *Session) IssueCommand(_ context.Context, cmd avr.Command) (bool, error) {
	s.mu.Lock()

	sim, ok := s.zones[cmd.Zone]
	if !ok {
		s.mu.Unlock()
		return false, avr.ErrZoneNotFound
	}

	if s.dropRate > 0 && s.rng.Float64() < s.dropRate {
		s.mu.Unlock()
		s.logger.Printf("sim: dropping command %s for zone %s", cmd.Name(), cmd.Zone)
		return false, nil
	}

	s.applyCommand(sim, cmd)
	hook := s.onUpdate
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true, nil
}

func (s *Session) applyCommand(sim *zoneSim, cmd avr.Command) {
	switch cmd.Kind {
	case avr.CmdTurnOn:
		on := true
		sim.power = &on
	case avr.CmdTurnOff:
		off := false
		sim.power = &off
	case avr.CmdSetVolume:
		if cmd.Params.Volume != nil {
			vol := clampVolume(*cmd.Params.Volume, sim.volumeMax)
			sim.volumeRaw = &vol
		}
	case avr.CmdVolumeUp:
		if sim.volumeRaw != nil {
			vol := clampVolume(*sim.volumeRaw+1, sim.volumeMax)
			sim.volumeRaw = &vol
		}
	case avr.CmdVolumeDown:
		if sim.volumeRaw != nil {
			vol := clampVolume(*sim.volumeRaw-1, sim.volumeMax)
			sim.volumeRaw = &vol
		}
	case avr.CmdMuteOn:
		muted := true
		sim.muted = &muted
	case avr.CmdMuteOff:
		muted := false
		sim.muted = &muted
	case avr.CmdSelectSource:
		if cmd.Params.Source != nil {
			source := *cmd.Params.Source
			sim.sourceID = &source
		}
	case avr.CmdSelectListeningMode:
		if cmd.Params.Mode != nil {
			mode := *cmd.Params.Mode
			sim.listeningMode = &mode
		}
	default:
		// Tuner, lock, dimmer, tone, and channel-level commands have no
		// ZoneState footprint; accepting them is enough.
	}
}

func clampVolume(vol int, max *int) int {
	if vol < 0 {
		return 0
	}
	if max != nil && vol > *max {
		return *max
	}
	return vol
}
