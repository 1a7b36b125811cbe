package avr

import (
	"fmt"
	"sync"
	"time"
)

// StateStore is the authoritative in-memory cache of per-zone state. It is
// written only by the reconciliation path and read by everything else.
// Reads never block longer than the time to copy a snapshot.
//
// Zone entries are created once at construction and never removed; writing
// to an unknown zone is a programming error and panics.
type StateStore struct {
	mu    sync.RWMutex
	zones map[ZoneID]*ZoneState

	watchMu  sync.Mutex
	watchers map[chan struct{}]struct{}
}

// NewStateStore creates a store with one empty entry per discovered zone.
func NewStateStore(zones []ZoneID) *StateStore {
	s := &StateStore{
		zones:    make(map[ZoneID]*ZoneState, len(zones)),
		watchers: make(map[chan struct{}]struct{}),
	}
	for _, z := range zones {
		s.zones[z] = &ZoneState{}
	}
	return s
}

// Zones returns the fixed set of zone IDs.
func (s *StateStore) Zones() []ZoneID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ZoneID, 0, len(s.zones))
	for z := range s.zones {
		out = append(out, z)
	}
	return out
}

// Has reports whether the zone was discovered at construction.
func (s *StateStore) Has(zone ZoneID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.zones[zone]
	return ok
}

// Apply merges a partial report into the zone's entry. Each non-nil report
// field overwrites the stored value; nil fields are left untouched, so a
// later report that omits an attribute never regresses it to unknown.
// Watchers are notified only when a field actually changed.
func (s *StateStore) Apply(zone ZoneID, report Report) {
	s.mu.Lock()
	state, ok := s.zones[zone]
	if !ok {
		s.mu.Unlock()
		panic(fmt.Sprintf("avr: Apply for undiscovered zone %q", zone))
	}

	changed := false
	changed = mergeField(&state.Power, report.Power) || changed
	changed = mergeField(&state.VolumeRaw, report.VolumeRaw) || changed
	changed = mergeField(&state.VolumeMax, report.VolumeMax) || changed
	changed = mergeField(&state.Muted, report.Muted) || changed
	changed = mergeField(&state.SourceID, report.SourceID) || changed
	changed = mergeField(&state.ListeningMode, report.ListeningMode) || changed
	if changed {
		state.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Snapshot returns a deep copy of the zone's state. The second return is
// false for zones that were never discovered.
func (s *StateStore) Snapshot(zone ZoneID) (ZoneState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.zones[zone]
	if !ok {
		return ZoneState{}, false
	}
	return state.Clone(), true
}

// Watch registers a change channel. The channel has a buffer of one and
// notifications coalesce: a pending signal is enough, waiters re-check
// their predicate against a fresh snapshot.
func (s *StateStore) Watch() chan struct{} {
	ch := make(chan struct{}, 1)
	s.watchMu.Lock()
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()
	return ch
}

// Unwatch removes a channel registered with Watch.
func (s *StateStore) Unwatch(ch chan struct{}) {
	s.watchMu.Lock()
	delete(s.watchers, ch)
	s.watchMu.Unlock()
}

func (s *StateStore) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
			// Signal already pending; coalesce.
		}
	}
}

// mergeField overwrites dst with a copy of src when src is present and
// differs. Returns whether dst changed.
func mergeField[T comparable](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}
