package avr

import (
	"context"
	"log"
)

// Reconciler merges fresh device reports into the state store. It runs on
// the cron cadence, on explicit API refresh, and as the session's push
// hook after accepted commands.
type Reconciler struct {
	session DeviceSession
	store   *StateStore
	logger  *log.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(session DeviceSession, store *StateStore, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{session: session, store: store, logger: logger}
}

// Refresh pulls the current report set and applies it per zone. A fetch
// failure fails soft: it logs and leaves the store's last good values in
// place - state is never cleared to unknown on a transient error. A hard
// connection loss is signalled by the session's availability flag, which
// the gates consume, not by wiping zone state.
func (r *Reconciler) Refresh(ctx context.Context) error {
	reports, err := r.session.FetchReports(ctx)
	if err != nil {
		r.logger.Printf("refresh failed, keeping last known state: %v", err)
		return err
	}

	for zone, report := range reports {
		if !r.store.Has(zone) {
			// Reports for zones the session never discovered are a session
			// bug; dropping one beats poisoning the store.
			r.logger.Printf("dropping report for undiscovered zone %s", zone)
			continue
		}
		r.store.Apply(zone, report)
	}
	return nil
}
