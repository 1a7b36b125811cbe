// Package scheduler owns the hub's periodic work: the state refresh cadence
// against the receiver and the nightly audit retention prune. Jobs run on a
// shared cron instance so startup and shutdown stay in one place.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avrhub/avr-hub-go/internal/audit"
)

// pruneSchedule runs the retention prune at 03:00 local time, when the
// receiver is most likely idle.
const pruneSchedule = "0 3 * * *"

// Refresher pulls fresh device state; the controller implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AuditTrail records refresh failures and deletes events past retention;
// the audit service implements it.
type AuditTrail interface {
	RecordEvent(input audit.WriteEventInput) (*audit.AuditEvent, error)
	Prune() (int64, error)
}

// Runner schedules the refresh cadence and the audit prune.
type Runner struct {
	logger          *log.Logger
	cron            *cron.Cron
	refresher       Refresher
	audits          AuditTrail
	refreshInterval time.Duration

	mu              sync.Mutex
	lastRefreshErr  error
	lastRefreshedAt time.Time
}

// NewRunner creates a runner. refreshInterval must be positive.
func NewRunner(logger *log.Logger, refresher Refresher, audits AuditTrail, refreshInterval time.Duration) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		logger:          logger,
		cron:            cron.New(),
		refresher:       refresher,
		audits:          audits,
		refreshInterval: refreshInterval,
	}
}

// Start registers the jobs and begins the cron loop. An immediate refresh
// primes the store so the API has state before the first tick.
func (r *Runner) Start() error {
	refreshSpec := fmt.Sprintf("@every %s", r.refreshInterval)
	if _, err := r.cron.AddFunc(refreshSpec, r.refresh); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	if r.audits != nil {
		if _, err := r.cron.AddFunc(pruneSchedule, r.prune); err != nil {
			return fmt.Errorf("schedule audit prune: %w", err)
		}
	}

	r.refresh()
	r.cron.Start()
	r.logger.Printf("Scheduler started (refresh every %s)", r.refreshInterval)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Println("Scheduler stopped")
}

// LastRefresh returns when the last successful refresh completed and the
// error from the most recent attempt, nil when it succeeded.
func (r *Runner) LastRefresh() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRefreshedAt, r.lastRefreshErr
}

func (r *Runner) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.refreshInterval)
	defer cancel()

	err := r.refresher.Refresh(ctx)

	r.mu.Lock()
	wasFailing := r.lastRefreshErr != nil
	r.lastRefreshErr = err
	if err == nil {
		r.lastRefreshedAt = time.Now().UTC()
	}
	r.mu.Unlock()

	if err == nil {
		return
	}
	r.logger.Printf("Refresh failed: %v", err)

	// One audit event per failure streak; the cadence would otherwise write
	// a row every tick while the device is down.
	if r.audits != nil && !wasFailing {
		level := audit.EventLevelError
		if _, recErr := r.audits.RecordEvent(audit.WriteEventInput{
			Type:    string(audit.EventRefreshFailed),
			Level:   &level,
			Message: fmt.Sprintf("state refresh failed: %v", err),
		}); recErr != nil {
			r.logger.Printf("Failed to record refresh failure: %v", recErr)
		}
	}
}

func (r *Runner) prune() {
	if _, err := r.audits.Prune(); err != nil {
		r.logger.Printf("Audit prune failed: %v", err)
	}
}
