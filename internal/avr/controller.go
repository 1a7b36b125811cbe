package avr

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// CommandRecorder receives the outcome of every executed command. Optional;
// the audit service implements it.
type CommandRecorder interface {
	RecordCommand(ctx context.Context, cmd Command, outcome Outcome, execErr error)
}

// Controller is the host-facing surface over the core: it validates and
// dispatches commands through the retrying executor and serves non-blocking
// state reads from the store. The controller itself never polls the device;
// reads see whatever the reconciliation path last merged.
type Controller struct {
	session  DeviceSession
	store    *StateStore
	exec     *Executor
	recon    *Reconciler
	opts     Options
	logger   *log.Logger
	recorder CommandRecorder
}

// NewController wires the core components together.
func NewController(session DeviceSession, store *StateStore, exec *Executor, recon *Reconciler, opts Options, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		session: session,
		store:   store,
		exec:    exec,
		recon:   recon,
		opts:    opts,
		logger:  logger,
	}
}

// SetRecorder installs the command audit hook.
func (c *Controller) SetRecorder(recorder CommandRecorder) {
	c.recorder = recorder
}

// Zones returns the discovered zones in stable order.
func (c *Controller) Zones() []ZoneID {
	zones := c.store.Zones()
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	return zones
}

// State returns a snapshot of the zone's last-known state.
func (c *Controller) State(zone ZoneID) (ZoneState, error) {
	state, ok := c.store.Snapshot(zone)
	if !ok {
		return ZoneState{}, fmt.Errorf("%w: %s", ErrZoneNotFound, zone)
	}
	return state, nil
}

// Capabilities resolves the currently supported operations for a zone.
func (c *Controller) Capabilities(zone ZoneID) (Capability, error) {
	state, err := c.State(zone)
	if err != nil {
		return 0, err
	}
	return ResolveCapabilities(zone, state, c.opts), nil
}

// Available reports device-wide liveness.
func (c *Controller) Available() bool {
	return c.session.Available()
}

// ZoneAvailable applies the zone-wide gate for a zone.
func (c *Controller) ZoneAvailable(zone ZoneID) bool {
	state, ok := c.store.Snapshot(zone)
	if !ok {
		return false
	}
	return ZoneAvailable(c.session.Available(), state)
}

// ZoneStrictlyAvailable applies the tuner-dependent gate for a zone.
func (c *Controller) ZoneStrictlyAvailable(zone ZoneID) bool {
	state, ok := c.store.Snapshot(zone)
	if !ok {
		return false
	}
	return ZoneStrictlyAvailable(c.session.Available(), state)
}

// Refresh triggers an explicit reconciliation pass.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.recon.Refresh(ctx)
}

// ExecuteCommand validates a command against the zone's availability and
// capabilities, then runs it through the executor with the kind's retry
// policy. Structural problems (unknown zone, missing capability, bad
// params, unavailable device) reject before any attempt reaches the
// session.
func (c *Controller) ExecuteCommand(ctx context.Context, cmd Command) (Outcome, error) {
	outcome, err := c.executeCommand(ctx, cmd)
	if c.recorder != nil {
		c.recorder.RecordCommand(ctx, cmd, outcome, err)
	}
	return outcome, err
}

func (c *Controller) executeCommand(ctx context.Context, cmd Command) (Outcome, error) {
	spec, ok := commandSpecs[cmd.Kind]
	if !ok {
		return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: fmt.Errorf("%w: %q", errUnknownCommand, cmd.Kind)}
	}
	if err := cmd.Validate(); err != nil {
		return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: err}
	}

	state, found := c.store.Snapshot(cmd.Zone)
	if !found {
		return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: fmt.Errorf("%w: %s", ErrZoneNotFound, cmd.Zone)}
	}

	available := c.session.Available()
	if !ZoneAvailable(available, state) {
		return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: ErrDeviceUnavailable}
	}
	if spec.strict && !ZoneStrictlyAvailable(available, state) {
		return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: fmt.Errorf("%w: tuner not active on zone %s", ErrCapabilityUnsupported, cmd.Zone)}
	}
	if spec.requires != 0 {
		caps := ResolveCapabilities(cmd.Zone, state, c.opts)
		if !caps.Has(spec.requires) {
			return OutcomeRejected, &RejectedError{Command: cmd.Name(), Cause: fmt.Errorf("%w: %s on zone %s", ErrCapabilityUnsupported, cmd.Kind, cmd.Zone)}
		}
	}

	retry := !spec.singleShot
	if cmd.Kind == CmdSetVolume && c.opts.VolumeStepOnly {
		// Step-only receivers emulate set_volume with repeated steps; a
		// retry would stack steps, so issue it once.
		retry = false
	}

	outcome, err := c.exec.Execute(ctx, cmd.Name(), func(ctx context.Context) (bool, error) {
		return c.session.IssueCommand(ctx, cmd)
	}, retry)

	if outcome == OutcomeConfirmed {
		// Pull the confirmed state promptly; a failed pull keeps the last
		// good snapshot and the next cadence tick catches up.
		if refreshErr := c.recon.Refresh(ctx); refreshErr != nil {
			c.logger.Printf("post-command refresh failed: %v", refreshErr)
		}
	}
	return outcome, err
}
