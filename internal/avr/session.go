package avr

import "context"

// DeviceSession is the boundary to the physical control channel. The
// session owns the connection, parses inbound state reports, and performs
// the per-command acknowledgement wait internally; the core never polls it
// mid-command.
//
// IssueCommand returns (false, nil) when the device dropped or ignored the
// command - the executor treats that as transient and retries. A non-nil
// error is a structural fault and is never retried.
type DeviceSession interface {
	IssueCommand(ctx context.Context, cmd Command) (accepted bool, err error)
	FetchReports(ctx context.Context) (map[ZoneID]Report, error)
	Available() bool
}
