package avr

import (
	"errors"
	"fmt"
)

// ErrZoneNotFound is returned when a command or query names a zone the
// session never discovered.
var ErrZoneNotFound = errors.New("zone not found")

// ErrDeviceUnavailable is returned when the device-wide liveness gate is
// down; commands are rejected before any attempt.
var ErrDeviceUnavailable = errors.New("device unavailable")

// ErrCapabilityUnsupported is returned when a command targets an operation
// the zone has not (yet) been observed to support.
var ErrCapabilityUnsupported = errors.New("operation not supported by zone")

// ErrSourceNotFound is returned by the source table for unknown source IDs.
var ErrSourceNotFound = errors.New("source not found")

// ExhaustedError reports that every attempt of a retried command was
// ignored or dropped by the device.
type ExhaustedError struct {
	Command  string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("command %s unavailable after %d attempts", e.Command, e.Attempts)
}

// RejectedError wraps a structural fault: malformed input, an unavailable
// zone, or an unexpected error from the device session. Never retried.
type RejectedError struct {
	Command string
	Cause   error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Cause)
}

func (e *RejectedError) Unwrap() error { return e.Cause }
