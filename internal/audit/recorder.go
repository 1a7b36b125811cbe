package audit

import (
	"context"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/avr"
)

// CommandLogger implements the controller's CommandRecorder hook: every
// executed command lands in the audit log with its outcome and the request
// ID it originated from.
type CommandLogger struct {
	service *Service
}

// NewCommandLogger creates a CommandLogger backed by the audit service.
func NewCommandLogger(service *Service) *CommandLogger {
	return &CommandLogger{service: service}
}

// RecordCommand writes one audit event per command execution. Audit
// failures are swallowed: the command result already reached the caller
// and a broken audit trail must not fail the control path.
func (l *CommandLogger) RecordCommand(ctx context.Context, cmd avr.Command, outcome avr.Outcome, execErr error) {
	eventType := EventCommandConfirmed
	level := EventLevelInfo
	message := "command confirmed"

	switch outcome {
	case avr.OutcomeExhausted:
		eventType = EventCommandExhausted
		level = EventLevelError
		message = "command exhausted retry budget"
	case avr.OutcomeRejected:
		eventType = EventCommandRejected
		level = EventLevelWarn
		message = "command rejected"
	}

	payload := map[string]any{"outcome": string(outcome)}
	if execErr != nil {
		payload["error"] = execErr.Error()
	}

	zone := string(cmd.Zone)
	command := cmd.Name()
	input := WriteEventInput{
		Type:    string(eventType),
		Level:   &level,
		ZoneID:  &zone,
		Command: &command,
		Message: message,
		Payload: payload,
	}
	if requestID := api.RequestIDFromContext(ctx); requestID != "" {
		input.RequestID = &requestID
	}

	if _, err := l.service.RecordEvent(input); err != nil {
		l.service.logger.Printf("Failed to audit command %s: %v", command, err)
	}
}
