package audit

// EventType represents the type of audit event.
type EventType string

const (
	EventCommandConfirmed EventType = "COMMAND_CONFIRMED"
	EventCommandExhausted EventType = "COMMAND_EXHAUSTED"
	EventCommandRejected  EventType = "COMMAND_REJECTED"
	EventRefreshFailed    EventType = "REFRESH_FAILED"
	EventSystemStartup    EventType = "SYSTEM_STARTUP"
)

// EventLevel represents the severity level of an audit event.
type EventLevel string

const (
	EventLevelInfo  EventLevel = "INFO"
	EventLevelWarn  EventLevel = "WARN"
	EventLevelError EventLevel = "ERROR"
)
