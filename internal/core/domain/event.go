package domain

import "time"

// EventType names the lifecycle events the dispatcher emits toward the
// surrounding application. These are the only mutations the core
// performs on shared application state.
type EventType string

const (
	EventDisableScan       EventType = "DISABLE_SCAN"
	EventEnableScan        EventType = "ENABLE_SCAN"
	EventParseURISucceeded EventType = "PARSE_URI_SUCCEEDED"
)

// Event is an emitted dispatcher lifecycle event.
type Event struct {
	Type      EventType
	Payload   map[string]any
	EmittedAt time.Time
}
