package events

import "encoding/json"

// GEM is the global event model. One is raised for every API request served,
// describing the action taken and its outcome.
type GEM struct {
	// ID is a GUID assigned when the event is created
	ID string `json:"eventId"`
	// SchemaVersion is the version of this event structure
	SchemaVersion string `json:"schemaVersion"`
	// EventType identifies the family of events this service emits
	EventType string `json:"eventType"`
	// SystemIP is the address of the server raising the event
	SystemIP string `json:"systemIp"`
	// XForwardedForIP carries the X-Forwarded-For header of the request
	XForwardedForIP string `json:"xForwardedForIp,omitempty"`
	// Timestamp is the unix time the event was created
	Timestamp int64 `json:"timestamp"`
	// Action names the operation performed, e.g. list, get, stats, search
	Action string `json:"action"`
	// Payload carries the request scoped detail
	Payload Payload `json:"payload"`
}

// Payload is the request scoped detail of a GEM.
type Payload struct {
	// SessionID correlates the event with the server logs for the request
	SessionID string `json:"sessionId"`
	// StatusCode is the HTTP status the request concluded with
	StatusCode int `json:"statusCode"`
	// Resource is the path of the request
	Resource string `json:"resource"`
	// Query is the raw query string of the request, if any
	Query string `json:"query,omitempty"`
	// RemoteAddr is the direct peer address of the request
	RemoteAddr string `json:"remoteAddr"`
}

// WithAction returns a copy of the event bound to the named operation.
func (e GEM) WithAction(action string) GEM {
	e.Action = action
	return e
}

// Yield satisfies the Event interface.
func (e GEM) Yield() []byte {
	b, _ := json.Marshal(e)
	return b
}

// IsSuccessful satisfies the Event interface. Status codes under 400 count
// as success.
func (e GEM) IsSuccessful() bool {
	return e.Payload.StatusCode > 0 && e.Payload.StatusCode < 400
}

// EventAction satisfies the Event interface.
func (e GEM) EventAction() string {
	return e.Action
}
