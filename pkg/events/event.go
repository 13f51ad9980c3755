// Package events defines the contract for events this service emits to the
// outside world (CRM sync, sales notifications).
package events

import "time"

// Event is the contract for all emitted events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "LEAD_CAPTURED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a simple valid implementation for composed events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// EventTypeLeadCaptured signals that a conversation produced a complete lead.
const EventTypeLeadCaptured = "lead.captured"

// NewLeadCaptured builds the outbound lead event. The payload carries
// everything a downstream CRM needs; the session itself stays private.
func NewLeadCaptured(leadID, sessionID, name, company, email, phone, preferredTime, summary string) Event {
	return BaseEvent{
		Type: EventTypeLeadCaptured,
		Data: map[string]interface{}{
			"lead_id":        leadID,
			"session_id":     sessionID,
			"name":           name,
			"company":        company,
			"email":          email,
			"phone":          phone,
			"preferred_time": preferredTime,
			"summary":        summary,
		},
		OccurredAt: time.Now().UTC(),
	}
}
