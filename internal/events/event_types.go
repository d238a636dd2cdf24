package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketsImported   EventType = "tickets_imported"
	EventTicketsAssigned   EventType = "tickets_assigned"
	EventAttendanceStarted EventType = "attendance_started"
	EventTicketsClosed     EventType = "tickets_closed"
	EventTicketsWrittenOff EventType = "tickets_written_off"
	EventDeliveryFailed    EventType = "delivery_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketsImportedPayload payload.
type TicketsImportedPayload struct {
	Count int `json:"count"`
}

// TicketsAssignedPayload payload.
type TicketsAssignedPayload struct {
	TicketIDs []string `json:"ticket_ids"`
	Manager   string   `json:"manager"`
	Updated   int      `json:"updated"`
}

// AttendanceStartedPayload payload.
type AttendanceStartedPayload struct {
	TicketIDs []string `json:"ticket_ids"`
	Updated   int      `json:"updated"`
}

// TicketsClosedPayload payload.
type TicketsClosedPayload struct {
	TicketIDs []string `json:"ticket_ids"`
	Updated   int      `json:"updated"`
	HasPhotos bool     `json:"has_photos"`
}

// TicketsWrittenOffPayload payload.
type TicketsWrittenOffPayload struct {
	TicketIDs []string `json:"ticket_ids"`
	Updated   int      `json:"updated"`
}

// DeliveryFailedPayload payload.
type DeliveryFailedPayload struct {
	TicketID string `json:"ticket_id,omitempty"`
	OSNumber string `json:"os_number,omitempty"`
	Reason   string `json:"reason"`
}
