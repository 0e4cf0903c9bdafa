package events

import "time"

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// Header keys attached to every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// BookingEvent is the payload emitted on booking lifecycle transitions.
// Consumers downstream (reporting, notifications) key off Type.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	Origin         string    `json:"origin,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	SuccessCount   int       `json:"success_count,omitempty"`
	TotalCount     int       `json:"total_count,omitempty"`
	CancelledCount int       `json:"cancelled_count,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
