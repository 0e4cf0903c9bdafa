package model

import "time"

const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"

	LineStatusReserved  = "reserved"
	LineStatusFailed    = "failed"
	LineStatusCancelled = "cancelled"
)

// Booking is a user's aggregate reservation across one or more roads.
// Bookings are never deleted; cancellation is a status transition so the
// audit history survives.
type Booking struct {
	ID          string        `json:"booking_id" bson:"_id"`
	UserID      string        `json:"user_id" bson:"user_id"`
	Origin      string        `json:"origin" bson:"origin"`
	Destination string        `json:"destination" bson:"destination"`
	Status      string        `json:"status" bson:"status"`
	Lines       []BookingLine `json:"lines" bson:"lines"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// BookingLine is one road+slot reservation attempt inside a booking. A line
// in status "reserved" is the sole record of capacity consumed from its slot;
// cancellation restores exactly Quantity units.
type BookingLine struct {
	ID         string    `json:"line_id" bson:"line_id"`
	RoadID     string    `json:"road_id" bson:"road_id"`
	RoadName   string    `json:"road_name,omitempty" bson:"road_name,omitempty"`
	SlotID     string    `json:"slot_id,omitempty" bson:"slot_id,omitempty"`
	StartTime  time.Time `json:"start_time" bson:"start_time"`
	EndTime    time.Time `json:"end_time" bson:"end_time"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Status     string    `json:"status" bson:"status"`
	FailReason string    `json:"fail_reason,omitempty" bson:"fail_reason,omitempty"`
}

// BookingResult reports per-line outcomes of one coordinator invocation.
// SuccessCount < TotalCount is a legitimate partial success, not an error.
type BookingResult struct {
	BookingID    string        `json:"booking_id"`
	SuccessCount int           `json:"success_count"`
	TotalCount   int           `json:"total_count"`
	Lines        []BookingLine `json:"lines"`
}

type CancelResult struct {
	CancelledCount int `json:"cancelled_count"`
}

// BookingSummary is the list-view projection for a user's bookings.
type BookingSummary struct {
	BookingID   string     `json:"booking_id"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	RoadCount   int        `json:"road_count"`
	LineCount   int        `json:"line_count"`
}
