package model

import "time"

// LineRequest is one requested reservation inside a booking. The slot is
// addressed either by id (a stored slot) or by road id + start time (a bucket
// that may not be materialized yet).
type LineRequest struct {
	RoadID    string     `json:"road_id" validate:"required"`
	SlotID    string     `json:"slot_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Quantity  int        `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
}

// CreateBookingRequest is the immutable request value handed to the
// coordinator; there is no server-side draft state.
type CreateBookingRequest struct {
	Origin      string        `json:"origin" validate:"required,max=200"`
	Destination string        `json:"destination" validate:"required,max=200"`
	Lines       []LineRequest `json:"lines" validate:"required,min=1,max=50,dive"`
}

type AvailabilityRequest struct {
	RoadIDs     []string   `json:"road_ids" validate:"required,min=1,max=50"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

type RegisterRequest struct {
	GivenNames string `json:"given_names" validate:"required,min=1,max=100"`
	LastName   string `json:"last_name" validate:"required,min=1,max=100"`
	Username   string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
