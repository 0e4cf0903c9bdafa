package model

import "time"

// Slot is one hourly capacity bucket on one road. ReservedCount is mutated
// only through the store's conditional updates; 0 <= ReservedCount <= Capacity
// holds at all times.
type Slot struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	RoadID        string    `json:"road_id" bson:"road_id"`
	RoadName      string    `json:"road_name,omitempty" bson:"road_name,omitempty"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time" bson:"end_time"`
	Capacity      int       `json:"capacity" bson:"capacity"`
	ReservedCount int       `json:"reserved_count" bson:"reserved_count"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Available reports whether the slot had spare capacity when it was read.
// It is a snapshot, not a hold; the reservation path re-checks atomically.
func (s *Slot) Available() bool {
	return s.ReservedCount < s.Capacity
}

// SlotView is the read-path projection served by availability queries.
// SlotID is empty for buckets that have never been booked and therefore have
// no stored document yet.
type SlotView struct {
	SlotID            string    `json:"slot_id,omitempty"`
	RoadID            string    `json:"road_id"`
	RoadName          string    `json:"road_name,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Available         bool      `json:"available"`
	Capacity          int       `json:"capacity"`
	AvailableCapacity int       `json:"available_capacity"`
}

type SlotUpdate struct {
	Capacity *int `json:"capacity,omitempty" validate:"omitempty,min=0"`
}
