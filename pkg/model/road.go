package model

import "time"

// Road is a bookable linear capacity resource. Roads are created and edited
// through the admin surface only; the reservation path treats them as
// read-only.
type Road struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,min=1,max=200"`
	RoadType       string    `json:"road_type" bson:"road_type" validate:"required,min=1,max=50"`
	Country        string    `json:"country,omitempty" bson:"country,omitempty" validate:"omitempty,max=100"`
	Region         string    `json:"region,omitempty" bson:"region,omitempty" validate:"omitempty,max=100"`
	HourlyCapacity int       `json:"hourly_capacity" bson:"hourly_capacity" validate:"min=0"`
	// Geometry is opaque to the booking core; it is stored and returned
	// verbatim for the map collaborator.
	Geometry  string    `json:"geometry,omitempty" bson:"geometry,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type RoadUpdate struct {
	Name           string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	RoadType       string  `json:"road_type,omitempty" validate:"omitempty,min=1,max=50"`
	Country        *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Region         *string `json:"region,omitempty" validate:"omitempty,max=100"`
	HourlyCapacity *int    `json:"hourly_capacity,omitempty" validate:"omitempty,min=0"`
	Geometry       *string `json:"geometry,omitempty"`
}
