package entity

import "time"

const DefaultTravelMode = "flight"

// Trip owns an ordered list of legs
type Trip struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Legs      []TripLeg `json:"legs,omitempty"`
}

// TripLeg is keyed by (TripID, LegNo)
type TripLeg struct {
	TripID          uint       `json:"trip_id"`
	LegNo           int        `json:"leg_no"`
	Mode            string     `json:"mode"`
	OriginCity      string     `json:"origin_city,omitempty"`
	DestinationCity string     `json:"destination_city,omitempty"`
	LegStart        *time.Time `json:"leg_start,omitempty"`
	LegStop         *time.Time `json:"leg_stop,omitempty"`
	SavedAt         time.Time  `json:"saved_at"`
	Flight          *LegFlight `json:"flight,omitempty"`
}

// LegFlight attaches a schedule to a leg
type LegFlight struct {
	TripID   uint   `json:"trip_id"`
	LegNo    int    `json:"leg_no"`
	FlightID string `json:"flight_id"`
}
