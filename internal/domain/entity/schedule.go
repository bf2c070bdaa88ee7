package entity

import (
	"fmt"
	"strings"
	"time"
)

// Direction selects which end of a flight a query is anchored on
type Direction string

const (
	Departure Direction = "Departure"
	Arrival   Direction = "Arrival"
)

// ParseDirection accepts the direction names case-insensitively
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "departure", "departures", "dep":
		return Departure, true
	case "arrival", "arrivals", "arr":
		return Arrival, true
	}
	return "", false
}

// Schedule is the canonical route record every provider converts into.
// FlightID is the natural key: one origin/destination pair per flight number.
type Schedule struct {
	FlightID     string     `json:"flight_id"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	Status       string     `json:"status,omitempty"`
	DepTime      string     `json:"dep_time"`
	ArrTime      string     `json:"arr_time"`
	ArrDayOffset int        `json:"arr_day_offset"`
	Airline      string     `json:"airline"`
	AircraftType string     `json:"aircraft_type,omitempty"`
	Operates     string     `json:"operates,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
	Source       string     `json:"source,omitempty"`
}

// ArrivalLabel renders the arrival time with its day offset, e.g. "01:15(+1)"
func (s Schedule) ArrivalLabel() string {
	if s.ArrDayOffset == 0 {
		return s.ArrTime
	}
	return fmt.Sprintf("%s(%+d)", s.ArrTime, s.ArrDayOffset)
}
