// Package provider defines the port every external flight-data source is
// adapted to. Adapters translate provider request parameters and response
// shapes into entity.Schedule records and airport codes.
package provider

import (
	"context"
	"fmt"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
)

// Capability names one query type a provider can answer
type Capability string

const (
	NearbyAirports    Capability = "nearby"
	IPNearbyAirports  Capability = "ip_nearby"
	RoutesFromAirport Capability = "routes"
	AirportSchedules  Capability = "schedules"
	FlightDuration    Capability = "duration"
	OperatingDates    Capability = "operating_dates"
)

// AllCapabilities lists every capability in a stable order
var AllCapabilities = []Capability{
	NearbyAirports, IPNearbyAirports, RoutesFromAirport, AirportSchedules, FlightDuration, OperatingDates,
}

// ScheduleQuery asks for the departures or arrivals of a single airport
type ScheduleQuery struct {
	Airport   string
	Direction entity.Direction
	// From is the local start of the window. Nil means now.
	From            *time.Time
	DurationMinutes int
	Cursor          string
}

// Page is one slice of a paginated result. An empty Next means the
// result is exhausted.
type Page struct {
	Schedules []entity.Schedule
	Next      string
}

// Provider is implemented by every adapter. Operations a source cannot
// answer return an error wrapping errs.ErrUnsupported.
type Provider interface {
	Name() string
	Capabilities() []Capability
	SearchNearbyAirports(ctx context.Context, lat, lon, radiusKm float64) ([]string, error)
	GetRoutesFromAirport(ctx context.Context, airport, date, cursor string) (Page, error)
	GetAirportSchedules(ctx context.Context, q ScheduleQuery) (Page, error)
	GetFlightDuration(ctx context.Context, src, dst string) (int, error)
	GetFlightOperatingDates(ctx context.Context, flightID, fromDate, toDate string) ([]time.Time, error)
}

// IPAirportSearcher is implemented by providers that can search nearby
// airports directly from a client IP address.
type IPAirportSearcher interface {
	SearchAirportsByIP(ctx context.Context, ip string, radiusKm float64) ([]string, error)
}

// Supports reports whether p declares capability c
func Supports(p Provider, c Capability) bool {
	for _, have := range p.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// Unsupported can be embedded by adapters to reject the operations they
// do not implement.
type Unsupported struct {
	ProviderName string
}

func (u Unsupported) unsupported(op string) error {
	return fmt.Errorf("%s %s: %w", u.ProviderName, op, errs.ErrUnsupported)
}

func (u Unsupported) SearchNearbyAirports(context.Context, float64, float64, float64) ([]string, error) {
	return nil, u.unsupported("nearby airports")
}

func (u Unsupported) GetRoutesFromAirport(context.Context, string, string, string) (Page, error) {
	return Page{}, u.unsupported("routes from airport")
}

func (u Unsupported) GetAirportSchedules(context.Context, ScheduleQuery) (Page, error) {
	return Page{}, u.unsupported("airport schedules")
}

func (u Unsupported) GetFlightDuration(context.Context, string, string) (int, error) {
	return 0, u.unsupported("flight duration")
}

func (u Unsupported) GetFlightOperatingDates(context.Context, string, string, string) ([]time.Time, error) {
	return nil, u.unsupported("operating dates")
}
