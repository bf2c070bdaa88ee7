package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/utils"
)

const (
	AeroDataBoxName = "aerodatabox"
	// aeroDataBoxMaxWindow is the widest schedule window one call accepts
	aeroDataBoxMaxWindow = 12 * time.Hour
	aeroDataBoxIPRadius  = 50
)

// AeroDataBox adapts the RapidAPI hosted AeroDataBox API. It is the
// realtime source: nearby airports, timed schedules for a date, flight
// durations and operating dates. Routes from an airport are not offered
// since its route statistics carry no flight numbers.
type AeroDataBox struct {
	provider.Unsupported
	api *caller
	now func() time.Time
}

// NewAeroDataBox creates the adapter authenticating with a RapidAPI key
func NewAeroDataBox(apiKey string, opts Options) *AeroDataBox {
	host := "aerodatabox.p.rapidapi.com"
	if u, err := url.Parse(opts.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	headers := http.Header{}
	headers.Set("x-rapidapi-key", apiKey)
	headers.Set("x-rapidapi-host", host)
	return &AeroDataBox{
		Unsupported: provider.Unsupported{ProviderName: AeroDataBoxName},
		api:         newCaller(AeroDataBoxName, opts, headers, nil),
		now:         time.Now,
	}
}

func (a *AeroDataBox) Name() string { return AeroDataBoxName }

func (a *AeroDataBox) Capabilities() []provider.Capability {
	return []provider.Capability{
		provider.NearbyAirports,
		provider.IPNearbyAirports,
		provider.AirportSchedules,
		provider.FlightDuration,
		provider.OperatingDates,
	}
}

type adbAirportSearch struct {
	Items []struct {
		IATA string `json:"iata"`
		ICAO string `json:"icao"`
		Name string `json:"name"`
	} `json:"items"`
}

func (s adbAirportSearch) codes() []string {
	codes := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if code := upper(item.IATA); validAirportCode(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// SearchNearbyAirports returns IATA codes of airports with flight
// information around a point
func (a *AeroDataBox) SearchNearbyAirports(ctx context.Context, lat, lon, radiusKm float64) ([]string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("radiusKm", strconv.Itoa(int(radiusKm)))
	query.Set("limit", "10")
	query.Set("withFlightInfoOnly", "true")

	var res adbAirportSearch
	if err := a.api.getJSON(ctx, string(provider.NearbyAirports), "airports/search/location", query, &res); err != nil {
		return nil, err
	}
	return res.codes(), nil
}

// SearchAirportsByIP searches airports near the location of a client IP
func (a *AeroDataBox) SearchAirportsByIP(ctx context.Context, ip string, radiusKm float64) ([]string, error) {
	if radiusKm <= 0 {
		radiusKm = aeroDataBoxIPRadius
	}
	query := url.Values{}
	query.Set("q", ip)
	query.Set("radiusKm", strconv.Itoa(int(radiusKm)))
	query.Set("limit", "10")
	query.Set("withFlightInfoOnly", "true")

	var res adbAirportSearch
	if err := a.api.getJSON(ctx, string(provider.IPNearbyAirports), "airports/search/ip", query, &res); err != nil {
		return nil, err
	}
	return res.codes(), nil
}

type adbMovement struct {
	Airport struct {
		IATA string `json:"iata"`
	} `json:"airport"`
	ScheduledTime struct {
		Local string `json:"local"`
		UTC   string `json:"utc"`
	} `json:"scheduledTime"`
}

type adbFlight struct {
	Number    string      `json:"number"`
	Status    string      `json:"status"`
	Departure adbMovement `json:"departure"`
	Arrival   adbMovement `json:"arrival"`
	Airline   struct {
		IATA string `json:"iata"`
	} `json:"airline"`
	Aircraft struct {
		Model string `json:"model"`
	} `json:"aircraft"`
}

// schedule validates the record and converts it; airport is the queried
// end, which the provider leaves out of that side's movement
func (f adbFlight) schedule(airport string, direction entity.Direction) (entity.Schedule, bool) {
	origin, destination := upper(f.Departure.Airport.IATA), upper(f.Arrival.Airport.IATA)
	if direction == entity.Departure {
		origin = airport
	} else {
		destination = airport
	}

	id := normalizeFlightID(f.Number)
	airline := upper(f.Airline.IATA)
	if id == "" || airline == "" || !validAirportCode(origin) || !validAirportCode(destination) {
		return entity.Schedule{}, false
	}
	dep, err := utils.TimeOfDay(f.Departure.ScheduledTime.Local)
	if err != nil {
		return entity.Schedule{}, false
	}
	arr, err := utils.TimeOfDay(f.Arrival.ScheduledTime.Local)
	if err != nil {
		return entity.Schedule{}, false
	}

	return entity.Schedule{
		FlightID:     id,
		Origin:       origin,
		Destination:  destination,
		Status:       f.Status,
		DepTime:      dep,
		ArrTime:      arr,
		ArrDayOffset: utils.DayOffset(f.Departure.ScheduledTime.Local, f.Arrival.ScheduledTime.Local, dep, arr),
		Airline:      airline,
		AircraftType: f.Aircraft.Model,
		Source:       AeroDataBoxName,
	}, true
}

// GetAirportSchedules lists departures or arrivals of one airport within
// a local time window of at most twelve hours. The API is window based,
// so the result is never paginated.
func (a *AeroDataBox) GetAirportSchedules(ctx context.Context, q provider.ScheduleQuery) (provider.Page, error) {
	airport := upper(q.Airport)
	if !validAirportCode(airport) {
		return provider.Page{}, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, q.Airport)
	}

	from := a.now()
	if q.From != nil {
		from = *q.From
	}
	window := time.Duration(q.DurationMinutes) * time.Minute
	if window <= 0 || window > aeroDataBoxMaxWindow {
		window = aeroDataBoxMaxWindow
	}
	to := from.Add(window)

	dir := "Departure"
	if q.Direction == entity.Arrival {
		dir = "Arrival"
	}
	query := url.Values{}
	query.Set("withLeg", "true")
	query.Set("direction", dir)
	query.Set("withCancelled", "false")
	query.Set("withCodeshared", "false")
	query.Set("withCargo", "false")
	query.Set("withPrivate", "false")
	query.Set("withLocation", "false")

	path := fmt.Sprintf("flights/airports/iata/%s/%s/%s", airport,
		from.Format(utils.LocalDateTimeLayout), to.Format(utils.LocalDateTimeLayout))

	var res struct {
		Departures []adbFlight `json:"departures"`
		Arrivals   []adbFlight `json:"arrivals"`
	}
	if err := a.api.getJSON(ctx, string(provider.AirportSchedules), path, query, &res); err != nil {
		return provider.Page{}, err
	}

	flights := res.Departures
	if q.Direction == entity.Arrival {
		flights = res.Arrivals
	}
	page := provider.Page{Schedules: make([]entity.Schedule, 0, len(flights))}
	for _, f := range flights {
		if s, ok := f.schedule(airport, q.Direction); ok {
			page.Schedules = append(page.Schedules, s)
		}
	}
	a.api.metrics.AddProviderRecords(AeroDataBoxName, len(page.Schedules))
	return page, nil
}

// GetFlightDuration returns the modelled flight time between two airports
func (a *AeroDataBox) GetFlightDuration(ctx context.Context, src, dst string) (int, error) {
	src, dst = upper(src), upper(dst)
	if !validAirportCode(src) || !validAirportCode(dst) {
		return 0, fmt.Errorf("%w: airport codes %q/%q", errs.ErrInvalidInput, src, dst)
	}
	query := url.Values{}
	query.Set("flightTimeModel", "ML01")

	var res struct {
		ApproxFlightTime string `json:"approxFlightTime"`
	}
	path := fmt.Sprintf("airports/iata/%s/distance-time/%s", src, dst)
	if err := a.api.getJSON(ctx, string(provider.FlightDuration), path, query, &res); err != nil {
		return 0, err
	}
	if res.ApproxFlightTime == "" {
		return 0, fmt.Errorf("%s duration: %w: response lacks flight time", AeroDataBoxName, errs.ErrProviderUnavailable)
	}
	minutes, err := utils.ParseDurationMinutes(res.ApproxFlightTime)
	if err != nil {
		return 0, fmt.Errorf("%s duration: %w: %v", AeroDataBoxName, errs.ErrProviderUnavailable, err)
	}
	return minutes, nil
}

// GetFlightOperatingDates lists the dates a flight number operates. With
// only a from-date the range is that single day; with only a to-date the
// range starts today.
func (a *AeroDataBox) GetFlightOperatingDates(ctx context.Context, flightID, fromDate, toDate string) ([]time.Time, error) {
	id := normalizeFlightID(flightID)
	if id == "" {
		return nil, fmt.Errorf("%w: flight id is required", errs.ErrInvalidInput)
	}

	from, to, err := utils.ParseDateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	switch {
	case from != nil && to == nil:
		to = from
	case from == nil && to != nil:
		today := a.now()
		today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		if to.Before(today) {
			return nil, fmt.Errorf("%w: %s before today", errs.ErrRange, toDate)
		}
		from = &today
	}

	path := fmt.Sprintf("flights/number/%s/dates", url.PathEscape(id))
	if from != nil {
		path += "/" + from.Format(utils.DateLayout) + "/" + to.Format(utils.DateLayout)
	}

	var raw []string
	if err := a.api.getJSON(ctx, string(provider.OperatingDates), path, nil, &raw); err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		if d, ok := utils.DateOf(strings.TrimSpace(r)); ok {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
