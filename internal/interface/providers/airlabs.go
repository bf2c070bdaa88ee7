package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/utils"
)

const (
	AirLabsName  = "airlabs"
	airLabsLimit = 50
)

// AirLabs adapts the AirLabs data API. Every payload is wrapped in a
// "response" envelope; failures come back as an "error" object with a
// success status.
type AirLabs struct {
	provider.Unsupported
	api *caller
}

// NewAirLabs creates the adapter authenticating with an API key
func NewAirLabs(apiKey string, opts Options) *AirLabs {
	params := url.Values{}
	params.Set("api_key", apiKey)
	return &AirLabs{
		Unsupported: provider.Unsupported{ProviderName: AirLabsName},
		api:         newCaller(AirLabsName, opts, nil, params),
	}
}

func (a *AirLabs) Name() string { return AirLabsName }

func (a *AirLabs) Capabilities() []provider.Capability {
	return []provider.Capability{provider.NearbyAirports, provider.RoutesFromAirport, provider.AirportSchedules}
}

type airLabsEnvelope struct {
	Response json.RawMessage `json:"response"`
	Error    *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (a *AirLabs) get(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	var env airLabsEnvelope
	if err := a.api.getJSON(ctx, op, path, query, &env); err != nil {
		return err
	}
	if env.Error != nil {
		return fmt.Errorf("%s %s: %w: %s (%s)", AirLabsName, op, errs.ErrProviderUnavailable, env.Error.Message, env.Error.Code)
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("%s %s: %w: failed to decode response: %v", AirLabsName, op, errs.ErrProviderUnavailable, err)
	}
	return nil
}

// SearchNearbyAirports returns airports around a point
func (a *AirLabs) SearchNearbyAirports(ctx context.Context, lat, lon, radiusKm float64) ([]string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lng", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("distance", strconv.Itoa(int(radiusKm)))

	var res struct {
		Airports []struct {
			IATACode string `json:"iata_code"`
		} `json:"airports"`
	}
	if err := a.get(ctx, string(provider.NearbyAirports), "nearby", query, &res); err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(res.Airports))
	for _, ap := range res.Airports {
		if code := upper(ap.IATACode); validAirportCode(code) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

type airLabsFlight struct {
	AirlineIATA  string     `json:"airline_iata"`
	FlightIATA   string     `json:"flight_iata"`
	FlightNumber flexString `json:"flight_number"`
	DepIATA      string     `json:"dep_iata"`
	DepTime      string     `json:"dep_time"`
	ArrIATA      string     `json:"arr_iata"`
	ArrTime      string     `json:"arr_time"`
	Status       string     `json:"status"`
	AircraftICAO string     `json:"aircraft_icao"`
	Days         []string   `json:"days"`
}

// schedule validates and converts a record. An unmappable weekday is a
// contract change upstream and is returned as an error.
func (f airLabsFlight) schedule() (entity.Schedule, bool, error) {
	airline := upper(f.AirlineIATA)
	id := normalizeFlightID(f.FlightIATA)
	if id == "" && airline != "" && f.FlightNumber != "" {
		id = normalizeFlightID(airline + string(f.FlightNumber))
	}
	origin, destination := upper(f.DepIATA), upper(f.ArrIATA)
	if id == "" || airline == "" || !validAirportCode(origin) || !validAirportCode(destination) {
		return entity.Schedule{}, false, nil
	}
	dep, err := utils.TimeOfDay(f.DepTime)
	if err != nil {
		return entity.Schedule{}, false, nil
	}
	arr, err := utils.TimeOfDay(f.ArrTime)
	if err != nil {
		return entity.Schedule{}, false, nil
	}
	operates, err := utils.NormalizeWeekdays(f.Days)
	if err != nil {
		return entity.Schedule{}, false, fmt.Errorf("%s flight %s: %w", AirLabsName, id, err)
	}
	return entity.Schedule{
		FlightID:     id,
		Origin:       origin,
		Destination:  destination,
		Status:       f.Status,
		DepTime:      dep,
		ArrTime:      arr,
		ArrDayOffset: utils.DayOffset(f.DepTime, f.ArrTime, dep, arr),
		Airline:      airline,
		AircraftType: upper(f.AircraftICAO),
		Operates:     operates,
		Source:       AirLabsName,
	}, true, nil
}

func (a *AirLabs) flights(ctx context.Context, op, path string, query url.Values, cursor string) (provider.Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return provider.Page{}, fmt.Errorf("%w: offset %q", errs.ErrInvalidInput, cursor)
		}
		offset = n
	}
	query.Set("limit", strconv.Itoa(airLabsLimit))
	query.Set("offset", strconv.Itoa(offset))

	var res []airLabsFlight
	if err := a.get(ctx, op, path, query, &res); err != nil {
		return provider.Page{}, err
	}

	page := provider.Page{}
	if len(res) >= airLabsLimit {
		page.Next = strconv.Itoa(offset + len(res))
	}
	for _, f := range res {
		s, ok, err := f.schedule()
		if err != nil {
			return provider.Page{}, err
		}
		if ok {
			page.Schedules = append(page.Schedules, s)
		}
	}
	a.api.metrics.AddProviderRecords(AirLabsName, len(page.Schedules))
	return page, nil
}

// GetRoutesFromAirport lists the route table of an airport with its
// operating days. The date is validated but the route table is static.
func (a *AirLabs) GetRoutesFromAirport(ctx context.Context, airport, date, cursor string) (provider.Page, error) {
	airport = upper(airport)
	if !validAirportCode(airport) {
		return provider.Page{}, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, airport)
	}
	if date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			return provider.Page{}, err
		}
	}
	query := url.Values{}
	query.Set("dep_iata", airport)
	return a.flights(ctx, string(provider.RoutesFromAirport), "routes", query, cursor)
}

// GetAirportSchedules lists the flights of the next hours at an airport.
// AirLabs has no window parameter; the caller's time filter applies later.
func (a *AirLabs) GetAirportSchedules(ctx context.Context, q provider.ScheduleQuery) (provider.Page, error) {
	airport := upper(q.Airport)
	if !validAirportCode(airport) {
		return provider.Page{}, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, q.Airport)
	}
	query := url.Values{}
	if q.Direction == entity.Arrival {
		query.Set("arr_iata", airport)
	} else {
		query.Set("dep_iata", airport)
	}
	return a.flights(ctx, string(provider.AirportSchedules), "schedules", query, q.Cursor)
}

// ListCountries reads the country catalogue
func (a *AirLabs) ListCountries(ctx context.Context) ([]entity.Country, error) {
	var res []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := a.get(ctx, "countries", "countries", nil, &res); err != nil {
		return nil, err
	}
	countries := make([]entity.Country, 0, len(res))
	for _, c := range res {
		code := upper(c.Code)
		if len(code) != 2 || strings.TrimSpace(c.Name) == "" {
			continue
		}
		countries = append(countries, entity.Country{Key: code, Name: strings.TrimSpace(c.Name)})
	}
	return countries, nil
}
