package providers

import (
	"context"
	"fmt"
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
	AviationStackName  = "aviationstack"
	aviationStackLimit = 100
)

var excludedAirlineTypes = map[string]bool{
	"charter":    true,
	"historical": true,
	"cargo":      true,
	"private":    true,
}

// AviationStack adapts the AviationStack API: offset paginated route
// statistics, timetables, and the master data catalogue.
type AviationStack struct {
	provider.Unsupported
	api *caller
	now func() time.Time
}

// NewAviationStack creates the adapter authenticating with an access key
func NewAviationStack(accessKey string, opts Options) *AviationStack {
	params := url.Values{}
	params.Set("access_key", accessKey)
	return &AviationStack{
		Unsupported: provider.Unsupported{ProviderName: AviationStackName},
		api:         newCaller(AviationStackName, opts, nil, params),
		now:         time.Now,
	}
}

func (a *AviationStack) Name() string { return AviationStackName }

func (a *AviationStack) Capabilities() []provider.Capability {
	return []provider.Capability{provider.RoutesFromAirport, provider.AirportSchedules}
}

type avsPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// next returns the continuation offset, or "" once the listing is exhausted
func (p avsPagination) next() string {
	if p.Total > p.Limit+p.Offset && p.Limit > 0 {
		return strconv.Itoa(p.Limit + p.Offset)
	}
	return ""
}

func pageQuery(cursor string) (url.Values, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(aviationStackLimit))
	if cursor != "" {
		if _, err := strconv.Atoi(cursor); err != nil {
			return nil, fmt.Errorf("%w: offset %q", errs.ErrInvalidInput, cursor)
		}
		query.Set("offset", cursor)
	}
	return query, nil
}

type avsRoute struct {
	Departure struct {
		IATA string `json:"iata"`
		Time string `json:"time"`
	} `json:"departure"`
	Arrival struct {
		IATA string `json:"iata"`
		Time string `json:"time"`
	} `json:"arrival"`
	Airline struct {
		IATA string `json:"iata"`
	} `json:"airline"`
	Flight struct {
		Number flexString `json:"number"`
	} `json:"flight"`
}

func (r avsRoute) schedule() (entity.Schedule, bool) {
	airline := upper(r.Airline.IATA)
	number := strings.TrimSpace(string(r.Flight.Number))
	origin, destination := upper(r.Departure.IATA), upper(r.Arrival.IATA)
	if airline == "" || number == "" || !validAirportCode(origin) || !validAirportCode(destination) {
		return entity.Schedule{}, false
	}
	dep, err := utils.TimeOfDay(r.Departure.Time)
	if err != nil {
		return entity.Schedule{}, false
	}
	arr, err := utils.TimeOfDay(r.Arrival.Time)
	if err != nil {
		return entity.Schedule{}, false
	}
	return entity.Schedule{
		FlightID:     normalizeFlightID(airline + number),
		Origin:       origin,
		Destination:  destination,
		DepTime:      dep,
		ArrTime:      arr,
		ArrDayOffset: utils.DayOffset(r.Departure.Time, r.Arrival.Time, dep, arr),
		Airline:      airline,
		Source:       AviationStackName,
	}, true
}

// GetRoutesFromAirport lists the routes departing an airport. The date is
// ignored: the provider only knows its current route table.
func (a *AviationStack) GetRoutesFromAirport(ctx context.Context, airport, date, cursor string) (provider.Page, error) {
	airport = upper(airport)
	if !validAirportCode(airport) {
		return provider.Page{}, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, airport)
	}
	if date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			return provider.Page{}, err
		}
	}
	query, err := pageQuery(cursor)
	if err != nil {
		return provider.Page{}, err
	}
	query.Set("dep_iata", airport)

	var res struct {
		Pagination avsPagination `json:"pagination"`
		Data       []avsRoute    `json:"data"`
	}
	if err := a.api.getJSON(ctx, string(provider.RoutesFromAirport), "routes", query, &res); err != nil {
		return provider.Page{}, err
	}

	page := provider.Page{Next: res.Pagination.next()}
	for _, r := range res.Data {
		if s, ok := r.schedule(); ok {
			page.Schedules = append(page.Schedules, s)
		}
	}
	a.api.metrics.AddProviderRecords(AviationStackName, len(page.Schedules))
	return page, nil
}

type avsTimetableEntry struct {
	Status    string `json:"status"`
	Departure struct {
		IATACode      string `json:"iataCode"`
		ScheduledTime string `json:"scheduledTime"`
	} `json:"departure"`
	Arrival struct {
		IATACode      string `json:"iataCode"`
		ScheduledTime string `json:"scheduledTime"`
	} `json:"arrival"`
	Aircraft struct {
		ModelCode string `json:"modelCode"`
	} `json:"aircraft"`
	Airline struct {
		IATACode string `json:"iataCode"`
	} `json:"airline"`
	Flight struct {
		Number     flexString `json:"number"`
		IATANumber string     `json:"iataNumber"`
	} `json:"flight"`
}

func (e avsTimetableEntry) schedule() (entity.Schedule, bool) {
	airline := upper(e.Airline.IATACode)
	id := normalizeFlightID(e.Flight.IATANumber)
	if id == "" && airline != "" && e.Flight.Number != "" {
		id = normalizeFlightID(airline + string(e.Flight.Number))
	}
	origin, destination := upper(e.Departure.IATACode), upper(e.Arrival.IATACode)
	if id == "" || airline == "" || !validAirportCode(origin) || !validAirportCode(destination) {
		return entity.Schedule{}, false
	}
	dep, err := utils.TimeOfDay(e.Departure.ScheduledTime)
	if err != nil {
		return entity.Schedule{}, false
	}
	arr, err := utils.TimeOfDay(e.Arrival.ScheduledTime)
	if err != nil {
		return entity.Schedule{}, false
	}
	return entity.Schedule{
		FlightID:     id,
		Origin:       origin,
		Destination:  destination,
		Status:       e.Status,
		DepTime:      dep,
		ArrTime:      arr,
		ArrDayOffset: utils.DayOffset(e.Departure.ScheduledTime, e.Arrival.ScheduledTime, dep, arr),
		Airline:      airline,
		AircraftType: upper(e.Aircraft.ModelCode),
		Source:       AviationStackName,
	}, true
}

// GetAirportSchedules reads the current timetable, or the future schedule
// when the window starts after today
func (a *AviationStack) GetAirportSchedules(ctx context.Context, q provider.ScheduleQuery) (provider.Page, error) {
	airport := upper(q.Airport)
	if !validAirportCode(airport) {
		return provider.Page{}, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, q.Airport)
	}
	query, err := pageQuery(q.Cursor)
	if err != nil {
		return provider.Page{}, err
	}
	query.Set("iataCode", airport)
	if q.Direction == entity.Arrival {
		query.Set("type", "arrival")
	} else {
		query.Set("type", "departure")
	}

	path := "timetable"
	today := a.now().Format(utils.DateLayout)
	if q.From != nil && q.From.Format(utils.DateLayout) > today {
		path = "flightsFuture"
		query.Set("date", q.From.Format(utils.DateLayout))
	}

	var res struct {
		Pagination avsPagination       `json:"pagination"`
		Data       []avsTimetableEntry `json:"data"`
	}
	if err := a.api.getJSON(ctx, string(provider.AirportSchedules), path, query, &res); err != nil {
		return provider.Page{}, err
	}

	page := provider.Page{Next: res.Pagination.next()}
	for _, e := range res.Data {
		if s, ok := e.schedule(); ok {
			page.Schedules = append(page.Schedules, s)
		}
	}
	a.api.metrics.AddProviderRecords(AviationStackName, len(page.Schedules))
	return page, nil
}

// ListCities reads one page of the city catalogue
func (a *AviationStack) ListCities(ctx context.Context, cursor string) (provider.CitiesPage, error) {
	query, err := pageQuery(cursor)
	if err != nil {
		return provider.CitiesPage{}, err
	}
	var res struct {
		Pagination avsPagination `json:"pagination"`
		Data       []struct {
			IATACode    string    `json:"iata_code"`
			CityName    string    `json:"city_name"`
			CountryISO2 string    `json:"country_iso2"`
			Timezone    string    `json:"timezone"`
			Latitude    flexFloat `json:"latitude"`
			Longitude   flexFloat `json:"longitude"`
		} `json:"data"`
	}
	if err := a.api.getJSON(ctx, "cities", "cities", query, &res); err != nil {
		return provider.CitiesPage{}, err
	}

	page := provider.CitiesPage{Next: res.Pagination.next()}
	for _, c := range res.Data {
		key := upper(c.IATACode)
		if !validAirportCode(key) || len(strings.TrimSpace(c.CountryISO2)) != 2 {
			continue
		}
		page.Cities = append(page.Cities, entity.City{
			Key:         key,
			Name:        strings.TrimSpace(c.CityName),
			CountryKey:  upper(c.CountryISO2),
			Timezone:    c.Timezone,
			Coordinates: entity.Coordinates{Latitude: float64(c.Latitude), Longitude: float64(c.Longitude)},
		})
	}
	return page, nil
}

// ListAirports reads one page of the airport catalogue
func (a *AviationStack) ListAirports(ctx context.Context, cursor string) (provider.AirportsPage, error) {
	query, err := pageQuery(cursor)
	if err != nil {
		return provider.AirportsPage{}, err
	}
	var res struct {
		Pagination avsPagination `json:"pagination"`
		Data       []struct {
			IATACode     string    `json:"iata_code"`
			AirportName  string    `json:"airport_name"`
			CityIATACode string    `json:"city_iata_code"`
			Latitude     flexFloat `json:"latitude"`
			Longitude    flexFloat `json:"longitude"`
		} `json:"data"`
	}
	if err := a.api.getJSON(ctx, "airports", "airports", query, &res); err != nil {
		return provider.AirportsPage{}, err
	}

	page := provider.AirportsPage{Next: res.Pagination.next()}
	for _, ap := range res.Data {
		key, city := upper(ap.IATACode), upper(ap.CityIATACode)
		if !validAirportCode(key) || !validAirportCode(city) {
			continue
		}
		page.Airports = append(page.Airports, entity.Airport{
			Key:         key,
			Name:        strings.TrimSpace(ap.AirportName),
			CityKey:     city,
			Coordinates: entity.Coordinates{Latitude: float64(ap.Latitude), Longitude: float64(ap.Longitude)},
		})
	}
	return page, nil
}

type avsAirline struct {
	AirlineName string     `json:"airline_name"`
	IATACode    string     `json:"iata_code"`
	ICAOCode    string     `json:"icao_code"`
	HubCode     string     `json:"hub_code"`
	Status      string     `json:"status"`
	FleetSize   flexString `json:"fleet_size"`
	Type        string     `json:"type"`
}

// valid keeps active scheduled passenger carriers with both codes
func (a avsAirline) valid() bool {
	if strings.TrimSpace(a.ICAOCode) == "" || strings.TrimSpace(a.IATACode) == "" {
		return false
	}
	if !strings.EqualFold(a.Status, "active") || strings.TrimSpace(string(a.FleetSize)) == "" {
		return false
	}
	for _, t := range strings.Split(strings.ToLower(a.Type), ",") {
		if excludedAirlineTypes[strings.TrimSpace(t)] {
			return false
		}
	}
	return true
}

// ListAirlines reads one page of the airline catalogue, keeping active
// scheduled passenger carriers only
func (a *AviationStack) ListAirlines(ctx context.Context, cursor string) (provider.AirlinesPage, error) {
	query, err := pageQuery(cursor)
	if err != nil {
		return provider.AirlinesPage{}, err
	}
	var res struct {
		Pagination avsPagination `json:"pagination"`
		Data       []avsAirline  `json:"data"`
	}
	if err := a.api.getJSON(ctx, "airlines", "airlines", query, &res); err != nil {
		return provider.AirlinesPage{}, err
	}

	page := provider.AirlinesPage{Next: res.Pagination.next()}
	for _, al := range res.Data {
		if !al.valid() {
			continue
		}
		hub := upper(al.HubCode)
		if !validAirportCode(hub) {
			hub = ""
		}
		page.Airlines = append(page.Airlines, entity.Airline{
			ICAO:       upper(al.ICAOCode),
			Name:       strings.TrimSpace(al.AirlineName),
			IATA:       upper(al.IATACode),
			HubAirport: hub,
		})
	}
	return page, nil
}
