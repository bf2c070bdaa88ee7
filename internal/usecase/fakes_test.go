package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/internal/domain/repository"
)

// memSchedules is an in-memory ScheduleRepository that counts calls
type memSchedules struct {
	mu      sync.Mutex
	rows    map[string]entity.Schedule
	finds   int
	upserts int
}

func newMemSchedules(rows ...entity.Schedule) *memSchedules {
	s := &memSchedules{rows: make(map[string]entity.Schedule)}
	for _, r := range rows {
		s.rows[r.FlightID] = r
	}
	return s
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *memSchedules) Find(_ context.Context, f repository.ScheduleFilter) ([]entity.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	var out []entity.Schedule
	for _, r := range s.rows {
		if len(f.Origins) > 0 && !contains(f.Origins, r.Origin) {
			continue
		}
		if len(f.Destinations) > 0 && !contains(f.Destinations, r.Destination) {
			continue
		}
		if f.MinDepTime != "" && r.DepTime < f.MinDepTime {
			continue
		}
		if f.MaxArrTime != "" && r.ArrTime > f.MaxArrTime {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepTime != out[j].DepTime {
			return out[i].DepTime < out[j].DepTime
		}
		return out[i].FlightID < out[j].FlightID
	})
	return out, nil
}

func (s *memSchedules) Upsert(_ context.Context, rows []entity.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	for _, r := range rows {
		s.rows[r.FlightID] = r
	}
	return nil
}

func (s *memSchedules) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok, nil
}

// memLocations is an in-memory LocationRepository
type memLocations struct {
	cities   map[string]entity.City
	airports map[string]entity.Airport
	boxCalls int
}

func newMemLocations(airports ...entity.Airport) *memLocations {
	l := &memLocations{cities: map[string]entity.City{}, airports: map[string]entity.Airport{}}
	for _, a := range airports {
		l.airports[a.Key] = a
	}
	return l
}

func (l *memLocations) GetAirport(_ context.Context, code string) (*entity.Airport, error) {
	a, ok := l.airports[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("airport %s: %w", code, errs.ErrNotFound)
	}
	return &a, nil
}

func (l *memLocations) GetAirports(_ context.Context, codes []string) ([]entity.Airport, error) {
	var out []entity.Airport
	for _, c := range codes {
		if a, ok := l.airports[strings.ToUpper(c)]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *memLocations) GetCity(_ context.Context, code string) (*entity.City, error) {
	c, ok := l.cities[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("city %s: %w", code, errs.ErrNotFound)
	}
	c.Airports = nil
	for _, a := range l.airports {
		if a.CityKey == c.Key {
			c.Airports = append(c.Airports, a)
		}
	}
	sort.Slice(c.Airports, func(i, j int) bool { return c.Airports[i].Key < c.Airports[j].Key })
	return &c, nil
}

func (l *memLocations) AirportsInBox(_ context.Context, box repository.BoundingBox) ([]entity.Airport, error) {
	l.boxCalls++
	var out []entity.Airport
	for _, a := range l.airports {
		c := a.Coordinates
		if c.Latitude >= box.MinLat && c.Latitude <= box.MaxLat && c.Longitude >= box.MinLon && c.Longitude <= box.MaxLon {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (l *memLocations) UpsertCountries(context.Context, []entity.Country) error { return nil }

func (l *memLocations) UpsertCities(_ context.Context, cities []entity.City) error {
	for _, c := range cities {
		l.cities[c.Key] = c
	}
	return nil
}

func (l *memLocations) UpsertAirports(_ context.Context, airports []entity.Airport) error {
	for _, a := range airports {
		l.airports[a.Key] = a
	}
	return nil
}

func (l *memLocations) UpsertAirlines(context.Context, []entity.Airline) error { return nil }

// memUoW runs transactions against the same in-memory repositories
type memUoW struct {
	schedules *memSchedules
	locations *memLocations
	txs       int
}

func (u *memUoW) Schedules() repository.ScheduleRepository { return u.schedules }
func (u *memUoW) Locations() repository.LocationRepository { return u.locations }
func (u *memUoW) Users() repository.UserRepository         { return nil }
func (u *memUoW) Trips() repository.TripRepository         { return nil }

func (u *memUoW) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	u.txs++
	return fn(u)
}

// mockProvider answers schedule lookups from a fixed table and counts calls
type mockProvider struct {
	provider.Unsupported
	name      string
	caps      []provider.Capability
	schedules map[string][]entity.Schedule
	err       error
	nearby    []string
	byIP      []string
	duration  int
	// hook runs after each schedule lookup is recorded
	hook func(q provider.ScheduleQuery)

	mu      sync.Mutex
	calls   int
	queries []provider.ScheduleQuery
	ipCalls int
}

func newMockProvider(name string, caps ...provider.Capability) *mockProvider {
	return &mockProvider{
		Unsupported: provider.Unsupported{ProviderName: name},
		name:        name,
		caps:        caps,
		schedules:   map[string][]entity.Schedule{},
	}
}

func (m *mockProvider) Name() string                         { return m.name }
func (m *mockProvider) Capabilities() []provider.Capability { return m.caps }

func (m *mockProvider) GetAirportSchedules(ctx context.Context, q provider.ScheduleQuery) (provider.Page, error) {
	m.mu.Lock()
	m.calls++
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.hook != nil {
		m.hook(q)
	}
	if err := ctx.Err(); err != nil {
		return provider.Page{}, err
	}
	if m.err != nil {
		return provider.Page{}, m.err
	}
	return provider.Page{Schedules: m.schedules[q.Airport]}, nil
}

func (m *mockProvider) SearchNearbyAirports(context.Context, float64, float64, float64) ([]string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.nearby, nil
}

func (m *mockProvider) SearchAirportsByIP(_ context.Context, _ string, _ float64) ([]string, error) {
	m.mu.Lock()
	m.ipCalls++
	m.mu.Unlock()
	return m.byIP, nil
}

func (m *mockProvider) GetFlightDuration(context.Context, string, string) (int, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.duration, nil
}

func (m *mockProvider) GetFlightOperatingDates(context.Context, string, string, string) ([]time.Time, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []time.Time{time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)}, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// staticChain returns the same providers for every capability they declare
type staticChain []provider.Provider

func (c staticChain) Chain(capability provider.Capability) []provider.Provider {
	var out []provider.Provider
	for _, p := range c {
		if provider.Supports(p, capability) {
			out = append(out, p)
		}
	}
	return out
}

// recordingLog collects fetch log entries
type recordingLog struct {
	mu      sync.Mutex
	entries []entity.FetchLog
}

func (r *recordingLog) Record(_ context.Context, l *entity.FetchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *l)
	return nil
}

func (r *recordingLog) Recent(context.Context, string, int64) ([]entity.FetchLog, error) {
	return r.entries, nil
}

// recordingEvents collects published events
type recordingEvents struct {
	events []entity.SchedulesIngested
}

func (r *recordingEvents) PublishSchedulesIngested(_ context.Context, e entity.SchedulesIngested) error {
	r.events = append(r.events, e)
	return nil
}
