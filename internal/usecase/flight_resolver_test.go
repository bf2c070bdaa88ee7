package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

func route(id, orig, dest, dep, arr string) entity.Schedule {
	return entity.Schedule{FlightID: id, Origin: orig, Destination: dest, DepTime: dep, ArrTime: arr, Airline: id[:2]}
}

func at(clock string) *time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2026-10-20 "+clock)
	return &t
}

type resolverFixture struct {
	uow      *memUoW
	log      *recordingLog
	events   *recordingEvents
	metrics  *metrics.Metrics
	resolver *FlightResolver
}

func newResolverFixture(stored []entity.Schedule, providers ...provider.Provider) *resolverFixture {
	f := &resolverFixture{
		uow:     &memUoW{schedules: newMemSchedules(stored...), locations: newMemLocations()},
		log:     &recordingLog{},
		events:  &recordingEvents{},
		metrics: metrics.NewMetrics("test", prometheus.NewRegistry()),
	}
	f.resolver = NewFlightResolver(f.uow, staticChain(providers), f.log, f.events, f.metrics,
		logger.NewNopLogger(), ResolverConfig{MaxPages: 3, WindowMinutes: 720})
	f.resolver.now = func() time.Time { return fixedNow }
	return f
}

func TestResolveFlightsStoreShortCircuit(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	f := newResolverFixture([]entity.Schedule{route("EK565", "BLR", "DXB", "04:10", "06:55")}, primary)

	res, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"BLR"},
		ToAirports:   []string{"DXB"},
	})
	require.NoError(t, err)

	assert.Equal(t, SourceStore, res.Source)
	require.Len(t, res.Schedules, 1)
	assert.Equal(t, "EK565", res.Schedules[0].FlightID)
	assert.Zero(t, primary.callCount())
	assert.Zero(t, f.uow.schedules.upserts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Resolutions.WithLabelValues(SourceStore)))
}

func TestResolveFlightsFallbackAndPersist(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	primary.schedules["BLR"] = []entity.Schedule{
		route("EK569", "BLR", "DXB", "09:00", "11:30"),
		route("EK565", "BLR", "DXB", "04:10", "06:55"),
		route("AI505", "BLR", "DEL", "10:00", "12:45"),
	}
	f := newResolverFixture(nil, primary)

	res, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"blr"},
		ToAirports:   []string{"DXB"},
		Timestamp:    at("08:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "primary", res.Source)
	require.Len(t, res.Schedules, 1)
	assert.Equal(t, "EK569", res.Schedules[0].FlightID)

	assert.Equal(t, 1, f.uow.schedules.upserts)
	assert.Equal(t, 1, f.uow.txs)
	// initial lookup plus the re-read after persisting
	assert.Equal(t, 2, f.uow.schedules.finds)
	assert.Len(t, f.uow.schedules.rows, 3)

	require.Len(t, primary.queries, 1)
	q := primary.queries[0]
	assert.Equal(t, "BLR", q.Airport)
	assert.Equal(t, entity.Departure, q.Direction)
	assert.Equal(t, 720, q.DurationMinutes)
	require.NotNil(t, q.From)
	assert.Equal(t, "08:00", q.From.Format("15:04"))

	require.Len(t, f.events.events, 1)
	assert.ElementsMatch(t, []string{"EK569", "EK565", "AI505"}, f.events.events[0].FlightIDs)
	require.Len(t, f.log.entries, 1)
	assert.Equal(t, "ok", f.log.entries[0].Outcome)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SchedulesPersisted))
}

func TestResolveFlightsFallsThroughToSecondary(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	primary.err = fmt.Errorf("primary: %w", errs.ErrProviderUnavailable)
	empty := newMockProvider("empty", provider.AirportSchedules)
	secondary := newMockProvider("secondary", provider.AirportSchedules)
	secondary.schedules["BLR"] = []entity.Schedule{route("6E1481", "BLR", "DXB", "21:00", "23:40")}
	f := newResolverFixture(nil, primary, empty, secondary)

	res, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"BLR"},
	})
	require.NoError(t, err)

	assert.Equal(t, "secondary", res.Source)
	require.Len(t, res.Schedules, 1)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, empty.callCount())
	assert.Equal(t, 1, secondary.callCount())
	assert.Equal(t, fixedNow, *secondary.queries[0].From)

	require.Len(t, f.log.entries, 3)
	assert.Equal(t, "error", f.log.entries[0].Outcome)
	assert.Equal(t, "empty", f.log.entries[1].Outcome)
	assert.Equal(t, "ok", f.log.entries[2].Outcome)
}

func TestResolveFlightsSurfacesContractErrors(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	primary.err = fmt.Errorf("days: %w", errs.ErrUnknownWeekday)
	secondary := newMockProvider("secondary", provider.AirportSchedules)
	f := newResolverFixture(nil, primary, secondary)

	_, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"BLR"},
	})
	assert.ErrorIs(t, err, errs.ErrUnknownWeekday)
	assert.Zero(t, secondary.callCount())
}

func TestResolveFlightsNoProviderData(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	f := newResolverFixture(nil, primary)

	res, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:  entity.Arrival,
		ToAirports: []string{"DXB"},
		Timestamp:  at("12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, SourceNone, res.Source)
	assert.Empty(t, res.Schedules)
	assert.Zero(t, f.uow.schedules.upserts)

	require.Len(t, primary.queries, 1)
	q := primary.queries[0]
	assert.Equal(t, entity.Arrival, q.Direction)
	assert.Equal(t, "00:00", q.From.Format("15:04"))
}

func TestResolveFlightsCancellationDiscardsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	primary := newMockProvider("primary", provider.AirportSchedules)
	primary.schedules["BLR"] = []entity.Schedule{route("EK569", "BLR", "DXB", "09:00", "11:30")}
	primary.hook = func(provider.ScheduleQuery) { cancel() }
	f := newResolverFixture(nil, primary)

	_, err := f.resolver.ResolveFlights(ctx, FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"BLR", "MAA"},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.uow.schedules.upserts)
	assert.Empty(t, f.uow.schedules.rows)
	assert.Empty(t, f.events.events)
}

func TestResolveFlightsExpandsCities(t *testing.T) {
	primary := newMockProvider("primary", provider.AirportSchedules)
	f := newResolverFixture(nil, primary)
	f.uow.locations.cities["LON"] = entity.City{Key: "LON", Name: "London"}
	f.uow.locations.airports["LHR"] = entity.Airport{Key: "LHR", CityKey: "LON"}
	f.uow.locations.airports["LGW"] = entity.Airport{Key: "LGW", CityKey: "LON"}

	_, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{
		Direction:    entity.Departure,
		FromAirports: []string{"lhr"},
		FromCities:   []string{"LON", "XXX"},
	})
	require.NoError(t, err)

	airports := make([]string, 0, len(primary.queries))
	for _, q := range primary.queries {
		airports = append(airports, q.Airport)
	}
	assert.Equal(t, []string{"LHR", "LGW"}, airports)
}

func TestResolveFlightsValidation(t *testing.T) {
	f := newResolverFixture(nil)

	_, err := f.resolver.ResolveFlights(context.Background(), FlightQuery{Direction: entity.Departure})
	assert.ErrorIs(t, err, errs.ErrMissingEndpoint)

	_, err = f.resolver.ResolveFlights(context.Background(), FlightQuery{Direction: "Sideways", FromAirports: []string{"BLR"}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
