package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/usecase"
	"wanderlust-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientContext(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		coords  *entity.Coordinates
		ip      string
	}{
		{"explicit headers", map[string]string{HeaderLatitude: "12.97", HeaderLongitude: "77.59"}, "", &entity.Coordinates{Latitude: 12.97, Longitude: 77.59}, ""},
		{"free form header", map[string]string{HeaderGeoLocation: " 51.5, -0.12 "}, "", &entity.Coordinates{Latitude: 51.5, Longitude: -0.12}, ""},
		{"bad header falls back to ip", map[string]string{HeaderGeoLocation: "north,west"}, "10.1.1.1:5050", nil, "10.1.1.1"},
		{"out of range latitude", map[string]string{HeaderLatitude: "91", HeaderLongitude: "0"}, "10.1.1.1:5050", nil, "10.1.1.1"},
		{"forwarded for", map[string]string{echo.HeaderXForwardedFor: "203.0.113.7, 10.0.0.1"}, "10.1.1.1:5050", nil, "203.0.113.7"},
		{"peer address", nil, "127.0.0.1:4000", nil, "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			cc := ClientContext(echo.New().NewContext(req, httptest.NewRecorder()))
			assert.Equal(t, tt.coords, cc.Coordinates)
			assert.Equal(t, tt.ip, cc.IP)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("date: %w", errs.ErrInvalidInput), http.StatusBadRequest},
		{errs.ErrRange, http.StatusBadRequest},
		{errs.ErrMissingEndpoint, http.StatusBadRequest},
		{fmt.Errorf("x: %w", errs.ErrProviderUnavailable), http.StatusBadGateway},
		{errs.ErrUnsupported, http.StatusNotImplemented},
		{fmt.Errorf("days %q: %w", "Funday", errs.ErrUnknownWeekday), http.StatusBadGateway},
		{errs.ErrNotFound, http.StatusNotFound},
		{errs.ErrConflict, http.StatusConflict},
		{errs.ErrDatabaseOperationFailed, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := StatusFor(tt.err)
		assert.Equal(t, tt.want, status, tt.err.Error())
	}
}

type fakeResolver struct {
	got usecase.FlightQuery
	res *usecase.FlightResolution
	err error
}

func (f *fakeResolver) ResolveFlights(_ context.Context, q usecase.FlightQuery) (*usecase.FlightResolution, error) {
	f.got = q
	return f.res, f.err
}

func TestSearchFlights(t *testing.T) {
	resolver := &fakeResolver{res: &usecase.FlightResolution{
		Source: "store",
		Schedules: []entity.Schedule{
			{FlightID: "AI176", Origin: "BLR", Destination: "SFO", DepTime: "23:00", ArrTime: "05:30", ArrDayOffset: 1},
		},
	}}
	s := NewServer(logger.NewNopLogger())
	s.Flights = resolver
	e := s.Echo()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/SFO/airport?direction=arrival&counterpart=BLR&counterpart_type=city&local_time=2026-10-20T08:00", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, entity.Arrival, resolver.got.Direction)
	assert.Equal(t, []string{"SFO"}, resolver.got.ToAirports)
	assert.Equal(t, []string{"BLR"}, resolver.got.FromCities)
	require.NotNil(t, resolver.got.Timestamp)
	assert.Equal(t, time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC), *resolver.got.Timestamp)

	var body FlightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Flights, 1)
	assert.Equal(t, "05:30(+1)", body.Flights[0].Arrival)
	assert.Equal(t, "store", body.Source)
}

func TestSearchFlightsErrors(t *testing.T) {
	resolver := &fakeResolver{err: errs.ErrMissingEndpoint}
	s := NewServer(logger.NewNopLogger())
	s.Flights = resolver
	e := s.Echo()

	tests := []struct {
		name string
		url  string
		want int
		code string
	}{
		{"bad direction", "/api/v1/flights/BLR/airport?direction=up", http.StatusBadRequest, "http_error"},
		{"bad code type", "/api/v1/flights/BLR/planet", http.StatusBadRequest, "http_error"},
		{"bad local time", "/api/v1/flights/BLR/airport?local_time=tomorrow", http.StatusBadRequest, "invalid_input"},
		{"domain error", "/api/v1/flights/BLR/airport", http.StatusBadRequest, "missing_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.want, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

type fakeLocator struct {
	near     []entity.Airport
	fallback []entity.Airport
	at       *entity.Coordinates
}

func (f *fakeLocator) ResolveAirportsNear(context.Context, usecase.ClientContext) ([]entity.Airport, error) {
	return f.near, nil
}

func (f *fakeLocator) AirportsNear(_ context.Context, at entity.Coordinates) ([]entity.Airport, error) {
	f.at = &at
	return f.fallback, nil
}

func TestNearbyAirportsUsesDefaultLocation(t *testing.T) {
	locator := &fakeLocator{fallback: []entity.Airport{{Key: "BLR"}}}
	s := NewServer(logger.NewNopLogger())
	s.Airports = locator
	s.DefaultLocation = entity.Coordinates{Latitude: 12.97, Longitude: 77.59}

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/airports/nearby", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, locator.at)
	assert.Equal(t, s.DefaultLocation, *locator.at)
	assert.Contains(t, rec.Body.String(), `"located":false`)
	assert.Contains(t, rec.Body.String(), `"BLR"`)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(logger.NewNopLogger()).Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

type fakeTrips struct {
	change  usecase.TripChange
	deleted []uint
}

func (f *fakeTrips) Create(_ context.Context, trip *entity.Trip) error {
	trip.ID = 7
	return nil
}

func (f *fakeTrips) Get(_ context.Context, id uint) (*entity.Trip, error) {
	if id != 7 {
		return nil, errs.ErrNotFound
	}
	return &entity.Trip{ID: 7, Name: "Monsoon"}, nil
}

func (f *fakeTrips) ListByUser(context.Context, uint) ([]entity.Trip, error) { return nil, nil }

func (f *fakeTrips) Change(_ context.Context, change usecase.TripChange) (*entity.Trip, error) {
	f.change = change
	return &entity.Trip{ID: change.TripID}, nil
}

func (f *fakeTrips) Delete(_ context.Context, ids []uint) error {
	f.deleted = ids
	return nil
}

func TestTripRoutes(t *testing.T) {
	trips := &fakeTrips{}
	s := NewServer(logger.NewNopLogger())
	s.Trips = trips
	e := s.Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trips/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trips/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"trip_id":7,"legs":[{"mode":"D","leg":{"leg_no":20}}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/trips", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint(7), trips.change.TripID)
	require.Len(t, trips.change.Legs, 1)
	assert.Equal(t, usecase.ModeDelete, trips.change.Legs[0].Mode)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/trips?ids=3,%204", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint{3, 4}, trips.deleted)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1, 2,,3")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	_, err = parseIDs("")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = parseIDs("1,x")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

type fakeUsers struct {
	byID   uint
	byName string
}

func (f *fakeUsers) Create(context.Context, *entity.User) error { return errs.ErrConflict }
func (f *fakeUsers) Get(_ context.Context, id uint) (*entity.User, error) {
	f.byID = id
	return &entity.User{ID: id}, nil
}
func (f *fakeUsers) GetByName(_ context.Context, name string) (*entity.User, error) {
	f.byName = name
	return &entity.User{Username: name}, nil
}
func (f *fakeUsers) Update(context.Context, *entity.User) error { return nil }
func (f *fakeUsers) Delete(context.Context, uint) error         { return nil }
func (f *fakeUsers) HomeAirports(context.Context, uint) ([]entity.Airport, error) {
	return []entity.Airport{{Key: "BLR"}}, nil
}

func TestUserRoutes(t *testing.T) {
	users := &fakeUsers{}
	s := NewServer(logger.NewNopLogger())
	s.Users = users
	e := s.Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), users.byID)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/asha", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha", users.byName)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"username":"asha"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/42/home", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BLR")
}

type fakeHistory struct {
	provider string
	limit    int64
}

func (f *fakeHistory) Recent(_ context.Context, provider string, limit int64) ([]entity.FetchLog, error) {
	f.provider, f.limit = provider, limit
	return []entity.FetchLog{{Provider: provider, Outcome: "ok", Records: 12}}, nil
}

func TestProviderFetches(t *testing.T) {
	s := NewServer(logger.NewNopLogger())

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers/airlabs/fetches", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	history := &fakeHistory{}
	s.FetchLog = history
	e := s.Echo()

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers/AirLabs/fetches", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "airlabs", history.provider)
	assert.Equal(t, int64(20), history.limit)
	assert.Contains(t, rec.Body.String(), `"records":12`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers/airlabs/fetches?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), history.limit)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers/airlabs/fetches?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
