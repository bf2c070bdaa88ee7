package repository

import (
	"context"
	"testing"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLocations(t *testing.T, repo repository.LocationRepository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.UpsertCountries(ctx, []entity.Country{{Key: "GB", Name: "United Kingdom"}}))
	require.NoError(t, repo.UpsertCities(ctx, []entity.City{
		{Key: "LON", Name: "London", CountryKey: "GB", Timezone: "Europe/London",
			Coordinates: entity.Coordinates{Latitude: 51.5074, Longitude: -0.1278}},
	}))
	require.NoError(t, repo.UpsertAirports(ctx, []entity.Airport{
		{Key: "LHR", Name: "Heathrow", CityKey: "LON", Coordinates: entity.Coordinates{Latitude: 51.47, Longitude: -0.4543}},
		{Key: "LGW", Name: "Gatwick", CityKey: "LON", Coordinates: entity.Coordinates{Latitude: 51.1537, Longitude: -0.1821}},
		{Key: "CDG", Name: "Charles de Gaulle", CityKey: "PAR", Coordinates: entity.Coordinates{Latitude: 49.0097, Longitude: 2.5479}},
	}))
}

func TestLocationLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLocationRepository(newTestDB(t))
	seedLocations(t, repo)

	a, err := repo.GetAirport(ctx, "lhr")
	require.NoError(t, err)
	assert.Equal(t, "Heathrow", a.Name)

	_, err = repo.GetAirport(ctx, "XXX")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	airports, err := repo.GetAirports(ctx, []string{"LGW", "XXX", "LHR", "LGW"})
	require.NoError(t, err)
	require.Len(t, airports, 2)
	assert.Equal(t, "LGW", airports[0].Key)
	assert.Equal(t, "LHR", airports[1].Key)

	city, err := repo.GetCity(ctx, "LON")
	require.NoError(t, err)
	assert.Equal(t, []string{"LGW", "LHR"}, city.AirportCodes())
	assert.Equal(t, "Europe/London", city.Timezone)
}

func TestAirportsInBox(t *testing.T) {
	repo := NewGormLocationRepository(newTestDB(t))
	seedLocations(t, repo)

	airports, err := repo.AirportsInBox(context.Background(), repository.BoundingBox{
		MinLat: 51, MaxLat: 52, MinLon: -1, MaxLon: 0,
	})
	require.NoError(t, err)
	require.Len(t, airports, 2)
	assert.Equal(t, "LGW", airports[0].Key)
	assert.Equal(t, "LHR", airports[1].Key)
}

func TestUpsertAirlinesReplaces(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormLocationRepository(db)

	require.NoError(t, repo.UpsertAirlines(ctx, []entity.Airline{{ICAO: "BAW", IATA: "BA", Name: "British"}}))
	require.NoError(t, repo.UpsertAirlines(ctx, []entity.Airline{{ICAO: "BAW", IATA: "BA", Name: "British Airways", HubAirport: "LHR"}}))

	var rows []Airline
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "British Airways", rows[0].Name)
	assert.Equal(t, "LHR", rows[0].HubAirport)
}
