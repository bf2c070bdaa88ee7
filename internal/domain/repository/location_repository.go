package repository

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// BoundingBox is an inclusive latitude/longitude rectangle
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// LocationRepository defines the master-data operations: countries,
// cities, airports and airlines.
type LocationRepository interface {
	GetAirport(ctx context.Context, code string) (*entity.Airport, error)
	GetAirports(ctx context.Context, codes []string) ([]entity.Airport, error)
	// GetCity returns the city with its airports loaded
	GetCity(ctx context.Context, code string) (*entity.City, error)
	AirportsInBox(ctx context.Context, box BoundingBox) ([]entity.Airport, error)

	UpsertCountries(ctx context.Context, countries []entity.Country) error
	UpsertCities(ctx context.Context, cities []entity.City) error
	UpsertAirports(ctx context.Context, airports []entity.Airport) error
	UpsertAirlines(ctx context.Context, airlines []entity.Airline) error
}
