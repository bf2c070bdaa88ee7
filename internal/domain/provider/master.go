package provider

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// CitiesPage is one page of a city catalogue
type CitiesPage struct {
	Cities []entity.City
	Next   string
}

// AirportsPage is one page of an airport catalogue
type AirportsPage struct {
	Airports []entity.Airport
	Next     string
}

// AirlinesPage is one page of an airline catalogue
type AirlinesPage struct {
	Airlines []entity.Airline
	Next     string
}

// CatalogueSource serves the paid master-data listings
type CatalogueSource interface {
	ListCities(ctx context.Context, cursor string) (CitiesPage, error)
	ListAirports(ctx context.Context, cursor string) (AirportsPage, error)
	ListAirlines(ctx context.Context, cursor string) (AirlinesPage, error)
}

// CountrySource serves the country list in one call
type CountrySource interface {
	ListCountries(ctx context.Context) ([]entity.Country, error)
}
