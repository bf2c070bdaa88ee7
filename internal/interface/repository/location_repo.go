package repository

import (
	"context"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

// GormLocationRepository implements the LocationRepository interface
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository
func NewGormLocationRepository(db *gorm.DB) repository.LocationRepository {
	return &GormLocationRepository{
		db: db,
	}
}

// Country GORM model for database mapping
type Country struct {
	CountryKey string `gorm:"column:country_key;primaryKey;size:2"`
	Name       string `gorm:"column:name;size:128;not null"`
}

// TableName overrides the default table name
func (Country) TableName() string {
	return "country"
}

// City GORM model for database mapping
type City struct {
	CityKey    string  `gorm:"column:city_key;primaryKey;size:3"`
	Name       string  `gorm:"column:name;size:128"`
	CountryKey string  `gorm:"column:country_key;size:2;index"`
	Timezone   string  `gorm:"column:timezone;size:64"`
	Lat        float64 `gorm:"column:lat"`
	Lon        float64 `gorm:"column:lon"`
}

// TableName overrides the default table name
func (City) TableName() string {
	return "city"
}

// Airport GORM model for database mapping
type Airport struct {
	AirportKey string  `gorm:"column:airport_key;primaryKey;size:3"`
	Name       string  `gorm:"column:name;size:128"`
	CityKey    string  `gorm:"column:city_key;size:3;index"`
	Lat        float64 `gorm:"column:lat;index:idx_airport_lat_lon"`
	Lon        float64 `gorm:"column:lon;index:idx_airport_lat_lon"`
}

// TableName overrides the default table name
func (Airport) TableName() string {
	return "airport"
}

// Airline GORM model for database mapping
type Airline struct {
	AirlineID   string `gorm:"column:airline_id;primaryKey;size:3"`
	Name        string `gorm:"column:name;size:128"`
	HubAirport  string `gorm:"column:hub_airport;size:3"`
	AirlineCode string `gorm:"column:airline_code;size:2;index"`
	IsDefunct   bool   `gorm:"column:is_defunct"`
	Logo        string `gorm:"column:logo"`
}

// TableName overrides the default table name
func (Airline) TableName() string {
	return "airline"
}

func (a Airport) toEntity() entity.Airport {
	return entity.Airport{
		Key:         a.AirportKey,
		Name:        a.Name,
		CityKey:     a.CityKey,
		Coordinates: entity.Coordinates{Latitude: a.Lat, Longitude: a.Lon},
	}
}

// GetAirport finds an airport by code
func (r *GormLocationRepository) GetAirport(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airport
	result := r.db.WithContext(ctx).Where("airport_key = ?", strings.ToUpper(code)).First(&airport)
	if result.Error != nil {
		return nil, dbError("get airport", result.Error)
	}

	a := airport.toEntity()
	return &a, nil
}

// GetAirports finds the airports with the given codes, in the order the
// codes were given. Unknown codes are skipped.
func (r *GormLocationRepository) GetAirports(ctx context.Context, codes []string) ([]entity.Airport, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	upper := make([]string, 0, len(codes))
	for _, c := range codes {
		upper = append(upper, strings.ToUpper(c))
	}

	var rows []Airport
	if err := r.db.WithContext(ctx).Where("airport_key IN ?", upper).Find(&rows).Error; err != nil {
		return nil, dbError("get airports", err)
	}

	byKey := make(map[string]Airport, len(rows))
	for _, row := range rows {
		byKey[row.AirportKey] = row
	}
	airports := make([]entity.Airport, 0, len(rows))
	for _, code := range upper {
		if row, ok := byKey[code]; ok {
			airports = append(airports, row.toEntity())
			delete(byKey, code)
		}
	}
	return airports, nil
}

// GetCity finds a city by code together with its airports
func (r *GormLocationRepository) GetCity(ctx context.Context, code string) (*entity.City, error) {
	var city City
	db := r.db.WithContext(ctx)
	if err := db.Where("city_key = ?", strings.ToUpper(code)).First(&city).Error; err != nil {
		return nil, dbError("get city", err)
	}

	var airports []Airport
	if err := db.Where("city_key = ?", city.CityKey).Order("airport_key").Find(&airports).Error; err != nil {
		return nil, dbError("get city airports", err)
	}

	result := &entity.City{
		Key:         city.CityKey,
		Name:        city.Name,
		CountryKey:  city.CountryKey,
		Timezone:    city.Timezone,
		Coordinates: entity.Coordinates{Latitude: city.Lat, Longitude: city.Lon},
		Airports:    make([]entity.Airport, 0, len(airports)),
	}
	for _, a := range airports {
		result.Airports = append(result.Airports, a.toEntity())
	}
	return result, nil
}

// AirportsInBox returns every airport inside the rectangle
func (r *GormLocationRepository) AirportsInBox(ctx context.Context, box repository.BoundingBox) ([]entity.Airport, error) {
	var rows []Airport
	err := r.db.WithContext(ctx).
		Where("lat BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("lon BETWEEN ? AND ?", box.MinLon, box.MaxLon).
		Order("airport_key").
		Find(&rows).Error
	if err != nil {
		return nil, dbError("airports in box", err)
	}

	airports := make([]entity.Airport, 0, len(rows))
	for _, row := range rows {
		airports = append(airports, row.toEntity())
	}
	return airports, nil
}

func (r *GormLocationRepository) upsert(ctx context.Context, op string, rows interface{}) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, upsertBatchSize).Error
	return dbError(op, err)
}

// UpsertCountries inserts or replaces countries
func (r *GormLocationRepository) UpsertCountries(ctx context.Context, countries []entity.Country) error {
	if len(countries) == 0 {
		return nil
	}
	rows := make([]Country, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, Country{CountryKey: c.Key, Name: c.Name})
	}
	return r.upsert(ctx, "upsert countries", dedupe(rows, func(c Country) string { return c.CountryKey }))
}

// UpsertCities inserts or replaces cities
func (r *GormLocationRepository) UpsertCities(ctx context.Context, cities []entity.City) error {
	if len(cities) == 0 {
		return nil
	}
	rows := make([]City, 0, len(cities))
	for _, c := range cities {
		rows = append(rows, City{
			CityKey:    c.Key,
			Name:       c.Name,
			CountryKey: c.CountryKey,
			Timezone:   c.Timezone,
			Lat:        c.Coordinates.Latitude,
			Lon:        c.Coordinates.Longitude,
		})
	}
	return r.upsert(ctx, "upsert cities", dedupe(rows, func(c City) string { return c.CityKey }))
}

// UpsertAirports inserts or replaces airports
func (r *GormLocationRepository) UpsertAirports(ctx context.Context, airports []entity.Airport) error {
	if len(airports) == 0 {
		return nil
	}
	rows := make([]Airport, 0, len(airports))
	for _, a := range airports {
		rows = append(rows, Airport{
			AirportKey: a.Key,
			Name:       a.Name,
			CityKey:    a.CityKey,
			Lat:        a.Coordinates.Latitude,
			Lon:        a.Coordinates.Longitude,
		})
	}
	return r.upsert(ctx, "upsert airports", dedupe(rows, func(a Airport) string { return a.AirportKey }))
}

// UpsertAirlines inserts or replaces airlines
func (r *GormLocationRepository) UpsertAirlines(ctx context.Context, airlines []entity.Airline) error {
	if len(airlines) == 0 {
		return nil
	}
	rows := make([]Airline, 0, len(airlines))
	for _, a := range airlines {
		rows = append(rows, Airline{
			AirlineID:   a.ICAO,
			Name:        a.Name,
			HubAirport:  a.HubAirport,
			AirlineCode: a.IATA,
			IsDefunct:   a.IsDefunct,
			Logo:        a.Logo,
		})
	}
	return r.upsert(ctx, "upsert airlines", dedupe(rows, func(a Airline) string { return a.AirlineID }))
}

// dedupe keeps the last row per key. One upsert statement may not touch
// the same row twice.
func dedupe[T any](rows []T, key func(T) string) []T {
	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, ok := index[k]; ok {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}
