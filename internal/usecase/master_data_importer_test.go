package usecase

import (
	"context"
	"testing"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogue struct {
	cityPages [][]entity.City
	calls     int
}

func (f *fakeCatalogue) ListCities(_ context.Context, cursor string) (provider.CitiesPage, error) {
	f.calls++
	i := 0
	if cursor != "" {
		i = int(cursor[0] - '0')
	}
	page := provider.CitiesPage{Cities: f.cityPages[i]}
	if i+1 < len(f.cityPages) {
		page.Next = string(rune('0' + i + 1))
	}
	return page, nil
}

func (f *fakeCatalogue) ListAirports(context.Context, string) (provider.AirportsPage, error) {
	return provider.AirportsPage{Airports: []entity.Airport{{Key: "BLR", CityKey: "BLR"}}}, nil
}

func (f *fakeCatalogue) ListAirlines(context.Context, string) (provider.AirlinesPage, error) {
	return provider.AirlinesPage{}, nil
}

type routesProvider struct {
	*mockProvider
	routes []entity.Schedule
}

func (r routesProvider) GetRoutesFromAirport(context.Context, string, string, string) (provider.Page, error) {
	return provider.Page{Schedules: r.routes}, nil
}

func TestImportCitiesStopsAtGovernor(t *testing.T) {
	uow := &memUoW{schedules: newMemSchedules(), locations: newMemLocations()}
	cat := &fakeCatalogue{cityPages: [][]entity.City{
		{{Key: "BLR"}, {Key: "MAA"}},
		{{Key: "DEL"}},
		{{Key: "BOM"}},
	}}
	imp := NewMasterDataImporter(uow, nil, cat, staticChain{}, 2, logger.NewNopLogger())

	n, err := imp.Import(context.Background(), ImportCities, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, cat.calls)
	assert.Len(t, uow.locations.cities, 3)

	_, err = imp.Import(context.Background(), ImportCountries, "")
	assert.ErrorIs(t, err, errs.ErrUnsupported)
	_, err = imp.Import(context.Background(), "planets", "")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestImportRoutes(t *testing.T) {
	uow := &memUoW{schedules: newMemSchedules(), locations: newMemLocations()}
	p := routesProvider{
		mockProvider: newMockProvider("avs", provider.RoutesFromAirport),
		routes:       []entity.Schedule{route("AI505", "BLR", "DEL", "10:00", "12:45")},
	}
	imp := NewMasterDataImporter(uow, nil, nil, staticChain{p}, 1, logger.NewNopLogger())

	n, err := imp.ImportRoutes(context.Background(), "blr")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, uow.schedules.upserts)

	_, err = imp.ImportRoutes(context.Background(), "BL")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
