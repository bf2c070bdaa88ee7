package usecase

import (
	"context"
	"testing"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"
	gormrepo "wanderlust-service/internal/interface/repository"
	"wanderlust-service/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteUoW(t *testing.T) repository.UnitOfWork {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(gormrepo.Models()...))
	return gormrepo.NewGormUnitOfWork(db)
}

func TestUserServiceValidation(t *testing.T) {
	svc := NewUserService(newSQLiteUoW(t), 100, logger.NewNopLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		user entity.User
		want error
	}{
		{"standard without email", entity.User{Username: "ada", Role: entity.RoleStandard}, errs.ErrInvalidInput},
		{"bad email", entity.User{Username: "ada", Role: entity.RoleStandard, Email: "nope"}, errs.ErrInvalidInput},
		{"missing name", entity.User{Email: "ada@example.com"}, errs.ErrInvalidInput},
		{"bad city", entity.User{Username: "ada", Email: "ada@example.com", City: "LOND"}, errs.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			assert.ErrorIs(t, svc.Create(ctx, &u), tt.want)
		})
	}

	guest := &entity.User{Username: "guest", Role: "guest"}
	require.NoError(t, svc.Create(ctx, guest))
	assert.NotZero(t, guest.ID)
}

func TestUserServiceLifecycle(t *testing.T) {
	uow := newSQLiteUoW(t)
	svc := NewUserService(uow, 100, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, uow.Locations().UpsertCities(ctx, []entity.City{
		{Key: "BLR", Name: "Bangalore", CountryKey: "IN", Coordinates: bangalore},
	}))
	require.NoError(t, uow.Locations().UpsertAirports(ctx, []entity.Airport{
		{Key: "BLR", CityKey: "BLR", Coordinates: entity.Coordinates{Latitude: 13.1986, Longitude: 77.7066}},
		{Key: "CRN", Coordinates: entity.Coordinates{Latitude: 13.85, Longitude: 78.48}},
	}))

	ada := &entity.User{Username: "ada", Email: "ada@example.com", City: "blr", Country: "in"}
	require.NoError(t, svc.Create(ctx, ada))
	assert.Equal(t, entity.RoleStandard, ada.Role)

	dup := &entity.User{Username: "ada", Email: "other@example.com"}
	assert.ErrorIs(t, svc.Create(ctx, dup), errs.ErrConflict)

	got, err := svc.GetByName(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "BLR", got.City)

	got.DarkMode = true
	require.NoError(t, svc.Update(ctx, got))
	got, err = svc.Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.True(t, got.DarkMode)

	home, err := svc.HomeAirports(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, home, 1)
	assert.Equal(t, "BLR", home[0].Key)

	require.NoError(t, svc.Delete(ctx, ada.ID))
	_, err = svc.Get(ctx, ada.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTripServiceCreateAndChange(t *testing.T) {
	uow := newSQLiteUoW(t)
	trips := NewTripService(uow, logger.NewNopLogger())
	ctx := context.Background()

	user := &entity.User{Username: "ada", Email: "ada@example.com", Role: entity.RoleStandard}
	require.NoError(t, uow.Users().Create(ctx, user))
	require.NoError(t, uow.Schedules().Upsert(ctx, []entity.Schedule{
		{FlightID: "EK565", Origin: "BLR", Destination: "DXB", DepTime: "04:10", ArrTime: "06:55"},
		{FlightID: "EK569", Origin: "BLR", Destination: "DXB", DepTime: "09:00", ArrTime: "11:30"},
	}))

	bad := &entity.Trip{UserID: user.ID, Legs: []entity.TripLeg{
		{OriginCity: "BLR", DestinationCity: "DXB", Flight: &entity.LegFlight{FlightID: "XX999"}},
	}}
	assert.ErrorIs(t, trips.Create(ctx, bad), errs.ErrInvalidInput)

	trip := &entity.Trip{UserID: user.ID, Name: "gulf", Legs: []entity.TripLeg{
		{OriginCity: "blr", DestinationCity: "dxb", Flight: &entity.LegFlight{FlightID: "EK565"}},
		{OriginCity: "DXB", DestinationCity: "BLR"},
	}}
	require.NoError(t, trips.Create(ctx, trip))
	assert.Equal(t, 10, trip.Legs[0].LegNo)
	assert.Equal(t, 20, trip.Legs[1].LegNo)

	name := "gulf and back"
	updated, err := trips.Change(ctx, TripChange{
		TripID: trip.ID,
		Name:   &name,
		Legs: []LegChange{
			{Mode: ModeInsert, Leg: entity.TripLeg{OriginCity: "BLR", DestinationCity: "MAA"}},
			{Mode: ModeDelete, Leg: entity.TripLeg{LegNo: 20}},
		},
		Flights: []FlightChange{
			{Mode: ModeUpdate, Flight: entity.LegFlight{LegNo: 10, FlightID: "ek569"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "gulf and back", updated.Name)
	require.Len(t, updated.Legs, 2)
	assert.Equal(t, 10, updated.Legs[0].LegNo)
	assert.Equal(t, "EK569", updated.Legs[0].Flight.FlightID)
	assert.Equal(t, 30, updated.Legs[1].LegNo)

	// one bad item rolls back the whole change
	_, err = trips.Change(ctx, TripChange{
		TripID: trip.ID,
		Legs:   []LegChange{{Mode: ModeDelete, Leg: entity.TripLeg{LegNo: 30}}},
		Flights: []FlightChange{
			{Mode: ModeInsert, Flight: entity.LegFlight{LegNo: 10, FlightID: "XX999"}},
		},
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	current, err := trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, current.Legs, 2)

	require.NoError(t, trips.Delete(ctx, []uint{trip.ID}))
	list, err := trips.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
