package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripLifecycle(t *testing.T) {
	ctx := context.Background()
	uow := NewGormUnitOfWork(newTestDB(t))

	user := &entity.User{Username: "ada", Email: "ada@example.com", Role: entity.RoleStandard}
	require.NoError(t, uow.Users().Create(ctx, user))
	require.NotZero(t, user.ID)

	start := time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC)
	trip := &entity.Trip{UserID: user.ID, Name: "autumn", Legs: []entity.TripLeg{
		{LegNo: 10, OriginCity: "LON", DestinationCity: "NYC", LegStart: &start,
			Flight: &entity.LegFlight{FlightID: "BA117"}},
		{LegNo: 20, OriginCity: "NYC", DestinationCity: "LON"},
	}}
	require.NoError(t, uow.Trips().Create(ctx, trip))

	got, err := uow.Trips().GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Legs, 2)
	assert.Equal(t, entity.DefaultTravelMode, got.Legs[0].Mode)
	require.NotNil(t, got.Legs[0].Flight)
	assert.Equal(t, "BA117", got.Legs[0].Flight.FlightID)
	assert.Nil(t, got.Legs[1].Flight)

	max, err := uow.Trips().MaxLegNo(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, max)

	require.NoError(t, uow.Trips().SetFlight(ctx, &entity.LegFlight{TripID: trip.ID, LegNo: 10, FlightID: "BA175"}))
	require.NoError(t, uow.Trips().DeleteLeg(ctx, trip.ID, 20))
	assert.ErrorIs(t, uow.Trips().DeleteLeg(ctx, trip.ID, 20), errs.ErrNotFound)

	got, err = uow.Trips().GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Legs, 1)
	assert.Equal(t, "BA175", got.Legs[0].Flight.FlightID)

	require.NoError(t, uow.Users().Delete(ctx, user.ID))
	_, err = uow.Trips().GetByID(ctx, trip.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	trips, err := uow.Trips().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	uow := NewGormUnitOfWork(newTestDB(t))
	boom := errors.New("boom")

	err := uow.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Schedules().Upsert(ctx, []entity.Schedule{sched("LH400", "FRA", "JFK", "10:00", "12:45")}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, errs.ErrDatabaseOperationFailed)

	ok, err := uow.Schedules().Exists(ctx, "LH400")
	require.NoError(t, err)
	assert.False(t, ok)

	err = uow.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.Users().GetByID(ctx, 42)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
