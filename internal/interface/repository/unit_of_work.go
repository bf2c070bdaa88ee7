package repository

import (
	"context"
	"errors"
	"fmt"

	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"

	"gorm.io/gorm"
)

var domainErrors = []error{
	errs.ErrInvalidInput, errs.ErrRange, errs.ErrMissingEndpoint, errs.ErrProviderUnavailable,
	errs.ErrUnsupported, errs.ErrUnknownWeekday, errs.ErrGeolocationUnavailable,
	errs.ErrDatabaseOperationFailed, errs.ErrNotFound, errs.ErrConflict,
}

// gormStore binds every repository to one handle, either the pool or a
// transaction
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Schedules() repository.ScheduleRepository { return NewGormScheduleRepository(s.db) }
func (s *gormStore) Locations() repository.LocationRepository { return NewGormLocationRepository(s.db) }
func (s *gormStore) Users() repository.UserRepository         { return NewGormUserRepository(s.db) }
func (s *gormStore) Trips() repository.TripRepository         { return NewGormTripRepository(s.db) }

// GormUnitOfWork implements the UnitOfWork interface
type GormUnitOfWork struct {
	gormStore
}

// NewGormUnitOfWork creates a new GORM unit of work
func NewGormUnitOfWork(db *gorm.DB) repository.UnitOfWork {
	return &GormUnitOfWork{gormStore{db: db}}
}

// Transaction runs fn inside one database transaction. Returning an error
// from fn rolls everything back; errors outside the domain taxonomy are
// reported as errs.ErrDatabaseOperationFailed.
func (u *GormUnitOfWork) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("transaction: %w: %v", errs.ErrDatabaseOperationFailed, err)
}

// Models lists every table for migrations
func Models() []interface{} {
	return []interface{}{
		&Country{}, &City{}, &Airport{}, &Airline{}, &Schedules{},
		&Users{}, &Trips{}, &TripLegs{}, &LegFlight{},
	}
}
