package repository

import "context"

// Store groups the repositories bound to one database handle
type Store interface {
	Schedules() ScheduleRepository
	Locations() LocationRepository
	Users() UserRepository
	Trips() TripRepository
}

// UnitOfWork hands out repositories outside a transaction and runs fn
// with repositories bound to a single transaction. Any error returned by
// fn rolls the whole transaction back.
type UnitOfWork interface {
	Store
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
