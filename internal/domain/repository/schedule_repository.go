package repository

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// ScheduleFilter selects persisted schedules. An empty set places no
// constraint on that side; empty time bounds mean no time filter.
type ScheduleFilter struct {
	Origins      []string
	Destinations []string
	// MinDepTime is an inclusive "HH:MM" lower bound on departure
	MinDepTime string
	// MaxArrTime is an inclusive "HH:MM" upper bound on local arrival
	MaxArrTime string
}

// ScheduleRepository defines the interface for schedule operations
type ScheduleRepository interface {
	Find(ctx context.Context, filter ScheduleFilter) ([]entity.Schedule, error)
	// Upsert inserts schedules; rows with an existing flight id are overwritten
	Upsert(ctx context.Context, schedules []entity.Schedule) error
	Exists(ctx context.Context, flightID string) (bool, error)
}
