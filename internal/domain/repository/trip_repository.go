package repository

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// TripRepository defines the interface for trips, legs and leg flights
type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	GetByID(ctx context.Context, id uint) (*entity.Trip, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Trip, error)
	UpdateHeader(ctx context.Context, trip *entity.Trip) error
	// Delete removes the trip with its legs and flights
	Delete(ctx context.Context, id uint) error

	MaxLegNo(ctx context.Context, tripID uint) (int, error)
	InsertLeg(ctx context.Context, leg *entity.TripLeg) error
	UpdateLeg(ctx context.Context, leg *entity.TripLeg) error
	DeleteLeg(ctx context.Context, tripID uint, legNo int) error

	SetFlight(ctx context.Context, flight *entity.LegFlight) error
	DeleteFlight(ctx context.Context, tripID uint, legNo int) error
}
