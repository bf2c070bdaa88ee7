package usecase

import (
	"context"
	"fmt"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"
)

// LegNoStep spaces generated leg numbers so legs can be inserted between them
const LegNoStep = 10

// UpdateMode selects what a change item does
type UpdateMode string

const (
	ModeInsert UpdateMode = "I"
	ModeUpdate UpdateMode = "U"
	ModeDelete UpdateMode = "D"
)

// LegChange inserts, updates or deletes one leg
type LegChange struct {
	Mode UpdateMode     `json:"mode"`
	Leg  entity.TripLeg `json:"leg"`
}

// FlightChange attaches, replaces or detaches the flight of one leg
type FlightChange struct {
	Mode   UpdateMode       `json:"mode"`
	Flight entity.LegFlight `json:"flight"`
}

// TripChange is applied atomically. A nil Name leaves the name unchanged.
type TripChange struct {
	TripID  uint           `json:"trip_id"`
	Name    *string        `json:"name,omitempty"`
	Legs    []LegChange    `json:"legs,omitempty"`
	Flights []FlightChange `json:"flights,omitempty"`
}

// TripService manages trips, their legs and leg flights
type TripService struct {
	uow    repository.UnitOfWork
	logger logger.Logger
}

// NewTripService creates a new trip service
func NewTripService(uow repository.UnitOfWork, logger logger.Logger) *TripService {
	return &TripService{uow: uow, logger: logger}
}

// Create stores a trip with its legs and flights. Legs without a number
// are numbered after the highest one in steps of LegNoStep.
func (s *TripService) Create(ctx context.Context, trip *entity.Trip) error {
	if trip.UserID == 0 {
		return fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}

	next := 0
	for _, leg := range trip.Legs {
		if leg.LegNo > next {
			next = leg.LegNo
		}
	}
	seen := make(map[int]bool, len(trip.Legs))
	for i := range trip.Legs {
		leg := &trip.Legs[i]
		if leg.LegNo == 0 {
			next += LegNoStep
			leg.LegNo = next
		}
		if seen[leg.LegNo] {
			return fmt.Errorf("%w: duplicate leg number %d", errs.ErrInvalidInput, leg.LegNo)
		}
		seen[leg.LegNo] = true
		normalizeLeg(leg)
	}

	return s.uow.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, trip.UserID); err != nil {
			return err
		}
		for _, leg := range trip.Legs {
			if leg.Flight != nil {
				if err := ensureSchedule(ctx, tx, leg.Flight.FlightID); err != nil {
					return err
				}
			}
		}
		if err := tx.Trips().Create(ctx, trip); err != nil {
			return err
		}
		s.logger.Info("Trip created", "id", trip.ID, "user", trip.UserID, "legs", len(trip.Legs))
		return nil
	})
}

// Get returns a trip with its legs
func (s *TripService) Get(ctx context.Context, id uint) (*entity.Trip, error) {
	return s.uow.Trips().GetByID(ctx, id)
}

// ListByUser returns the user's trips
func (s *TripService) ListByUser(ctx context.Context, userID uint) ([]entity.Trip, error) {
	if _, err := s.uow.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.uow.Trips().ListByUser(ctx, userID)
}

// Change applies leg changes first, then flight changes, in one transaction
func (s *TripService) Change(ctx context.Context, change TripChange) (*entity.Trip, error) {
	var updated *entity.Trip
	err := s.uow.Transaction(ctx, func(tx repository.Store) error {
		trips := tx.Trips()
		trip, err := trips.GetByID(ctx, change.TripID)
		if err != nil {
			return err
		}

		if change.Name != nil {
			trip.Name = strings.TrimSpace(*change.Name)
			if err := trips.UpdateHeader(ctx, trip); err != nil {
				return err
			}
		}

		for _, lc := range change.Legs {
			leg := lc.Leg
			leg.TripID = trip.ID
			normalizeLeg(&leg)
			switch lc.Mode {
			case ModeInsert:
				if leg.LegNo == 0 {
					max, err := trips.MaxLegNo(ctx, trip.ID)
					if err != nil {
						return err
					}
					leg.LegNo = max + LegNoStep
				}
				err = trips.InsertLeg(ctx, &leg)
			case ModeUpdate:
				err = trips.UpdateLeg(ctx, &leg)
			case ModeDelete:
				err = trips.DeleteLeg(ctx, trip.ID, leg.LegNo)
			default:
				err = fmt.Errorf("%w: leg update mode %q", errs.ErrInvalidInput, lc.Mode)
			}
			if err != nil {
				return err
			}
		}

		if len(change.Flights) > 0 {
			current, err := trips.GetByID(ctx, trip.ID)
			if err != nil {
				return err
			}
			legs := make(map[int]bool, len(current.Legs))
			for _, l := range current.Legs {
				legs[l.LegNo] = true
			}

			for _, fc := range change.Flights {
				flight := fc.Flight
				flight.TripID = trip.ID
				flight.FlightID = strings.ToUpper(strings.TrimSpace(flight.FlightID))
				switch fc.Mode {
				case ModeInsert, ModeUpdate:
					if !legs[flight.LegNo] {
						return fmt.Errorf("%w: trip %d has no leg %d", errs.ErrInvalidInput, trip.ID, flight.LegNo)
					}
					if err := ensureSchedule(ctx, tx, flight.FlightID); err != nil {
						return err
					}
					err = trips.SetFlight(ctx, &flight)
				case ModeDelete:
					err = trips.DeleteFlight(ctx, trip.ID, flight.LegNo)
				default:
					err = fmt.Errorf("%w: flight update mode %q", errs.ErrInvalidInput, fc.Mode)
				}
				if err != nil {
					return err
				}
			}
		}

		updated, err = trips.GetByID(ctx, trip.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the trips with the given ids together with their legs
func (s *TripService) Delete(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no trip ids", errs.ErrInvalidInput)
	}
	return s.uow.Transaction(ctx, func(tx repository.Store) error {
		for _, id := range ids {
			if err := tx.Trips().Delete(ctx, id); err != nil {
				return err
			}
		}
		s.logger.Info("Trips deleted", "ids", ids)
		return nil
	})
}

func normalizeLeg(leg *entity.TripLeg) {
	if leg.Mode == "" {
		leg.Mode = entity.DefaultTravelMode
	}
	leg.OriginCity = strings.ToUpper(strings.TrimSpace(leg.OriginCity))
	leg.DestinationCity = strings.ToUpper(strings.TrimSpace(leg.DestinationCity))
}

func ensureSchedule(ctx context.Context, tx repository.Store, flightID string) error {
	if flightID == "" {
		return fmt.Errorf("%w: flight id is required", errs.ErrInvalidInput)
	}
	ok, err := tx.Schedules().Exists(ctx, flightID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown flight %q", errs.ErrInvalidInput, flightID)
	}
	return nil
}
