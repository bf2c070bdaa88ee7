package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CreateTrip handles POST /api/v1/trips
func (s *Server) CreateTrip(c echo.Context) error {
	var trip entity.Trip
	if err := c.Bind(&trip); err != nil {
		return err
	}
	trip.ID = 0
	if err := s.Trips.Create(c.Request().Context(), &trip); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, trip)
}

// GetTrip handles GET /api/v1/trips/:trip
func (s *Server) GetTrip(c echo.Context) error {
	id, err := pathID(c, "trip")
	if err != nil {
		return err
	}
	trip, err := s.Trips.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trip)
}

// ListTrips handles GET /api/v1/trips?user_id=
func (s *Server) ListTrips(c echo.Context) error {
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("%w: user_id must be a positive integer", errs.ErrInvalidInput)
	}
	trips, err := s.Trips.ListByUser(c.Request().Context(), uint(userID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trips": trips})
}

// ChangeTrip handles PUT /api/v1/trips with per-item I/U/D modes
func (s *Server) ChangeTrip(c echo.Context) error {
	var change usecase.TripChange
	if err := c.Bind(&change); err != nil {
		return err
	}
	if change.TripID == 0 {
		return fmt.Errorf("%w: trip_id is required", errs.ErrInvalidInput)
	}
	trip, err := s.Trips.Change(c.Request().Context(), change)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trip)
}

// DeleteTrips handles DELETE /api/v1/trips?ids=1,2,3
func (s *Server) DeleteTrips(c echo.Context) error {
	ids, err := parseIDs(c.QueryParam("ids"))
	if err != nil {
		return err
	}
	if err := s.Trips.Delete(c.Request().Context(), ids); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: trip id %q", errs.ErrInvalidInput, part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids is required", errs.ErrInvalidInput)
	}
	return ids, nil
}
