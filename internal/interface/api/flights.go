package api

import (
	"net/http"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/usecase"
	"wanderlust-service/pkg/utils"

	"github.com/labstack/echo/v4"
)

// FlightView is a schedule with its arrival rendered with the day offset
type FlightView struct {
	entity.Schedule
	Arrival string `json:"arrival"`
}

// FlightsResponse answers a route search
type FlightsResponse struct {
	Flights []FlightView `json:"flights"`
	Source  string       `json:"source"`
}

func addEndpoint(code, codeType string, airports, cities *[]string) error {
	switch strings.ToLower(codeType) {
	case "", "airport":
		*airports = append(*airports, code)
	case "city":
		*cities = append(*cities, code)
	default:
		return errs.ErrInvalidInput
	}
	return nil
}

// SearchFlights handles GET /api/v1/flights/:code/:codeType. For
// departures the path code is the origin and the counterpart the
// destination; for arrivals the other way round.
func (s *Server) SearchFlights(c echo.Context) error {
	direction := entity.Departure
	if raw := c.QueryParam("direction"); raw != "" {
		d, ok := entity.ParseDirection(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "direction must be departure or arrival")
		}
		direction = d
	}

	var q usecase.FlightQuery
	q.Direction = direction
	here, there := [2]*[]string{&q.FromAirports, &q.FromCities}, [2]*[]string{&q.ToAirports, &q.ToCities}
	if direction == entity.Arrival {
		here, there = there, here
	}

	if err := addEndpoint(c.Param("code"), c.Param("codeType"), here[0], here[1]); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "code type must be airport or city")
	}
	if code := strings.TrimSpace(c.QueryParam("counterpart")); code != "" {
		if err := addEndpoint(code, c.QueryParam("counterpart_type"), there[0], there[1]); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "counterpart type must be airport or city")
		}
	}

	if raw := c.QueryParam("local_time"); raw != "" {
		ts, err := utils.ParseLocalDateTime(raw)
		if err != nil {
			return err
		}
		q.Timestamp = &ts
	}

	res, err := s.Flights.ResolveFlights(c.Request().Context(), q)
	if err != nil {
		return err
	}

	views := make([]FlightView, 0, len(res.Schedules))
	for _, sc := range res.Schedules {
		views = append(views, FlightView{Schedule: sc, Arrival: sc.ArrivalLabel()})
	}
	return c.JSON(http.StatusOK, FlightsResponse{Flights: views, Source: res.Source})
}

// OperatingDates handles GET /api/v1/flights/:code/dates?from=&to=
func (s *Server) OperatingDates(c echo.Context) error {
	dates, err := s.Info.OperatingDates(c.Request().Context(), c.Param("code"), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(utils.DateLayout))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"flight_id": strings.ToUpper(c.Param("code")), "dates": out})
}

// FlightDuration handles GET /api/v1/durations/:src/:dst
func (s *Server) FlightDuration(c echo.Context) error {
	minutes, err := s.Info.FlightDuration(c.Request().Context(), c.Param("src"), c.Param("dst"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"source":      strings.ToUpper(c.Param("src")),
		"destination": strings.ToUpper(c.Param("dst")),
		"minutes":     minutes,
	})
}

// NearbyAirports handles GET /api/v1/airports/nearby. An unlocatable
// client gets the airports near the default location.
func (s *Server) NearbyAirports(c echo.Context) error {
	ctx := c.Request().Context()
	airports, err := s.Airports.ResolveAirportsNear(ctx, ClientContext(c))
	if err != nil {
		return err
	}
	located := airports != nil
	if !located {
		airports, err = s.Airports.AirportsNear(ctx, s.DefaultLocation)
		if err != nil {
			return err
		}
	}
	if airports == nil {
		airports = []entity.Airport{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"airports": airports, "located": located})
}
