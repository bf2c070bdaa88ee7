// Package api exposes the use cases over HTTP with echo
package api

import (
	"context"
	"net/http"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/infrastructure/config"
	"wanderlust-service/internal/usecase"
	"wanderlust-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

// FlightResolver answers route searches
type FlightResolver interface {
	ResolveFlights(ctx context.Context, q usecase.FlightQuery) (*usecase.FlightResolution, error)
}

// AirportLocator finds airports near a client or a point
type AirportLocator interface {
	ResolveAirportsNear(ctx context.Context, cc usecase.ClientContext) ([]entity.Airport, error)
	AirportsNear(ctx context.Context, at entity.Coordinates) ([]entity.Airport, error)
}

// FlightInfo answers per-flight questions
type FlightInfo interface {
	FlightDuration(ctx context.Context, src, dst string) (int, error)
	OperatingDates(ctx context.Context, flightID, fromDate, toDate string) ([]time.Time, error)
}

// UserManager manages users
type UserManager interface {
	Create(ctx context.Context, user *entity.User) error
	Get(ctx context.Context, id uint) (*entity.User, error)
	GetByName(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uint) error
	HomeAirports(ctx context.Context, id uint) ([]entity.Airport, error)
}

// TripManager manages trips
type TripManager interface {
	Create(ctx context.Context, trip *entity.Trip) error
	Get(ctx context.Context, id uint) (*entity.Trip, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Trip, error)
	Change(ctx context.Context, change usecase.TripChange) (*entity.Trip, error)
	Delete(ctx context.Context, ids []uint) error
}

// FetchHistory reads the provider fetch log
type FetchHistory interface {
	Recent(ctx context.Context, provider string, limit int64) ([]entity.FetchLog, error)
}

// Server holds the handlers' collaborators
type Server struct {
	Flights  FlightResolver
	Airports AirportLocator
	Info     FlightInfo
	Users    UserManager
	Trips    TripManager
	// FetchLog is optional; without it the fetch history route is unsupported
	FetchLog FetchHistory

	// DefaultLocation is used when a client cannot be located
	DefaultLocation entity.Coordinates
	RateLimit       config.RateLimitConfig
	Redis           *redis.Client
	Metrics         http.Handler

	logger logger.Logger
}

// NewServer creates the HTTP server state; callers fill the collaborators
func NewServer(logger logger.Logger) *Server {
	return &Server{logger: logger}
}

// Echo builds the router with middleware and every route
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency_ms", v.Latency.Milliseconds(), "remote_ip", v.RemoteIP}
			if v.Error != nil {
				s.logger.Warn("Request", append(fields, "error", v.Error)...)
				return nil
			}
			s.logger.Info("Request", fields...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics))
	}

	limited := RateLimit(s.RateLimit, s.Redis, s.logger)
	v1 := e.Group("/api/v1")

	v1.GET("/airports/nearby", s.NearbyAirports, limited)

	v1.GET("/flights/:code/dates", s.OperatingDates, limited)
	v1.GET("/flights/:code/:codeType", s.SearchFlights, limited)
	v1.GET("/durations/:src/:dst", s.FlightDuration, limited)

	v1.GET("/providers/:name/fetches", s.ProviderFetches)

	v1.POST("/users", s.CreateUser)
	v1.PUT("/users", s.UpdateUser)
	v1.GET("/users/:user", s.GetUser)
	v1.GET("/users/:user/home", s.HomeAirports)
	v1.DELETE("/users/:user", s.DeleteUser)

	v1.GET("/trips", s.ListTrips)
	v1.GET("/trips/:trip", s.GetTrip)
	v1.POST("/trips", s.CreateTrip)
	v1.PUT("/trips", s.ChangeTrip)
	v1.DELETE("/trips", s.DeleteTrips)

	return e
}
