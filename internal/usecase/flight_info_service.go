package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/utils"
)

// FlightInfoService answers per-flight questions through the provider chain
type FlightInfoService struct {
	chain  ProviderChain
	logger logger.Logger
}

// NewFlightInfoService creates a new flight info service
func NewFlightInfoService(chain ProviderChain, logger logger.Logger) *FlightInfoService {
	return &FlightInfoService{chain: chain, logger: logger}
}

// FlightDuration returns the approximate flight time in minutes between two airports
func (s *FlightInfoService) FlightDuration(ctx context.Context, src, dst string) (int, error) {
	src, dst = strings.ToUpper(strings.TrimSpace(src)), strings.ToUpper(strings.TrimSpace(dst))
	if len(src) != 3 || len(dst) != 3 {
		return 0, fmt.Errorf("%w: airport codes %q, %q", errs.ErrInvalidInput, src, dst)
	}

	var minutes int
	err := s.firstSuccess(ctx, provider.FlightDuration, func(p provider.Provider) error {
		var err error
		minutes, err = p.GetFlightDuration(ctx, src, dst)
		return err
	})
	return minutes, err
}

// OperatingDates lists the dates a flight operates between the optional
// from and to dates. Dates are validated before any provider is called.
func (s *FlightInfoService) OperatingDates(ctx context.Context, flightID, fromDate, toDate string) ([]time.Time, error) {
	if strings.TrimSpace(flightID) == "" {
		return nil, fmt.Errorf("%w: flight id is required", errs.ErrInvalidInput)
	}
	if _, _, err := utils.ParseDateRange(fromDate, toDate); err != nil {
		return nil, err
	}

	var dates []time.Time
	err := s.firstSuccess(ctx, provider.OperatingDates, func(p provider.Provider) error {
		var err error
		dates, err = p.GetFlightOperatingDates(ctx, flightID, fromDate, toDate)
		return err
	})
	return dates, err
}

// firstSuccess calls the chain for c in order and stops at the first
// provider that answers. Recoverable failures move on to the next one.
func (s *FlightInfoService) firstSuccess(ctx context.Context, c provider.Capability, call func(p provider.Provider) error) error {
	lastErr := fmt.Errorf("no provider for %s: %w", c, errs.ErrUnsupported)
	for _, p := range s.chain.Chain(c) {
		err := call(p)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errs.IsRecoverable(err) {
			return err
		}
		s.logger.Warn("Provider failed, trying next", "provider", p.Name(), "capability", c, "error", err)
		lastErr = err
	}
	if errors.Is(lastErr, errs.ErrUnsupported) {
		return lastErr
	}
	return fmt.Errorf("all %s providers failed: %w", c, lastErr)
}
