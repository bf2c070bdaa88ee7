package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"wanderlust-service/internal/domain/provider"
)

// ProviderPriorities lists, per capability, the provider names to try in order
type ProviderPriorities struct {
	Nearby         []string `yaml:"nearby" validate:"dive,oneof=aerodatabox amadeus aviationstack airlabs"`
	IPNearby       []string `yaml:"ip_nearby" validate:"dive,oneof=aerodatabox amadeus aviationstack airlabs"`
	Routes         []string `yaml:"routes" validate:"dive,oneof=aerodatabox amadeus aviationstack airlabs"`
	Schedules      []string `yaml:"schedules" validate:"required,min=1,dive,oneof=aerodatabox amadeus aviationstack airlabs"`
	Duration       []string `yaml:"duration" validate:"dive,oneof=aerodatabox amadeus aviationstack airlabs"`
	OperatingDates []string `yaml:"operating_dates" validate:"dive,oneof=aerodatabox amadeus aviationstack airlabs"`
}

// DefaultProviderPriorities reflects each provider's strengths: realtime
// nearby search and future schedules from AeroDataBox, statistical routes
// from AviationStack.
func DefaultProviderPriorities() ProviderPriorities {
	return ProviderPriorities{
		Nearby:         []string{"aerodatabox", "amadeus", "airlabs"},
		IPNearby:       []string{"aerodatabox"},
		Routes:         []string{"aviationstack", "airlabs"},
		Schedules:      []string{"aerodatabox", "airlabs", "aviationstack"},
		Duration:       []string{"aerodatabox"},
		OperatingDates: []string{"aerodatabox"},
	}
}

// ByCapability returns the priority lists keyed by capability
func (p ProviderPriorities) ByCapability() map[provider.Capability][]string {
	return map[provider.Capability][]string{
		provider.NearbyAirports:    p.Nearby,
		provider.IPNearbyAirports:  p.IPNearby,
		provider.RoutesFromAirport: p.Routes,
		provider.AirportSchedules:  p.Schedules,
		provider.FlightDuration:    p.Duration,
		provider.OperatingDates:    p.OperatingDates,
	}
}

// LoadProviderPriorities reads and validates the provider priority file.
// A missing file yields the defaults.
func LoadProviderPriorities(path string) (ProviderPriorities, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultProviderPriorities(), nil
	}
	if err != nil {
		return ProviderPriorities{}, fmt.Errorf("failed to read provider priorities: %w", err)
	}
	return ParseProviderPriorities(data)
}

// ParseProviderPriorities decodes YAML priorities. Capabilities left out of
// the document keep their default order.
func ParseProviderPriorities(data []byte) (ProviderPriorities, error) {
	cfg := DefaultProviderPriorities()
	var doc struct {
		Priorities ProviderPriorities `yaml:"priorities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ProviderPriorities{}, fmt.Errorf("failed to parse provider priorities: %w", err)
	}

	merge := func(dst *[]string, src []string) {
		if src != nil {
			*dst = src
		}
	}
	merge(&cfg.Nearby, doc.Priorities.Nearby)
	merge(&cfg.IPNearby, doc.Priorities.IPNearby)
	merge(&cfg.Routes, doc.Priorities.Routes)
	merge(&cfg.Schedules, doc.Priorities.Schedules)
	merge(&cfg.Duration, doc.Priorities.Duration)
	merge(&cfg.OperatingDates, doc.Priorities.OperatingDates)

	if err := validator.New().Struct(cfg); err != nil {
		return ProviderPriorities{}, fmt.Errorf("invalid provider priorities: %w", err)
	}
	return cfg, nil
}
