package router

import (
	"context"
	"fmt"

	"wanderlust-service/internal/infrastructure/config"
	"wanderlust-service/internal/infrastructure/oauth"
	"wanderlust-service/internal/interface/providers"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"
)

// Providers bundles the configured adapters with the router over them.
// The master data sources are exposed separately for the importer.
type Providers struct {
	Router        *ProviderRouter
	AviationStack *providers.AviationStack
	AirLabs       *providers.AirLabs
}

// BuildProviders creates every adapter whose credentials are configured,
// registers them and applies the priority file
func BuildProviders(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log logger.Logger) (*Providers, error) {
	opts := func(baseURL string) providers.Options {
		return providers.Options{BaseURL: baseURL, Timeout: cfg.ProviderTimeout, Metrics: m, Logger: log}
	}

	r := NewProviderRouter(log)
	out := &Providers{Router: r}

	if cfg.RapidAPIKey != "" {
		r.Register(providers.NewAeroDataBox(cfg.RapidAPIKey, opts(cfg.AeroDataBoxURL)))
	}
	if cfg.AmadeusClientID != "" && cfg.AmadeusClientSecret != "" {
		creds := oauth.NewClientCredentials(cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.AmadeusTokenURL, cfg.ProviderTimeout, log)
		o := opts(cfg.AmadeusURL)
		o.Client = creds.HTTPClient(ctx)
		r.Register(providers.NewAmadeus(o))
	}
	if cfg.AviationStackKey != "" {
		out.AviationStack = providers.NewAviationStack(cfg.AviationStackKey, opts(cfg.AviationStackURL))
		r.Register(out.AviationStack)
	}
	if cfg.AirLabsKey != "" {
		out.AirLabs = providers.NewAirLabs(cfg.AirLabsKey, opts(cfg.AirLabsURL))
		r.Register(out.AirLabs)
	}

	priorities, err := config.LoadProviderPriorities(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("provider priorities: %w", err)
	}
	r.SetPriorities(priorities.ByCapability())
	return out, nil
}
