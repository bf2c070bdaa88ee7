package usecase

import (
	"context"
	"errors"
	"sort"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"
	"wanderlust-service/pkg/utils"
)

// DefaultNearbyRadiusKm is used when no radius is configured
const DefaultNearbyRadiusKm = 100

// ClientContext carries what is known about the caller's location.
// Coordinates, when present, take precedence over IP.
type ClientContext struct {
	Coordinates *entity.Coordinates
	IP          string
}

// Geocoder turns an IP address into approximate coordinates
type Geocoder interface {
	Geocode(ctx context.Context, ip string) (entity.Coordinates, error)
}

// PublicIPSource reports this host's public address, used in place of a
// loopback client address
type PublicIPSource interface {
	PublicIP(ctx context.Context) string
}

// GeolocationResolver finds the airports near a client
type GeolocationResolver struct {
	locations repository.LocationRepository
	chain     ProviderChain
	geocoder  Geocoder
	publicIP  PublicIPSource
	radiusKm  float64
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewGeolocationResolver creates a new geolocation resolver
func NewGeolocationResolver(
	locations repository.LocationRepository,
	chain ProviderChain,
	geocoder Geocoder,
	publicIP PublicIPSource,
	radiusKm float64,
	m *metrics.Metrics,
	logger logger.Logger,
) *GeolocationResolver {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	return &GeolocationResolver{
		locations: locations,
		chain:     chain,
		geocoder:  geocoder,
		publicIP:  publicIP,
		radiusKm:  radiusKm,
		metrics:   m,
		logger:    logger,
	}
}

// ResolveAirportsNear returns the airports near the client. A nil slice
// with a nil error means the location could not be determined and the
// caller should fall back to a default.
func (g *GeolocationResolver) ResolveAirportsNear(ctx context.Context, cc ClientContext) ([]entity.Airport, error) {
	if cc.Coordinates != nil {
		g.metrics.ObserveGeolocation("coordinates")
		return g.AirportsNear(ctx, *cc.Coordinates)
	}

	ip := cc.IP
	if ip == "" || utils.IsLoopback(ip) {
		ip = g.publicIP.PublicIP(ctx)
		g.logger.Debug("Substituted public IP for client address", "client", cc.IP, "ip", ip)
	}

	airports, err := g.airportsByIP(ctx, ip)
	if err != nil {
		return nil, err
	}
	if len(airports) > 0 {
		g.metrics.ObserveGeolocation("ip_provider")
		return airports, nil
	}

	coords, err := g.geocoder.Geocode(ctx, ip)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, errs.ErrGeolocationUnavailable) {
			g.logger.Warn("Geolocation unavailable", "ip", ip, "error", err)
			g.metrics.ObserveGeolocation("unavailable")
			return nil, nil
		}
		return nil, err
	}
	g.metrics.ObserveGeolocation("geocoded")
	return g.AirportsNear(ctx, coords)
}

func (g *GeolocationResolver) airportsByIP(ctx context.Context, ip string) ([]entity.Airport, error) {
	for _, p := range g.chain.Chain(provider.IPNearbyAirports) {
		searcher, ok := p.(provider.IPAirportSearcher)
		if !ok {
			continue
		}
		codes, err := searcher.SearchAirportsByIP(ctx, ip, g.radiusKm)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.logger.Warn("IP airport search failed", "provider", p.Name(), "error", err)
			continue
		}
		if len(codes) == 0 {
			continue
		}
		airports, err := g.locations.GetAirports(ctx, codes)
		if err != nil {
			return nil, err
		}
		if len(airports) > 0 {
			return airports, nil
		}
	}
	return nil, nil
}

// AirportsNear searches the nearby-airport providers first and falls back
// to the store. Provider codes unknown to the store count as no answer.
// Results carry their distance and are sorted nearest first.
func (g *GeolocationResolver) AirportsNear(ctx context.Context, at entity.Coordinates) ([]entity.Airport, error) {
	for _, p := range g.chain.Chain(provider.NearbyAirports) {
		codes, err := p.SearchNearbyAirports(ctx, at.Latitude, at.Longitude, g.radiusKm)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.logger.Warn("Nearby airport search failed", "provider", p.Name(), "error", err)
			continue
		}
		if len(codes) == 0 {
			continue
		}
		airports, err := g.locations.GetAirports(ctx, codes)
		if err != nil {
			return nil, err
		}
		if len(airports) > 0 {
			return withDistances(airports, at), nil
		}
		g.logger.Debug("Provider airports not in store", "provider", p.Name(), "codes", codes)
	}

	g.metrics.ObserveGeolocation("store")
	return storedAirportsNear(ctx, g.locations, at, g.radiusKm)
}

// storedAirportsNear prunes with a bounding box then keeps the airports
// whose great-circle distance is within radiusKm
func storedAirportsNear(ctx context.Context, locations repository.LocationRepository, at entity.Coordinates, radiusKm float64) ([]entity.Airport, error) {
	candidates, err := locations.AirportsInBox(ctx, utils.BoundingBox(at.Latitude, at.Longitude, radiusKm))
	if err != nil {
		return nil, err
	}
	nearby := make([]entity.Airport, 0, len(candidates))
	for _, a := range withDistances(candidates, at) {
		if a.DistanceKm <= radiusKm {
			nearby = append(nearby, a)
		}
	}
	return nearby, nil
}

func withDistances(airports []entity.Airport, at entity.Coordinates) []entity.Airport {
	for i := range airports {
		c := airports[i].Coordinates
		airports[i].DistanceKm = utils.DistanceKm(at.Latitude, at.Longitude, c.Latitude, c.Longitude)
	}
	sort.SliceStable(airports, func(i, j int) bool { return airports[i].DistanceKm < airports[j].DistanceKm })
	return airports
}
