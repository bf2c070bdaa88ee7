package providers

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"wanderlust-service/internal/domain/provider"
)

const (
	AmadeusName      = "amadeus"
	amadeusMaxRadius = 500
)

// Amadeus adapts the Amadeus self-service API. Only its airport search is
// exposed; opts.Client must carry the client-credentials token source.
type Amadeus struct {
	provider.Unsupported
	api *caller
}

// NewAmadeus creates the adapter. Authorization comes from opts.Client.
func NewAmadeus(opts Options) *Amadeus {
	return &Amadeus{
		Unsupported: provider.Unsupported{ProviderName: AmadeusName},
		api:         newCaller(AmadeusName, opts, nil, nil),
	}
}

func (a *Amadeus) Name() string { return AmadeusName }

func (a *Amadeus) Capabilities() []provider.Capability {
	return []provider.Capability{provider.NearbyAirports}
}

// SearchNearbyAirports returns airports around a point, closest first
func (a *Amadeus) SearchNearbyAirports(ctx context.Context, lat, lon, radiusKm float64) ([]string, error) {
	radius := int(math.Min(math.Max(radiusKm, 1), amadeusMaxRadius))
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("radius", strconv.Itoa(radius))
	query.Set("page[limit]", "10")
	query.Set("sort", "distance")

	var res struct {
		Data []struct {
			SubType  string `json:"subType"`
			IATACode string `json:"iataCode"`
		} `json:"data"`
	}
	if err := a.api.getJSON(ctx, string(provider.NearbyAirports), "reference-data/locations/airports", query, &res); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(res.Data))
	for _, d := range res.Data {
		if d.SubType != "" && !strings.EqualFold(d.SubType, "AIRPORT") {
			continue
		}
		if code := upper(d.IATACode); validAirportCode(code) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}
