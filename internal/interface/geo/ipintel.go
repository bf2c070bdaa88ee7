// Package geo resolves client IP addresses to coordinates
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/pkg/logger"
)

// Geocoder turns an IP address into approximate coordinates
type Geocoder interface {
	Geocode(ctx context.Context, ip string) (entity.Coordinates, error)
}

// IPIntelligence geocodes through the AbstractAPI IP intelligence service
type IPIntelligence struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewIPIntelligence creates a new IP intelligence geocoder
func NewIPIntelligence(baseURL, apiKey string, timeout time.Duration, logger logger.Logger) *IPIntelligence {
	return &IPIntelligence{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Geocode fails with errs.ErrGeolocationUnavailable when the service errors
// or its answer carries no location
func (g *IPIntelligence) Geocode(ctx context.Context, ip string) (entity.Coordinates, error) {
	query := url.Values{}
	query.Set("api_key", g.apiKey)
	query.Set("ip_address", ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return entity.Coordinates{}, fmt.Errorf("%w: failed to create request: %v", errs.ErrGeolocationUnavailable, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return entity.Coordinates{}, ctx.Err()
		}
		return entity.Coordinates{}, fmt.Errorf("%w: %v", errs.ErrGeolocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.Coordinates{}, fmt.Errorf("%w: ip intelligence returned status %d", errs.ErrGeolocationUnavailable, resp.StatusCode)
	}

	var response struct {
		Location *struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return entity.Coordinates{}, fmt.Errorf("%w: failed to decode response: %v", errs.ErrGeolocationUnavailable, err)
	}
	if response.Location == nil || response.Location.Latitude == nil || response.Location.Longitude == nil {
		return entity.Coordinates{}, fmt.Errorf("%w: response has no location for %s", errs.ErrGeolocationUnavailable, ip)
	}

	g.logger.Debug("Geocoded client IP", "ip", ip)
	return entity.Coordinates{Latitude: *response.Location.Latitude, Longitude: *response.Location.Longitude}, nil
}

// FallbackPublicIP is used when the public address cannot be discovered
const FallbackPublicIP = "8.8.8.8"

// PublicIPResolver discovers this host's public address. Requests from a
// loopback client are geolocated through it.
type PublicIPResolver struct {
	url    string
	client *http.Client
	logger logger.Logger
}

// NewPublicIPResolver creates a new resolver querying an ipify style endpoint
func NewPublicIPResolver(endpoint string, timeout time.Duration, logger logger.Logger) *PublicIPResolver {
	return &PublicIPResolver{
		url:    endpoint,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// PublicIP returns the public address, or FallbackPublicIP on any failure
func (p *PublicIPResolver) PublicIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return FallbackPublicIP
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("Public IP lookup failed", "error", err)
		return FallbackPublicIP
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil || resp.StatusCode != http.StatusOK {
		return FallbackPublicIP
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return FallbackPublicIP
	}
	return ip
}
