package api

import (
	"net"
	"strconv"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/usecase"
	"wanderlust-service/pkg/utils"

	"github.com/labstack/echo/v4"
)

const (
	HeaderGeoLocation = "X-Geo-Location"
	HeaderLatitude    = "X-Latitude"
	HeaderLongitude   = "X-Longitude"
)

// ClientContext extracts where the caller is. Explicit coordinates come
// from X-Latitude/X-Longitude or a free-form "lat,lon" X-Geo-Location
// header; otherwise the client IP is the first X-Forwarded-For entry or
// the peer address.
func ClientContext(c echo.Context) usecase.ClientContext {
	h := c.Request().Header
	if coords, ok := parseCoordinates(h.Get(HeaderLatitude), h.Get(HeaderLongitude)); ok {
		return usecase.ClientContext{Coordinates: &coords}
	}
	if lat, lon, found := strings.Cut(h.Get(HeaderGeoLocation), ","); found {
		if coords, ok := parseCoordinates(lat, lon); ok {
			return usecase.ClientContext{Coordinates: &coords}
		}
	}
	return usecase.ClientContext{IP: clientIP(c)}
}

func parseCoordinates(rawLat, rawLon string) (entity.Coordinates, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return entity.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(rawLon), 64)
	if err != nil || lon < -180 || lon > 180 {
		return entity.Coordinates{}, false
	}
	return entity.Coordinates{Latitude: lat, Longitude: lon}, true
}

func clientIP(c echo.Context) string {
	if ip := utils.FirstForwardedFor(c.Request().Header.Get(echo.HeaderXForwardedFor)); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		return c.Request().RemoteAddr
	}
	return host
}
