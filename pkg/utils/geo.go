package utils

import (
	"math"

	"wanderlust-service/internal/domain/repository"
)

const (
	EarthRadiusKm = 6371
	kmPerDegree   = 111
)

// DistanceKm returns the great-circle distance between two points
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// BoundingBox returns the rectangle that contains every point within
// radiusKm of (lat, lon). It over-approximates the circle, so callers
// still filter candidates with DistanceKm.
func BoundingBox(lat, lon, radiusKm float64) repository.BoundingBox {
	dLat := radiusKm / kmPerDegree
	dLon := 180.0
	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-6 {
		dLon = math.Min(180, radiusKm/(kmPerDegree*cos))
	}
	return repository.BoundingBox{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}
