package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const geocodeKeyPrefix = "geo:ip:"

// CachedGeocoder keeps IP geocoding answers in Redis. A nil client or a
// Redis failure falls through to the wrapped geocoder. Concurrent misses
// for the same IP share one upstream lookup.
type CachedGeocoder struct {
	next     Geocoder
	rdb      *redis.Client
	ttl      time.Duration
	inflight singleflight.Group
	logger   logger.Logger
}

// NewCachedGeocoder wraps next with a Redis cache
func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, logger logger.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, ip string) (entity.Coordinates, error) {
	if c.rdb == nil {
		return c.lookup(ctx, ip)
	}

	key := geocodeKeyPrefix + ip
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if coords, ok := decodeCoordinates(raw); ok {
			return coords, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("Geocode cache read failed", "error", err)
	}

	coords, err := c.lookup(ctx, ip)
	if err != nil {
		return coords, err
	}
	if err := c.rdb.Set(ctx, key, encodeCoordinates(coords), c.ttl).Err(); err != nil {
		c.logger.Warn("Geocode cache write failed", "error", err)
	}
	return coords, nil
}

// lookup shares one upstream call per IP. The shared call is detached from
// any single caller's cancellation; each caller still stops waiting when
// its own context ends.
func (c *CachedGeocoder) lookup(ctx context.Context, ip string) (entity.Coordinates, error) {
	ch := c.inflight.DoChan(ip, func() (interface{}, error) {
		return c.next.Geocode(context.WithoutCancel(ctx), ip)
	})
	select {
	case <-ctx.Done():
		return entity.Coordinates{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return entity.Coordinates{}, res.Err
		}
		return res.Val.(entity.Coordinates), nil
	}
}

func encodeCoordinates(c entity.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

func decodeCoordinates(raw string) (entity.Coordinates, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return entity.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return entity.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return entity.Coordinates{}, false
	}
	return entity.Coordinates{Latitude: lat, Longitude: lon}, true
}
