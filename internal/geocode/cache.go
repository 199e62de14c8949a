package geocode

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/petpalfinder/backend/internal/models"
)

// Cache memoizes forward lookups by trimmed query string. Misses and failures
// are never stored, so the next call retries them.
type Cache struct {
	geocoder Geocoder
	store    Store
	logger   *slog.Logger
	group    singleflight.Group
}

// NewCache wraps geocoder with store. A nil store uses a MemoryStore.
func NewCache(geocoder Geocoder, store Store, logger *slog.Logger) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{geocoder: geocoder, store: store, logger: logger}
}

// Geocode returns the coordinate for query. ok is false for a blank query, a
// miss or a failed lookup.
func (c *Cache) Geocode(ctx context.Context, query string) (models.Coordinate, bool) {
	key := strings.TrimSpace(query)
	if key == "" || c == nil {
		return models.Coordinate{}, false
	}

	coord, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("geocode cache read failed", "error", err)
	} else if ok {
		return coord, true
	}

	if c.geocoder == nil {
		c.logger.Warn("geocode lookup skipped", "error", ErrGeocoderUnavailable)
		return models.Coordinate{}, false
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		place, ok, err := c.geocoder.Forward(ctx, key)
		if err != nil || !ok {
			return nil, err
		}
		if err := c.store.Set(ctx, key, place.Coordinate); err != nil {
			c.logger.Warn("geocode cache write failed", "error", err)
		}
		return place.Coordinate, nil
	})
	if err != nil {
		c.logger.Warn("geocode lookup failed", "query", key, "error", err)
		return models.Coordinate{}, false
	}
	if v == nil {
		return models.Coordinate{}, false
	}
	return v.(models.Coordinate), true
}

// Reverse resolves a coordinate to a place. Results are not cached.
func (c *Cache) Reverse(ctx context.Context, lat, lng float64) (Place, bool) {
	if c == nil || c.geocoder == nil {
		return Place{}, false
	}
	place, ok, err := c.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		c.logger.Warn("reverse geocode failed", "error", err)
		return Place{}, false
	}
	return place, ok
}
