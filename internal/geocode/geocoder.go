// Package geocode resolves addresses to coordinates and memoizes the answers.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/petpalfinder/backend/internal/models"
)

// ErrGeocoderUnavailable indicates the cache has no backing geocoder.
var ErrGeocoderUnavailable = errors.New("geocode: geocoder unavailable")

// Place is a resolved location.
type Place struct {
	models.Coordinate
	Formatted string `json:"formatted"`
}

// Geocoder performs forward and reverse lookups. A lookup that finds nothing
// reports ok=false with a nil error.
type Geocoder interface {
	Forward(ctx context.Context, query string) (place Place, ok bool, err error)
	Reverse(ctx context.Context, lat, lng float64) (place Place, ok bool, err error)
}

// StatusError is a non-2xx answer from the geocoding API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocode: HTTP %d - %s", e.Status, e.Body)
}
