package handlers

import (
	"context"

	"github.com/petpalfinder/backend/internal/geocode"
	"github.com/petpalfinder/backend/internal/markers"
	"github.com/petpalfinder/backend/internal/models"
	"github.com/petpalfinder/backend/internal/pagination"
)

// SessionRegistry hands out search sessions.
type SessionRegistry interface {
	Create() *pagination.Session
	Get(id string) (*pagination.Session, error)
	Delete(id string) bool
}

// AnimalLookup fetches single records from the listings API.
type AnimalLookup interface {
	GetAnimal(ctx context.Context, id int64) (models.Animal, error)
	GetOrganization(ctx context.Context, id string) (models.Organization, error)
}

// Geocoder resolves free-form locations and coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Coordinate, bool)
	Reverse(ctx context.Context, lat, lng float64) (geocode.Place, bool)
}

// MarkerResolver places animals on the map.
type MarkerResolver interface {
	Resolve(ctx context.Context, animals []models.Animal, radiusMeters float64) ([]markers.Marker, error)
}

// ExportQueue stores documents in the background.
type ExportQueue interface {
	Enqueue(ctx context.Context, v any) (string, error)
}
