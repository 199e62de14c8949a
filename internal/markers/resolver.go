package markers

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/models"
)

const defaultParallelism = 4

// Geocoder resolves an address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Coordinate, bool)
}

// Resolver turns animals into declustered markers.
type Resolver struct {
	geocoder    Geocoder
	parallelism int
	// FallbackAddress is geocoded for animals without any address. Empty
	// drops them instead.
	FallbackAddress string
}

// NewResolver constructs a Resolver.
func NewResolver(geocoder Geocoder, parallelism int) *Resolver {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &Resolver{geocoder: geocoder, parallelism: parallelism}
}

// Resolve geocodes each animal's contact address, drops those that do not
// resolve, and spreads coincident markers by radiusMeters.
func (r *Resolver) Resolve(ctx context.Context, animals []models.Animal, radiusMeters float64) ([]Marker, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	ctx, span := logging.StartSpan(ctx, "markers.resolve", "animals", len(animals))
	defer span.End()

	slots := make([]*Marker, len(animals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, animal := range animals {
		query := FormatAddress(animal.Contact.Address)
		if query == "" {
			query = r.FallbackAddress
		}
		if query == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coord, ok := r.geocoder.Geocode(gctx, query)
			if ok {
				slots[i] = &Marker{AnimalID: animal.ID, Name: animal.Name, Point: coord}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make([]Marker, 0, len(animals))
	for _, m := range slots {
		if m != nil {
			resolved = append(resolved, *m)
		}
	}
	span.Annotate("resolved", len(resolved))
	return FanOut(resolved, radiusMeters), nil
}

// FormatAddress joins the non-blank address parts with ", ".
func FormatAddress(a models.Address) string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Address1, a.Address2, a.City, a.State, a.Postcode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
