// Package markers places animals on a map and spreads coincident points apart.
package markers

import (
	"fmt"
	"math"

	"github.com/petpalfinder/backend/internal/models"
)

const (
	// DefaultRadiusMeters is the spread radius for coincident markers.
	DefaultRadiusMeters = 12.0

	metersPerDegreeLat = 111320.0
)

// Marker is one animal's map point.
type Marker struct {
	AnimalID int64             `json:"animalId"`
	Name     string            `json:"name,omitempty"`
	Point    models.Coordinate `json:"point"`
}

// FanOut spreads markers sharing a coordinate (to 6 decimal places) evenly on
// a circle of radiusMeters around the first marker of the group. Unique
// markers are returned unchanged. Groups keep first-seen order.
func FanOut(markers []Marker, radiusMeters float64) []Marker {
	if len(markers) == 0 {
		return []Marker{}
	}

	var order []string
	buckets := make(map[string][]Marker)
	for _, m := range markers {
		key := bucketKey(m.Point)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], m)
	}

	out := make([]Marker, 0, len(markers))
	for _, key := range order {
		bucket := buckets[key]
		if len(bucket) == 1 {
			out = append(out, bucket[0])
			continue
		}

		origin := bucket[0].Point
		dLat := radiusMeters / metersPerDegreeLat
		dLng := radiusMeters / (metersPerDegreeLat * math.Cos(origin.Lat*math.Pi/180))
		n := float64(len(bucket))
		for i, m := range bucket {
			angle := 2 * math.Pi * float64(i) / n
			m.Point = models.Coordinate{
				Lat: origin.Lat + dLat*math.Sin(angle),
				Lng: origin.Lng + dLng*math.Cos(angle),
			}
			out = append(out, m)
		}
	}
	return out
}

func bucketKey(c models.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
