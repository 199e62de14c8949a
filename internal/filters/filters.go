// Package filters holds the search filter model and its conversions to upstream
// query parameters and to the flat preference store.
package filters

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultDistanceKm is the search radius used when none was chosen.
	DefaultDistanceKm = 50
	// MaxDistanceMiles is the largest radius the upstream API accepts.
	MaxDistanceMiles = 500

	SortDistance = "distance"
	SortRecent   = "recent"

	kmToMiles = 0.621371
)

// Criteria is the canonical filter selection. Set-valued fields hold lowercase
// values in selection order without duplicates.
type Criteria struct {
	Types   []string `json:"types,omitempty"`
	Genders []string `json:"genders,omitempty"`
	Ages    []string `json:"ages,omitempty"`
	Sizes   []string `json:"sizes,omitempty"`

	// Type is the single-select type written by older clients. It only
	// applies when Types is empty.
	Type string `json:"type,omitempty"`

	GoodWithChildren bool `json:"goodWithChildren,omitempty"`
	GoodWithDogs     bool `json:"goodWithDogs,omitempty"`
	GoodWithCats     bool `json:"goodWithCats,omitempty"`

	DistanceKm int    `json:"distanceKm"`
	Sort       string `json:"sort,omitempty"`
}

// Defaults returns the baseline filter, seeded with typeHint when given.
func Defaults(typeHint string) Criteria {
	c := Criteria{
		DistanceKm: DefaultDistanceKm,
		Sort:       SortDistance,
	}
	if hint := normalizeValue(typeHint); hint != "" {
		c.Types = []string{hint}
	}
	return c
}

// Normalize lowercases, trims and de-duplicates every set and the scalar
// string fields.
func (c Criteria) Normalize() Criteria {
	c.Types = normalizeSet(c.Types)
	c.Genders = normalizeSet(c.Genders)
	c.Ages = normalizeSet(c.Ages)
	c.Sizes = normalizeSet(c.Sizes)
	c.Type = normalizeValue(c.Type)
	c.Sort = normalizeValue(c.Sort)
	return c
}

// EffectiveTypes returns Types when set, otherwise the legacy Type, otherwise
// nil (no type constraint).
func (c Criteria) EffectiveTypes() []string {
	if types := normalizeSet(c.Types); len(types) > 0 {
		return types
	}
	if t := normalizeValue(c.Type); t != "" {
		return []string{t}
	}
	return nil
}

// ToQuery converts the criteria into upstream search parameters. Boolean flags
// are only emitted when true; false means no constraint.
func (c Criteria) ToQuery(location string) url.Values {
	c = c.Normalize()
	q := url.Values{}

	if types := c.EffectiveTypes(); len(types) > 0 {
		q.Set("type", strings.Join(types, ","))
	}
	setCSV(q, "gender", c.Genders)
	setCSV(q, "age", c.Ages)
	setCSV(q, "size", c.Sizes)

	if c.GoodWithChildren {
		q.Set("good_with_children", "true")
	}
	if c.GoodWithDogs {
		q.Set("good_with_dogs", "true")
	}
	if c.GoodWithCats {
		q.Set("good_with_cats", "true")
	}

	if loc := strings.TrimSpace(location); loc != "" {
		q.Set("location", loc)
	}
	q.Set("distance", strconv.Itoa(KmToMiles(c.DistanceKm)))
	if c.Sort != "" {
		q.Set("sort", c.Sort)
	}
	return q
}

// KmToMiles converts a radius to whole miles, clamped to [0, MaxDistanceMiles].
func KmToMiles(km int) int {
	miles := int(math.Round(float64(km) * kmToMiles))
	if miles < 0 {
		return 0
	}
	if miles > MaxDistanceMiles {
		return MaxDistanceMiles
	}
	return miles
}

func setCSV(q url.Values, key string, values []string) {
	if len(values) == 0 {
		return
	}
	q.Set(key, strings.Join(values, ","))
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = normalizeValue(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
