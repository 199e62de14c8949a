package filters

import (
	"strconv"
	"strings"
)

// Preference keys. The plural keys are canonical; the singular ones are kept
// so that stores written by single-select clients stay readable both ways.
const (
	PrefTypes   = "types"
	PrefGenders = "genders"
	PrefAges    = "ages"
	PrefSizes   = "sizes"

	PrefType   = "type"
	PrefGender = "gender"
	PrefAge    = "age"
	PrefSize   = "size"

	PrefGoodWithChildren = "gwk"
	PrefGoodWithDogs     = "gwd"
	PrefGoodWithCats     = "gwc"
	PrefDistanceKm       = "distKm"
	PrefSort             = "sort"
)

// ToPrefs flattens the criteria into a string-keyed store. The legacy Type is
// folded into the type set through EffectiveTypes: it comes back from FromPrefs
// as Types, and a Type set alongside Types is not stored since it never affects
// a search.
func (c Criteria) ToPrefs() map[string]string {
	c = c.Normalize()
	types := c.EffectiveTypes()

	return map[string]string{
		PrefTypes:   strings.Join(types, ","),
		PrefGenders: strings.Join(c.Genders, ","),
		PrefAges:    strings.Join(c.Ages, ","),
		PrefSizes:   strings.Join(c.Sizes, ","),

		PrefType:   first(types),
		PrefGender: first(c.Genders),
		PrefAge:    first(c.Ages),
		PrefSize:   first(c.Sizes),

		PrefGoodWithChildren: strconv.FormatBool(c.GoodWithChildren),
		PrefGoodWithDogs:     strconv.FormatBool(c.GoodWithDogs),
		PrefGoodWithCats:     strconv.FormatBool(c.GoodWithCats),
		PrefDistanceKm:       strconv.Itoa(c.DistanceKm),
		PrefSort:             c.Sort,
	}
}

// FromPrefs rebuilds criteria from a store written by ToPrefs or by an older
// single-select client. Legacy singular values are merged into the matching
// set. fallbackType seeds the type set only when the store holds no type.
func FromPrefs(prefs map[string]string, fallbackType string) Criteria {
	c := Criteria{
		Types:   mergeLegacy(prefs, PrefTypes, PrefType),
		Genders: mergeLegacy(prefs, PrefGenders, PrefGender),
		Ages:    mergeLegacy(prefs, PrefAges, PrefAge),
		Sizes:   mergeLegacy(prefs, PrefSizes, PrefSize),

		GoodWithChildren: parseBool(prefs[PrefGoodWithChildren]),
		GoodWithDogs:     parseBool(prefs[PrefGoodWithDogs]),
		GoodWithCats:     parseBool(prefs[PrefGoodWithCats]),

		DistanceKm: DefaultDistanceKm,
		Sort:       normalizeValue(prefs[PrefSort]),
	}

	if raw := strings.TrimSpace(prefs[PrefDistanceKm]); raw != "" {
		if km, err := strconv.Atoi(raw); err == nil {
			c.DistanceKm = km
		}
	}
	if c.Sort == "" {
		c.Sort = SortDistance
	}
	if len(c.Types) == 0 {
		if hint := normalizeValue(fallbackType); hint != "" {
			c.Types = []string{hint}
		}
	}
	return c
}

func mergeLegacy(prefs map[string]string, canonical, legacy string) []string {
	values := splitCSV(prefs[canonical])
	if v := prefs[legacy]; v != "" {
		values = append(values, v)
	}
	return normalizeSet(values)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
