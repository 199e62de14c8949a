// Package search turns filter criteria into merged pages of adoptable animals.
package search

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/models"
)

const (
	// MaxPageSize is the largest page the upstream accepts.
	MaxPageSize = 100
	// DefaultParallelism bounds concurrent fan-out requests.
	DefaultParallelism = 4
)

// AnimalSearcher runs one upstream search request.
type AnimalSearcher interface {
	SearchAnimals(ctx context.Context, query url.Values) (models.AnimalPage, error)
}

// Result is one page of animals. FailedTypes lists the fan-out categories
// whose request failed and were left out of Animals.
type Result struct {
	Animals     []models.Animal `json:"animals"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalCount  int             `json:"totalCount"`
	FailedTypes []string        `json:"failedTypes,omitempty"`
}

// Orchestrator executes single-type searches directly and multi-type searches
// as a fan-out of one request per type.
type Orchestrator struct {
	api         AnimalSearcher
	logger      *slog.Logger
	parallelism int
}

// NewOrchestrator constructs an Orchestrator. parallelism <= 0 uses
// DefaultParallelism.
func NewOrchestrator(api AnimalSearcher, parallelism int, logger *slog.Logger) *Orchestrator {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{api: api, logger: logger, parallelism: parallelism}
}

// Search fetches the requested page for location and criteria.
func (o *Orchestrator) Search(ctx context.Context, location string, page, pageSize int, criteria filters.Criteria) (result Result, err error) {
	if o == nil || o.api == nil {
		return Result{}, ErrSearcherUnavailable
	}

	if logging.FromContext(ctx) == slog.Default() {
		ctx = logging.WithLogger(ctx, o.logger)
	}
	criteria = criteria.Normalize()
	page, pageSize = clampPage(page, pageSize)
	types := criteria.EffectiveTypes()

	ctx, span := logging.StartSpan(ctx, "search", "location", location, "types", len(types))
	defer func() { span.EndWithError(err) }()

	base := criteria.ToQuery(location)
	base.Set("status", "adoptable")
	// ToQuery may have set a single type; the mode below decides what to send.
	base.Del("type")

	if len(types) <= 1 {
		return o.single(ctx, base, types, page, pageSize)
	}
	return o.fanOut(ctx, base, types, criteria.Sort), nil
}

func (o *Orchestrator) single(ctx context.Context, base url.Values, types []string, page, pageSize int) (Result, error) {
	query := cloneValues(base)
	if len(types) == 1 {
		query.Set("type", types[0])
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))

	resp, err := o.api.SearchAnimals(ctx, query)
	if err != nil {
		return Result{}, wrapError(err)
	}

	result := Result{
		Animals:     resp.Animals,
		CurrentPage: page,
		TotalPages:  page,
		TotalCount:  len(resp.Animals),
	}
	if p := resp.Pagination; p != nil {
		result.CurrentPage = p.CurrentPage
		result.TotalPages = p.TotalPages
		result.TotalCount = p.TotalCount
	}
	if result.Animals == nil {
		result.Animals = []models.Animal{}
	}
	return result, nil
}

func (o *Orchestrator) fanOut(ctx context.Context, base url.Values, types []string, sortBy string) Result {
	logger := logging.FromContext(ctx)
	slots := make([][]models.Animal, len(types))
	failed := make([]bool, len(types))

	// Per-type failures are recorded, never returned, so the group never cancels.
	var g errgroup.Group
	g.SetLimit(o.parallelism)
	for i, animalType := range types {
		g.Go(func() error {
			query := cloneValues(base)
			query.Set("type", animalType)
			query.Set("page", "1")
			query.Set("limit", strconv.Itoa(MaxPageSize))

			resp, err := o.api.SearchAnimals(ctx, query)
			if err != nil {
				failed[i] = true
				logger.Warn("fan-out search failed", "type", animalType, "error", err)
				return nil
			}
			slots[i] = resp.Animals
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]models.Animal, 0)
	var failedTypes []string
	for i, animals := range slots {
		if failed[i] {
			failedTypes = append(failedTypes, types[i])
			continue
		}
		merged = append(merged, animals...)
	}

	if sortBy == filters.SortDistance {
		SortByDistance(merged)
	}

	return Result{
		Animals:     merged,
		CurrentPage: 1,
		TotalPages:  1,
		TotalCount:  len(merged),
		FailedTypes: failedTypes,
	}
}

// SortByDistance stable-sorts animals nearest first. A missing distance sorts
// last.
func SortByDistance(animals []models.Animal) {
	sort.SliceStable(animals, func(i, j int) bool {
		return distanceOf(animals[i]) < distanceOf(animals[j])
	})
}

func distanceOf(a models.Animal) float64 {
	if a.Distance == nil {
		return math.Inf(1)
	}
	return *a.Distance
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+3)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
