package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/models"
	"github.com/petpalfinder/backend/internal/petfinder"
)

type stubSearcher struct {
	mu      sync.Mutex
	queries []url.Values
	byType  map[string]models.AnimalPage
	errs    map[string]error
	page    models.AnimalPage
	err     error
}

func (s *stubSearcher) SearchAnimals(_ context.Context, query url.Values) (models.AnimalPage, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	t := query.Get("type")
	if err, ok := s.errs[t]; ok {
		return models.AnimalPage{}, err
	}
	if page, ok := s.byType[t]; ok {
		return page, nil
	}
	return s.page, s.err
}

func animal(id int64, distance *float64) models.Animal {
	return models.Animal{ID: id, Distance: distance}
}

func dist(v float64) *float64 { return &v }

func TestSearchSingleTypeReturnsServerPagination(t *testing.T) {
	api := &stubSearcher{page: models.AnimalPage{
		Animals:    []models.Animal{animal(1, dist(1)), animal(2, dist(2))},
		Pagination: &models.Pagination{CurrentPage: 2, TotalPages: 5, TotalCount: 90},
	}}
	orch := NewOrchestrator(api, 0, nil)

	criteria := filters.Defaults("dog")
	result, err := orch.Search(context.Background(), "98101", 2, 20, criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.CurrentPage != 2 || result.TotalPages != 5 || result.TotalCount != 90 {
		t.Fatalf("unexpected pagination %+v", result)
	}
	if len(api.queries) != 1 {
		t.Fatalf("expected one request got %d", len(api.queries))
	}
	q := api.queries[0]
	for key, want := range map[string]string{
		"type":     "dog",
		"status":   "adoptable",
		"page":     "2",
		"limit":    "20",
		"distance": "31",
		"location": "98101",
		"sort":     "distance",
	} {
		if got := q.Get(key); got != want {
			t.Fatalf("query %s = %q want %q", key, got, want)
		}
	}
}

func TestSearchWithoutTypeOmitsTypeParam(t *testing.T) {
	api := &stubSearcher{}
	orch := NewOrchestrator(api, 0, nil)

	result, err := orch.Search(context.Background(), "98101", 0, 500, filters.Defaults(""))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	q := api.queries[0]
	if q.Has("type") {
		t.Fatalf("expected no type constraint got %q", q.Get("type"))
	}
	if q.Get("page") != "1" || q.Get("limit") != "100" {
		t.Fatalf("page/limit not clamped: %v", q)
	}
	if result.CurrentPage != 1 || result.TotalPages != 1 {
		t.Fatalf("absent pagination should pin to requested page, got %+v", result)
	}
	if result.Animals == nil {
		t.Fatal("expected empty, non-nil animals")
	}
}

func TestSearchKeepsEmptyServerPagination(t *testing.T) {
	api := &stubSearcher{page: models.AnimalPage{
		Pagination: &models.Pagination{CurrentPage: 1, TotalPages: 0, TotalCount: 0},
	}}
	orch := NewOrchestrator(api, 0, nil)

	result, err := orch.Search(context.Background(), "98101", 3, 20, filters.Defaults("dog"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.CurrentPage != 1 || result.TotalPages != 0 || result.TotalCount != 0 {
		t.Fatalf("expected server pagination verbatim got %+v", result)
	}
}

func TestSearchSingleTypeFailureIsSurfaced(t *testing.T) {
	api := &stubSearcher{err: &petfinder.APIError{Status: http.StatusBadRequest, Body: "bad location"}}
	orch := NewOrchestrator(api, 0, nil)

	_, err := orch.Search(context.Background(), "nowhere", 1, 10, filters.Defaults("cat"))
	var searchErr *Error
	if !errors.As(err, &searchErr) {
		t.Fatalf("expected search error got %v", err)
	}
	if searchErr.Status != http.StatusBadRequest || searchErr.Body != "bad location" {
		t.Fatalf("unexpected error %+v", searchErr)
	}
	if searchErr.Error() != "search failed: HTTP 400 - bad location" {
		t.Fatalf("unexpected message %q", searchErr.Error())
	}
	var apiErr *petfinder.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected cause to unwrap to APIError")
	}
}

func TestSearchAuthFailureIsSurfaced(t *testing.T) {
	api := &stubSearcher{err: &auth.AuthError{Status: http.StatusUnauthorized}}
	orch := NewOrchestrator(api, 0, nil)

	_, err := orch.Search(context.Background(), "98101", 1, 10, filters.Defaults(""))
	var authErr *auth.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected auth error in chain got %v", err)
	}
}

func TestSearchFanOutMergesAndSorts(t *testing.T) {
	api := &stubSearcher{byType: map[string]models.AnimalPage{
		"cat": {Animals: []models.Animal{animal(1, dist(5)), animal(2, nil), animal(3, dist(1))}},
		"dog": {Animals: []models.Animal{animal(4, dist(3)), animal(5, dist(0.5))}},
	}}
	orch := NewOrchestrator(api, 2, nil)

	criteria := filters.Defaults("")
	criteria.Types = []string{"cat", "dog"}
	result, err := orch.Search(context.Background(), "98101", 3, 20, criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Animals) != 5 {
		t.Fatalf("expected 5 merged animals got %d", len(result.Animals))
	}
	if result.CurrentPage != 1 || result.TotalPages != 1 || result.TotalCount != 5 {
		t.Fatalf("unexpected pagination %+v", result)
	}

	wantOrder := []int64{5, 3, 4, 1, 2}
	for i, id := range wantOrder {
		if result.Animals[i].ID != id {
			t.Fatalf("position %d: got id %d want %d", i, result.Animals[i].ID, id)
		}
	}
	if result.Animals[4].Distance != nil {
		t.Fatal("expected nil distance last")
	}

	if len(api.queries) != 2 {
		t.Fatalf("expected 2 requests got %d", len(api.queries))
	}
	for _, q := range api.queries {
		if q.Get("page") != "1" || q.Get("limit") != "100" {
			t.Fatalf("fan-out request not pinned to page 1/limit 100: %v", q)
		}
		if q.Get("type") != "cat" && q.Get("type") != "dog" {
			t.Fatalf("unexpected type %q", q.Get("type"))
		}
	}
}

func TestSearchFanOutKeepsTypeOrderWithoutDistanceSort(t *testing.T) {
	api := &stubSearcher{byType: map[string]models.AnimalPage{
		"dog":    {Animals: []models.Animal{animal(1, dist(9))}},
		"cat":    {Animals: []models.Animal{animal(2, dist(1))}},
		"rabbit": {Animals: []models.Animal{animal(3, dist(4))}},
	}}
	orch := NewOrchestrator(api, 3, nil)

	criteria := filters.Defaults("")
	criteria.Sort = filters.SortRecent
	criteria.Types = []string{"dog", "cat", "rabbit"}
	result, err := orch.Search(context.Background(), "98101", 1, 100, criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for i, id := range []int64{1, 2, 3} {
		if result.Animals[i].ID != id {
			t.Fatalf("position %d: got id %d want %d", i, result.Animals[i].ID, id)
		}
	}
}

func TestSearchFanOutOmitsFailedType(t *testing.T) {
	api := &stubSearcher{
		byType: map[string]models.AnimalPage{
			"cat": {Animals: []models.Animal{animal(1, dist(1)), animal(2, dist(2))}},
		},
		errs: map[string]error{"dog": &petfinder.NetworkError{Op: "search animals", Err: errors.New("timeout")}},
	}
	orch := NewOrchestrator(api, 0, nil)

	criteria := filters.Defaults("")
	criteria.Types = []string{"cat", "dog"}
	result, err := orch.Search(context.Background(), "98101", 1, 100, criteria)
	if err != nil {
		t.Fatalf("partial failure must not fail the search: %v", err)
	}
	if len(result.Animals) != 2 {
		t.Fatalf("expected 2 animals got %d", len(result.Animals))
	}
	if len(result.FailedTypes) != 1 || result.FailedTypes[0] != "dog" {
		t.Fatalf("unexpected failed types %v", result.FailedTypes)
	}
}

func TestSearchWithoutSearcher(t *testing.T) {
	var orch *Orchestrator
	if _, err := orch.Search(context.Background(), "", 1, 1, filters.Criteria{}); !errors.Is(err, ErrSearcherUnavailable) {
		t.Fatalf("expected ErrSearcherUnavailable got %v", err)
	}
}
