// Package pagination tracks the paged result list of one search context.
package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/models"
	"github.com/petpalfinder/backend/internal/search"
)

// DefaultPageSize matches the upstream maximum.
const DefaultPageSize = search.MaxPageSize

var (
	// ErrSuperseded is returned to a caller whose response arrived after a
	// newer search replaced the context. Session state is left untouched.
	ErrSuperseded = errors.New("pagination: search superseded")
	// ErrNotStarted is returned when paging a session that never searched.
	ErrNotStarted = errors.New("pagination: session has no search")
)

// Searcher fetches one page of results.
type Searcher interface {
	Search(ctx context.Context, location string, page, pageSize int, criteria filters.Criteria) (search.Result, error)
}

// Status is the load state of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	Location    string           `json:"location"`
	Filters     filters.Criteria `json:"filters"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	TotalCount  int              `json:"totalCount"`
	Animals     []models.Animal  `json:"animals"`
	FailedTypes []string         `json:"failedTypes,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Session accumulates pages for a location and filter selection. A new search
// or filter change bumps the generation so responses to older requests are
// discarded.
type Session struct {
	ID string

	searcher Searcher
	pageSize int

	mu          sync.Mutex
	generation  uint64
	started     bool
	location    string
	criteria    filters.Criteria
	status      Status
	currentPage int
	totalPages  int
	totalCount  int
	animals     []models.Animal
	failedTypes []string
	lastErr     error
}

// NewSession constructs an idle session.
func NewSession(id string, searcher Searcher, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{ID: id, searcher: searcher, pageSize: pageSize}
}

// Start resets the session for a new location search and loads page 1.
func (s *Session) Start(ctx context.Context, location string, criteria filters.Criteria) error {
	s.mu.Lock()
	s.location = location
	s.criteria = criteria.Normalize()
	s.started = true
	gen := s.resetLocked()
	s.status = StatusLoading
	s.mu.Unlock()

	return s.load(ctx, gen, 1, true)
}

// ApplyFilters resets the session with new criteria for the current location
// and loads page 1.
func (s *Session) ApplyFilters(ctx context.Context, criteria filters.Criteria) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.criteria = criteria.Normalize()
	gen := s.resetLocked()
	s.status = StatusLoading
	s.mu.Unlock()

	return s.load(ctx, gen, 1, true)
}

// NextPage appends the following page. It reports false without calling the
// searcher when a load is in flight or the last page is already loaded.
func (s *Session) NextPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return false, ErrNotStarted
	}
	if s.status == StatusLoading || s.currentPage >= s.totalPages {
		s.mu.Unlock()
		return false, nil
	}
	gen := s.generation
	next := s.currentPage + 1
	s.status = StatusLoading
	s.mu.Unlock()

	if err := s.load(ctx, gen, next, false); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.ID,
		Status:      s.status.String(),
		Location:    s.location,
		Filters:     s.criteria,
		CurrentPage: s.currentPage,
		TotalPages:  s.totalPages,
		TotalCount:  s.totalCount,
		Animals:     append([]models.Animal{}, s.animals...),
		FailedTypes: append([]string(nil), s.failedTypes...),
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// resetLocked forces Idle with page 1 and no results under a new generation.
func (s *Session) resetLocked() uint64 {
	s.generation++
	s.status = StatusIdle
	s.currentPage = 1
	s.totalPages = 1
	s.totalCount = 0
	s.animals = nil
	s.failedTypes = nil
	s.lastErr = nil
	return s.generation
}

func (s *Session) load(ctx context.Context, gen uint64, page int, replace bool) error {
	s.mu.Lock()
	location, criteria := s.location, s.criteria
	s.mu.Unlock()

	result, err := s.searcher.Search(ctx, location, page, s.pageSize, criteria)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrSuperseded
	}
	if err != nil {
		s.status = StatusFailed
		s.lastErr = err
		return err
	}

	if replace {
		s.animals = append([]models.Animal(nil), result.Animals...)
	} else {
		s.animals = append(s.animals, result.Animals...)
	}
	s.currentPage = result.CurrentPage
	s.totalPages = result.TotalPages
	if s.currentPage == 0 && s.totalPages == 0 {
		s.currentPage, s.totalPages = page, page
	}
	s.totalCount = result.TotalCount
	s.failedTypes = result.FailedTypes
	s.lastErr = nil
	s.status = StatusLoaded
	return nil
}
