package search

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/petfinder"
)

// ErrSearcherUnavailable indicates the orchestrator has no API client.
var ErrSearcherUnavailable = errors.New("search: animal searcher unavailable")

// Error is a failed single-request search. Status is zero for transport
// failures.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("search failed: %v", e.Err)
	}
	return fmt.Sprintf("search failed: HTTP %d - %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *petfinder.APIError
	if errors.As(err, &apiErr) {
		return &Error{Status: apiErr.Status, Body: apiErr.Body, Err: err}
	}
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		status := authErr.Status
		if status == 0 {
			status = http.StatusUnauthorized
		}
		return &Error{Status: status, Body: authErr.Error(), Err: err}
	}
	return &Error{Err: err}
}
