package petfinder

import (
	"errors"
	"fmt"
)

// ErrClientUnavailable indicates the client was not configured.
var ErrClientUnavailable = errors.New("petfinder client unavailable")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("petfinder: HTTP %d", e.Status)
	}
	return fmt.Sprintf("petfinder: HTTP %d - %s", e.Status, e.Body)
}

// NetworkError is a transport failure, timeouts included.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("petfinder %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
