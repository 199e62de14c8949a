package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenNotFound indicates the token store holds no token.
	ErrTokenNotFound = errors.New("access token not found")
	// ErrMissingCredentials indicates the client id or secret was not configured.
	ErrMissingCredentials = errors.New("client credentials not configured")
)

// AuthError reports a failure to obtain a usable bearer token, either because
// the token endpoint refused the grant or because a freshly issued token was
// rejected with a second 401.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	switch {
	case e.Status > 0 && e.Err != nil:
		return fmt.Sprintf("auth failed: HTTP %d: %v", e.Status, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("auth failed: HTTP %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("auth failed: %v", e.Err)
	default:
		return "auth failed"
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
