package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/pagination"
	"github.com/petpalfinder/backend/internal/petfinder"
	"github.com/petpalfinder/backend/internal/search"
)

const maxRequestBytes = 1 << 20

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var apiErr *petfinder.APIError
	switch {
	case errors.Is(err, pagination.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, pagination.ErrSuperseded), errors.Is(err, pagination.ErrNotStarted):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, search.ErrSearcherUnavailable), errors.Is(err, petfinder.ErrClientUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var searchErr *search.Error
	var netErr *petfinder.NetworkError
	var authErr *auth.AuthError
	if errors.As(err, &searchErr) || errors.As(err, &apiErr) || errors.As(err, &netErr) || errors.As(err, &authErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
