package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/repositories"
)

// ProfileHandler loads and saves a profile's filter selection.
type ProfileHandler struct {
	Prefs repositories.PrefsStore
}

type profileFiltersResponse struct {
	ProfileID string           `json:"profileId"`
	Stored    bool             `json:"stored"`
	Filters   filters.Criteria `json:"filters"`
}

// GetFilters handles GET /api/v1/profiles/{id}/filters. A profile without
// stored preferences gets the defaults, seeded by the optional type query.
func (h ProfileHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Prefs == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "preferences unavailable")
		return
	}

	profileID := strings.TrimSpace(r.PathValue("id"))
	if profileID == "" {
		respondError(ctx, w, http.StatusBadRequest, "profile id is required")
		return
	}
	typeHint := r.URL.Query().Get("type")

	prefs, err := h.Prefs.Load(ctx, profileID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusOK, profileFiltersResponse{ProfileID: profileID, Filters: filters.Defaults(typeHint)})
		return
	case err != nil:
		logging.FromContext(ctx).Error("load preferences failed", "profileId", profileID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileFiltersResponse{
		ProfileID: profileID,
		Stored:    true,
		Filters:   filters.FromPrefs(prefs, typeHint),
	})
}

// PutFilters handles PUT /api/v1/profiles/{id}/filters.
func (h ProfileHandler) PutFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	if h.Prefs == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "preferences unavailable")
		return
	}

	profileID := strings.TrimSpace(r.PathValue("id"))
	if profileID == "" {
		respondError(ctx, w, http.StatusBadRequest, "profile id is required")
		return
	}

	req := newFiltersRequest()
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid preferences payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs := req.Filters.ToPrefs()
	if err := h.Prefs.Save(ctx, profileID, prefs); err != nil {
		logger.Error("save preferences failed", "profileId", profileID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileFiltersResponse{
		ProfileID: profileID,
		Stored:    true,
		Filters:   filters.FromPrefs(prefs, ""),
	})
}
