package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/petpalfinder/backend/internal/logging"
)

// AnimalHandler serves single animal and organization records.
type AnimalHandler struct {
	Animals AnimalLookup
}

// GetAnimal handles GET /api/v1/animals/{id}.
func (h AnimalHandler) GetAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Animals == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "animal lookup unavailable")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "animal id must be a positive integer")
		return
	}

	animal, err := h.Animals.GetAnimal(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("animal lookup failed", "animalId", id, "error", err)
		respondError(ctx, w, statusFor(err), err.Error())
		return
	}

	respondJSON(ctx, w, http.StatusOK, animal)
}

// GetOrganization handles GET /api/v1/organizations/{id}.
func (h AnimalHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Animals == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "organization lookup unavailable")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondError(ctx, w, http.StatusBadRequest, "organization id is required")
		return
	}

	org, err := h.Animals.GetOrganization(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("organization lookup failed", "organizationId", id, "error", err)
		respondError(ctx, w, statusFor(err), err.Error())
		return
	}

	respondJSON(ctx, w, http.StatusOK, org)
}
