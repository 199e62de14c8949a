package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// GeocodeHandler exposes forward and reverse lookups.
type GeocodeHandler struct {
	Geocoder Geocoder
}

// Forward handles GET /api/v1/geocode?q=.
func (h GeocodeHandler) Forward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Geocoder == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "geocoding unavailable")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(ctx, w, http.StatusBadRequest, "q is required")
		return
	}

	coord, ok := h.Geocoder.Geocode(ctx, query)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "location not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"query": query, "lat": coord.Lat, "lng": coord.Lng})
}

// Reverse handles GET /api/v1/geocode/reverse?lat=&lng=.
func (h GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Geocoder == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "geocoding unavailable")
		return
	}

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(ctx, w, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}

	place, ok := h.Geocoder.Reverse(ctx, lat, lng)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "location not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"lat": place.Lat, "lng": place.Lng, "formatted": place.Formatted})
}
