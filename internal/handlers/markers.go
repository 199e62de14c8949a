package handlers

import (
	"net/http"

	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/markers"
)

// MarkerHandler turns a session's results into map markers.
type MarkerHandler struct {
	Sessions SessionRegistry
	Resolver MarkerResolver
	// Radius is used when the request gives none.
	Radius float64
}

type markersRequest struct {
	SessionID    string  `json:"sessionId"`
	RadiusMeters float64 `json:"radiusMeters,omitempty"`
}

type markersResponse struct {
	SessionID string           `json:"sessionId"`
	Markers   []markers.Marker `json:"markers"`
}

// Resolve handles POST /api/v1/markers.
func (h MarkerHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil || h.Resolver == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "markers unavailable")
		return
	}

	var req markersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid markers payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RadiusMeters < 0 {
		respondError(ctx, w, http.StatusBadRequest, "radiusMeters must not be negative")
		return
	}

	session, err := h.Sessions.Get(req.SessionID)
	if err != nil {
		respondError(ctx, w, statusFor(err), "session not found")
		return
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = h.Radius
	}

	snapshot := session.Snapshot()
	placed, err := h.Resolver.Resolve(ctx, snapshot.Animals, radius)
	if err != nil {
		logger.Error("marker resolution failed", "sessionId", session.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to place markers")
		return
	}

	respondJSON(ctx, w, http.StatusOK, markersResponse{SessionID: session.ID, Markers: placed})
}
