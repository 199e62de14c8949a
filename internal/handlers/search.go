package handlers

import (
	"net/http"
	"strings"

	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/pagination"
)

// SearchHandler drives paged search sessions.
type SearchHandler struct {
	Sessions SessionRegistry
	Exports  ExportQueue
}

type searchRequest struct {
	Location  string            `json:"location"`
	Filters   *filters.Criteria `json:"filters,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
}

type filtersRequest struct {
	Filters filters.Criteria `json:"filters"`
}

// newFiltersRequest seeds the payload with the default filters so omitted
// fields keep their defaults rather than zero values.
func newFiltersRequest() filtersRequest {
	return filtersRequest{Filters: filters.Defaults("")}
}

type nextPageResponse struct {
	Loaded  bool                `json:"loaded"`
	Session pagination.Snapshot `json:"session"`
}

// Start handles POST /api/v1/search. It creates a session, or resets the one
// named by sessionId, and loads the first page.
func (h SearchHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "search unavailable")
		return
	}

	defaults := filters.Defaults("")
	req := searchRequest{Filters: &defaults}
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid search payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		respondError(ctx, w, http.StatusBadRequest, "location is required")
		return
	}

	criteria := filters.Defaults("")
	if req.Filters != nil {
		criteria = *req.Filters
	}

	var session *pagination.Session
	if req.SessionID != "" {
		existing, err := h.Sessions.Get(req.SessionID)
		if err != nil {
			respondError(ctx, w, statusFor(err), err.Error())
			return
		}
		session = existing
	} else {
		session = h.Sessions.Create()
	}

	if err := session.Start(ctx, req.Location, criteria); err != nil {
		logger.Warn("search failed", "sessionId", session.ID, "error", err)
		respondJSON(ctx, w, statusFor(err), map[string]string{"error": err.Error(), "sessionId": session.ID})
		return
	}

	respondJSON(ctx, w, http.StatusOK, session.Snapshot())
}

// ApplyFilters handles POST /api/v1/search/{id}/filters.
func (h SearchHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	req := newFiltersRequest()
	if err := decodeJSON(w, r, &req); err != nil {
		logging.FromContext(ctx).Warn("invalid filters payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.ApplyFilters(ctx, req.Filters); err != nil {
		respondJSON(ctx, w, statusFor(err), map[string]string{"error": err.Error(), "sessionId": session.ID})
		return
	}

	respondJSON(ctx, w, http.StatusOK, session.Snapshot())
}

// Next handles POST /api/v1/search/{id}/next. Loaded is false when there was
// nothing to fetch.
func (h SearchHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	loaded, err := session.NextPage(ctx)
	if err != nil {
		respondJSON(ctx, w, statusFor(err), map[string]string{"error": err.Error(), "sessionId": session.ID})
		return
	}

	respondJSON(ctx, w, http.StatusOK, nextPageResponse{Loaded: loaded, Session: session.Snapshot()})
}

// Get handles GET /api/v1/search/{id}.
func (h SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, session.Snapshot())
}

// Delete handles DELETE /api/v1/search/{id}.
func (h SearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Sessions == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "search unavailable")
		return
	}

	if !h.Sessions.Delete(r.PathValue("id")) {
		respondError(ctx, w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/v1/search/{id}/export. The snapshot is taken now
// and written in the background under the returned key.
func (h SearchHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Exports == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "exports unavailable")
		return
	}

	key, err := h.Exports.Enqueue(ctx, session.Snapshot())
	if err != nil {
		logging.FromContext(ctx).Warn("export not queued", "sessionId", session.ID, "error", err)
		respondError(ctx, w, http.StatusServiceUnavailable, "export queue unavailable")
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"sessionId": session.ID, "key": key})
}

func (h SearchHandler) session(w http.ResponseWriter, r *http.Request) (*pagination.Session, bool) {
	ctx := r.Context()
	if h.Sessions == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "search unavailable")
		return nil, false
	}

	session, err := h.Sessions.Get(r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, statusFor(err), "session not found")
		return nil, false
	}
	return session, true
}
