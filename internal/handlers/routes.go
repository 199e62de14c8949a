package handlers

import (
	"net/http"

	"github.com/petpalfinder/backend/internal/middleware"
	"github.com/petpalfinder/backend/internal/repositories"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	searches := SearchHandler{Sessions: deps.Sessions, Exports: deps.Exports}
	animals := AnimalHandler{Animals: deps.Animals}
	geocoder := GeocodeHandler{Geocoder: deps.Geocoder}
	markers := MarkerHandler{Sessions: deps.Sessions, Resolver: deps.Markers, Radius: deps.MarkerRadius}
	profiles := ProfileHandler{Prefs: deps.Prefs}

	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/search", searches.Start)
	api.HandleFunc("GET /api/v1/search/{id}", searches.Get)
	api.HandleFunc("DELETE /api/v1/search/{id}", searches.Delete)
	api.HandleFunc("POST /api/v1/search/{id}/filters", searches.ApplyFilters)
	api.HandleFunc("POST /api/v1/search/{id}/next", searches.Next)
	api.HandleFunc("POST /api/v1/search/{id}/export", searches.Export)
	api.HandleFunc("GET /api/v1/animals/{id}", animals.GetAnimal)
	api.HandleFunc("GET /api/v1/organizations/{id}", animals.GetOrganization)
	api.HandleFunc("GET /api/v1/geocode", geocoder.Forward)
	api.HandleFunc("GET /api/v1/geocode/reverse", geocoder.Reverse)
	api.HandleFunc("POST /api/v1/markers", markers.Resolve)
	api.HandleFunc("GET /api/v1/profiles/{id}/filters", profiles.GetFilters)
	api.HandleFunc("PUT /api/v1/profiles/{id}/filters", profiles.PutFilters)

	mux.HandleFunc("/healthz", health.Handle)
	mux.Handle("/api/v1/", middleware.Chain(api,
		middleware.APIKey(deps.APIKeyHash),
		middleware.RateLimit(deps.RateLimiter),
	))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions     SessionRegistry
	Animals      AnimalLookup
	Geocoder     Geocoder
	Markers      MarkerResolver
	Prefs        repositories.PrefsStore
	Exports      ExportQueue
	MarkerRadius float64
	APIKeyHash   string
	RateLimiter  middleware.RateLimiter
}
