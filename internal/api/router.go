package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taxonomy/internal/taxonservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *taxonservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/taxonomy", h.GetTaxonomy)
	r.Get("/taxonomy/entries/{name}", h.GetEntry)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
