package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/catalog"
	"github.com/starford/ansuz/internal/profilestore"
	"github.com/starford/ansuz/internal/registry"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *profilestore.Store, reg *registry.Registry, db *catalog.DB, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, reg, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Profile store.
	r.Get("/profiles", h.ListProfiles)
	r.Post("/profiles/import", h.ImportProfile)
	r.Get("/profiles/{name}", h.GetProfile)
	r.Put("/profiles/{name}", h.SaveProfile)
	r.Delete("/profiles/{name}", h.DeleteProfile)

	// Default binding.
	r.Get("/default", h.GetDefault)
	r.Put("/default", h.SetDefault)

	// Registry.
	r.Get("/usage-ids", h.UsageIDs)
	r.Get("/registry/{usageID}", h.ResolveUsageID)
	r.Post("/registry", h.AddClient)
	r.Post("/export", h.Export)

	// Catalog.
	r.Get("/search", h.Search)
	r.Get("/events/recent", h.RecentEvents)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
