package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/catalog"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/profilestore"
	"github.com/starford/ansuz/internal/registry"
)

const maxBodyBytes = 1 << 20 // profile documents are small

// Handler holds API route handlers.
type Handler struct {
	store *profilestore.Store
	reg   *registry.Registry
	db    *catalog.DB
}

// NewHandler creates a new Handler.
func NewHandler(store *profilestore.Store, reg *registry.Registry, db *catalog.DB) *Handler {
	return &Handler{store: store, reg: reg, db: db}
}

// includeSecrets reads the include_secrets query parameter; persistence
// defaults to keeping secrets, matching SaveProfile's contract.
func includeSecrets(r *http.Request) bool {
	return r.URL.Query().Get("include_secrets") != "false"
}

// ListProfiles handles GET /profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, _ *http.Request) {
	cfg := h.store.Config()
	writeJSON(w, http.StatusOK, ProfileListResponse{
		DefaultProfile: cfg.DefaultProfile,
		Profiles:       cfg.Profiles,
	})
}

// GetProfile handles GET /profiles/{name}. The document is always
// redacted; secrets never leave the store over HTTP.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	client, err := h.store.LoadProfile(name)
	if err != nil {
		writeError(w, err)
		return
	}
	meta, _ := h.store.Config().Find(name)
	writeJSON(w, http.StatusOK, ProfileDetail{
		Metadata: meta,
		Client:   client.Redacted(),
	})
}

// SaveProfile handles PUT /profiles/{name}.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Client.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.SaveProfile(name, req.Description, &req.Client, includeSecrets(r)); err != nil {
		writeError(w, err)
		return
	}
	meta, _ := h.store.Config().Find(name)
	writeJSON(w, http.StatusCreated, ProfileDetail{
		Metadata: meta,
		Client:   req.Client.Redacted(),
	})
}

// DeleteProfile handles DELETE /profiles/{name}.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.DeleteProfile(name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDefault handles GET /default.
func (h *Handler) GetDefault(w http.ResponseWriter, _ *http.Request) {
	client, err := h.store.DefaultProfile()
	if err != nil {
		writeError(w, err)
		return
	}
	resp := DefaultResponse{Name: h.store.Config().DefaultProfile}
	if client != nil {
		resp.Client = client.Redacted()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetDefault handles PUT /default.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SetDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.store.SetDefaultProfile(req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UsageIDs handles GET /usage-ids.
func (h *Handler) UsageIDs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, UsageIDsResponse{UsageIDs: h.reg.UsageIDs()})
}

// ResolveUsageID handles GET /registry/{usageID}. A disk hit is promoted
// into the registry's memory tier as a side effect.
func (h *Handler) ResolveUsageID(w http.ResponseWriter, r *http.Request) {
	usageID := chi.URLParam(r, "usageID")
	client, err := h.reg.Get(usageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client.Redacted())
}

// AddClient handles POST /registry.
func (h *Handler) AddClient(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var client llm.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := client.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := h.reg.Add(&client); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client.Redacted())
}

// Export handles POST /export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.reg.ExportProfiles(req.Path, req.IncludeSecrets); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.db.Search(q, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	results := make([]SearchResult, len(rows))
	for i, row := range rows {
		results[i] = SearchResult{Name: row.Name, Model: row.Model, Snippet: row.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// RecentEvents handles GET /events/recent.
func (h *Handler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.db.RecentEvents(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	events := make([]EventItem, len(rows))
	for i, row := range rows {
		events[i] = EventItem{
			ID:        row.ID,
			Kind:      row.Kind,
			Profile:   row.Profile,
			UsageID:   row.UsageID,
			Model:     row.Model,
			CreatedAt: row.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: events})
}
