package api

import (
	"time"

	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/models"
)

// SaveProfileRequest is the request body for creating or overwriting a
// profile. Secrets are persisted unless the include_secrets query
// parameter is "false".
type SaveProfileRequest struct {
	Description string     `json:"description"`
	Client      llm.Client `json:"client"`
}

// SetDefaultRequest is the request body for binding the default profile.
type SetDefaultRequest struct {
	Name string `json:"name"`
}

// ExportRequest is the request body for exporting in-memory registry
// entries to a profile directory.
type ExportRequest struct {
	Path           string `json:"path,omitempty"`
	IncludeSecrets bool   `json:"include_secrets"`
}

// ProfileListResponse wraps the index projection.
type ProfileListResponse struct {
	DefaultProfile *string                  `json:"default_profile"`
	Profiles       []models.ProfileMetadata `json:"profiles"`
}

// ProfileDetail is a metadata entry together with its (redacted) document.
type ProfileDetail struct {
	Metadata models.ProfileMetadata `json:"metadata"`
	Client   *llm.Client            `json:"client"`
}

// DefaultResponse carries the default profile binding and its (redacted)
// document. Both fields are null when no default is bound.
type DefaultResponse struct {
	Name   *string     `json:"name"`
	Client *llm.Client `json:"client"`
}

// UsageIDsResponse wraps the registry's usage-id union.
type UsageIDsResponse struct {
	UsageIDs []string `json:"usage_ids"`
}

// SearchResult is a single catalog search hit.
type SearchResult struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps catalog search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// EventItem is one entry of the catalog event log.
type EventItem struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Profile   string    `json:"profile,omitempty"`
	UsageID   string    `json:"usage_id,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventsResponse wraps recent event log entries.
type EventsResponse struct {
	Events []EventItem `json:"events"`
}

// ImportResponse is returned after a successful document import.
type ImportResponse struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	UsageID string `json:"usage_id,omitempty"`
}
