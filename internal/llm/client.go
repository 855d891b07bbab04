// Package llm defines the client configuration that profiles persist: the
// parameters needed to construct a chat-completion client for a remote
// model provider. Network behavior lives with the consumer; this package
// only owns the document shape and its (de)serialization.
package llm

import (
	"encoding/json"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// Known providers.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderDeepSeek   = "deepseek"
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// RedactedAPIKey replaces the api_key field whenever secrets are withheld
// from a read surface that still needs to show the field exists.
const RedactedAPIKey = "***"

// Client is a fully described LLM client configuration. APIKey is the only
// secret-bearing field; Serialize omits it unless secrets are requested.
type Client struct {
	UsageID  string `json:"usage_id"`
	Model    string `json:"model"`
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty"`

	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
	TimeoutSeconds  int      `json:"timeout_seconds,omitempty"`

	// CustomContext is free-form operator guidance sent with every request.
	CustomContext string `json:"custom_context,omitempty"`
}

// Validate checks the document invariants.
func (c *Client) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.UsageID, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Provider, validation.In(
			ProviderAnthropic, ProviderOpenAI, ProviderGemini,
			ProviderDeepSeek, ProviderOllama, ProviderOpenRouter,
		)),
		validation.Field(&c.MaxOutputTokens, validation.Min(0)),
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("llm: client %q: %v: %w", c.UsageID, err, apperr.ErrValidation)
	}
	return nil
}

// Serialize renders the profile document. When includeSecrets is false the
// api_key field is omitted entirely rather than blanked, so a document
// saved without secrets round-trips to a key-less client.
func (c *Client) Serialize(includeSecrets bool) ([]byte, error) {
	doc := *c
	if !includeSecrets {
		doc.APIKey = ""
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("llm: serialize %q: %w", c.UsageID, err)
	}
	return data, nil
}

// Redacted returns a copy safe for read surfaces: the api_key presence is
// preserved but its value is masked.
func (c *Client) Redacted() *Client {
	out := *c
	if out.APIKey != "" {
		out.APIKey = RedactedAPIKey
	}
	return &out
}

// Parse deserializes and validates a profile document.
func Parse(data []byte) (*Client, error) {
	var c Client
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("llm: parse document: %v: %w", err, apperr.ErrValidation)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromJSON reads a profile document from disk.
func LoadFromJSON(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("llm: read %s: %w", path, err)
	}
	return Parse(data)
}
