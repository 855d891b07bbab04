package llm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestValidate(t *testing.T) {
	c := &Client{UsageID: "agent", Model: "claude-sonnet-4", Provider: ProviderAnthropic}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if err := (&Client{Model: "m"}).Validate(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing usage id should fail validation, got %v", err)
	}
	if err := (&Client{UsageID: "a", Model: "m", Provider: "mystery"}).Validate(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown provider should fail validation, got %v", err)
	}
}

func TestSerializeOmitsSecrets(t *testing.T) {
	c := &Client{UsageID: "agent", Model: "gpt-4.1", APIKey: "sk-secret"}

	withSecrets, err := c.Serialize(true)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(withSecrets), "sk-secret") {
		t.Error("secrets requested but api_key missing")
	}

	withoutSecrets, err := c.Serialize(false)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if strings.Contains(string(withoutSecrets), "sk-secret") {
		t.Error("api_key leaked into secret-free document")
	}
	if strings.Contains(string(withoutSecrets), "api_key") {
		t.Error("api_key field should be omitted entirely, not blanked")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	temp := 0.2
	c := &Client{
		UsageID:     "agent",
		Model:       "claude-sonnet-4",
		Provider:    ProviderAnthropic,
		APIKey:      "sk-secret",
		Temperature: &temp,
	}
	data, err := c.Serialize(true)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.APIKey != "sk-secret" || got.Model != c.Model {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Errorf("temperature lost in round trip: %v", got.Temperature)
	}
}

func TestRedacted(t *testing.T) {
	c := &Client{UsageID: "agent", Model: "m", APIKey: "sk-secret"}
	r := c.Redacted()
	if r.APIKey != RedactedAPIKey {
		t.Errorf("Redacted APIKey = %q", r.APIKey)
	}
	if c.APIKey != "sk-secret" {
		t.Error("Redacted must not mutate the original")
	}

	// A key-less client stays key-less rather than gaining a placeholder.
	r = (&Client{UsageID: "a", Model: "m"}).Redacted()
	if r.APIKey != "" {
		t.Errorf("Redacted key-less APIKey = %q, want empty", r.APIKey)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte(`{"model":"m"}`)); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("document without usage_id should fail, got %v", err)
	}
	if _, err := Parse([]byte("not json")); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("malformed document should fail, got %v", err)
	}
}

func TestLoadFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.json")
	doc := `{"usage_id":"agent","model":"gpt-4.1","provider":"openai"}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	if c.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q", c.Provider)
	}

	if _, err := LoadFromJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
