// Package testutil provides shared test helpers for setting up profile
// stores and catalog databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/catalog"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/profilestore"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a profile store backed by a temporary directory.
func TestStore(t *testing.T) *profilestore.Store {
	t.Helper()
	store, err := profilestore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestClient returns a client suitable for store and registry tests.
func TestClient(usageID, model string) *llm.Client {
	return &llm.Client{
		UsageID:  usageID,
		Model:    model,
		Provider: llm.ProviderAnthropic,
		APIKey:   "sk-test-key",
	}
}
