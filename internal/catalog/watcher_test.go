package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/profilestore"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_DocumentChangeSynced(t *testing.T) {
	store, db, logger := syncTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var kinds []string

	go Watch(ctx, db, store, logger, func(kind string) {
		mu.Lock()
		kinds = append(kinds, kind)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	if err := store.SaveProfile("agent", "", syncClient("agent-llm", "claude-sonnet-4"), true); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.AllChecksums()
		return cs["agent"] != ""
	}, "saved profile not cataloged by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, k := range kinds {
			if k == "synced" {
				return true
			}
		}
		return false
	}, "no synced callback delivered")
}

func TestWatcher_ExternalIndexEditReloads(t *testing.T) {
	store, db, logger := syncTestEnv(t)
	_ = store.SaveProfile("agent", "", syncClient("agent-llm", "m"), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, logger, nil)

	time.Sleep(100 * time.Millisecond)

	// Another writer rebinds the default directly on disk.
	other, err := profilestore.New(store.BaseDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := other.SetDefaultProfile("agent"); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cfg := store.Config()
		return cfg.DefaultProfile != nil && *cfg.DefaultProfile == "agent"
	}, "external index edit not reloaded")
}

func TestWatcher_IgnoresTempAndForeignFiles(t *testing.T) {
	store, db, logger := syncTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var calls int
	go Watch(ctx, db, store, logger, func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(store.BaseDir(), ".ansuz-tmp-123"), []byte("x"), 0o600)
	_ = os.WriteFile(filepath.Join(store.BaseDir(), "notes.txt"), []byte("x"), 0o600)

	time.Sleep(500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("callback fired %d times for ignorable files", calls)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	store, db, logger := syncTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, db, store, logger, nil) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after cancel")
	}
}
