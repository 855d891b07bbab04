package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/profilestore"
)

// EventCallback is called after a watcher-driven catalog change. kind is
// "reloaded" when the index file changed on disk, "synced" after a
// document-driven catalog sync.
type EventCallback func(kind string)

// Watch starts an fsnotify watcher on the profile directory and processes
// change events until ctx is cancelled. External edits to config.json
// trigger a store reload plus a catalog sync; profile document changes are
// debounced into a single sync pass. The store's own writes flow through
// here too, which keeps the catalog fresh without explicit plumbing.
func Watch(ctx context.Context, db *DB, store *profilestore.Store, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.BaseDir()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", store.BaseDir()))

	// syncTimer debounces bursts of document writes into one sync pass.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb("synced")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)

			// Atomic-write temp files churn constantly; ignore them.
			if strings.HasPrefix(name, ".ansuz-tmp-") {
				continue
			}
			if !strings.HasSuffix(name, ".json") {
				continue
			}

			if name == models.ConfigFileName {
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if err := store.Reload(); err != nil {
					logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: index reloaded")
				if cb != nil {
					cb("reloaded")
				}
				scheduleSync()
				continue
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("watcher: document changed",
					slog.String("file", name),
					slog.String("op", ev.Op.String()))
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
