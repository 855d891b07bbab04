package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/profilestore"
)

// Sync brings the catalog up to date with the store's index:
//   - new or changed profile documents are parsed and upserted
//   - entries removed from the index are deleted from the catalog
//
// Documents whose checksum is unchanged are skipped without re-parsing.
func Sync(db *DB, store *profilestore.Store, logger *slog.Logger) error {
	metas := store.Profiles()

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		known[m.Name] = struct{}{}

		doc, err := store.ReadDocument(m.Name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("name", m.Name), slog.String("error", err.Error()))
			continue
		}
		cs := sum(doc)
		if checksums[m.Name] == cs {
			continue
		}

		model := ""
		if client, parseErr := llm.Parse(doc); parseErr == nil {
			model = client.Model
		} else {
			logger.Warn("sync: parse failed", slog.String("name", m.Name), slog.String("error", parseErr.Error()))
		}

		row := ProfileRow{
			Name:        m.Name,
			File:        m.File,
			Description: m.Description,
			UsageID:     m.UsageID,
			Model:       model,
			Checksum:    cs,
			UpdatedAt:   time.Now(),
		}
		if err := db.UpsertProfile(row); err != nil {
			logger.Warn("sync: upsert failed", slog.String("name", m.Name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: cataloged", slog.String("name", m.Name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := known[name]; !ok {
			if err := db.DeleteProfile(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("name", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("name", name))
			}
		}
	}

	return nil
}

// sum returns the hex-encoded SHA-256 digest of data.
func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
