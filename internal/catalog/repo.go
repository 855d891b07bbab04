package catalog

import (
	"fmt"
	"time"
)

// ProfileRow represents a row in the profiles table.
type ProfileRow struct {
	Name        string
	File        string
	Description string
	UsageID     string
	Model       string
	Checksum    string
	UpdatedAt   time.Time
}

// EventRow represents one entry in the event log.
type EventRow struct {
	ID        int64
	Kind      string
	Profile   string
	UsageID   string
	Model     string
	CreatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Name    string
	Model   string
	Snippet string
}

// UpsertProfile inserts or replaces a profile row and its FTS entry within
// a transaction.
func (db *DB) UpsertProfile(row ProfileRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO profiles (name, file, description, usage_id, model, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			file        = excluded.file,
			description = excluded.description,
			usage_id    = excluded.usage_id,
			model       = excluded.model,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, row.Name, row.File, row.Description, row.UsageID, row.Model, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert profile: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Name, row.Description, row.Model); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteProfile removes a profile row and its FTS entry.
func (db *DB) DeleteProfile(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, name)
	_, _ = tx.Exec(`DELETE FROM profiles WHERE name = ?`, name)

	return tx.Commit()
}

// ListProfiles returns paginated catalog rows ordered by update time,
// newest first, plus the total row count.
func (db *DB) ListProfiles(limit, offset int) ([]ProfileRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count profiles: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT name, file, description, usage_id, model, checksum, updated_at
		FROM profiles
		ORDER BY updated_at DESC, name
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var r ProfileRow
		if err := rows.Scan(&r.Name, &r.File, &r.Description, &r.UsageID, &r.Model, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// AllChecksums returns every cataloged profile's document checksum keyed
// by name.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

// RecordEvent appends one entry to the event log.
func (db *DB) RecordEvent(kind, profile, usageID, model string) error {
	_, err := db.conn.Exec(`
		INSERT INTO events (kind, profile, usage_id, model, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, kind, profile, usageID, model, time.Now())
	if err != nil {
		return fmt.Errorf("catalog: record event: %w", err)
	}
	return nil
}

// RecentEvents returns the newest event log entries, most recent first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, kind, profile, usage_id, model, created_at
		FROM events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: recent events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var r EventRow
		if err := rows.Scan(&r.ID, &r.Kind, &r.Profile, &r.UsageID, &r.Model, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
