//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS profiles_fts USING fts5(
			name UNINDEXED,
			description,
			model,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, name, description, model string) error {
	_, _ = tx.Exec(`DELETE FROM profiles_fts WHERE name = ?`, name)
	_, err := tx.Exec(`INSERT INTO profiles_fts (name, description, model) VALUES (?, ?, ?)`,
		name, description, model)
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, name string) {
	_, _ = tx.Exec(`DELETE FROM profiles_fts WHERE name = ?`, name)
}

// Search performs an FTS5 search over descriptions and model identifiers.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT name,
		       model,
		       snippet(profiles_fts, 1, '<b>', '</b>', '...', 32)
		FROM profiles_fts
		WHERE profiles_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Name, &r.Model, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
