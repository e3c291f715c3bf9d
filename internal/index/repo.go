package index

import (
	"encoding/json"
	"fmt"
)

// MarkRow represents a row in the marks table.
type MarkRow struct {
	ID         string
	TrailID    string
	File       string
	Line       int
	Type       string
	Annotation string
	Tags       []string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	TrailID string `json:"trail_id"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

// UpsertMark inserts or replaces a mark row.
func (db *DB) UpsertMark(m MarkRow) error {
	tagsJSON, _ := json.Marshal(m.Tags)
	_, err := db.conn.Exec(`
		INSERT INTO marks (id, trail_id, file, line, type, annotation, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trail_id   = excluded.trail_id,
			file       = excluded.file,
			line       = excluded.line,
			type       = excluded.type,
			annotation = excluded.annotation,
			tags       = excluded.tags
	`, m.ID, m.TrailID, m.File, m.Line, m.Type, m.Annotation, string(tagsJSON))
	if err != nil {
		return fmt.Errorf("index: upsert mark: %w", err)
	}
	return nil
}

// DeleteMark removes a mark row.
func (db *DB) DeleteMark(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM marks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete mark: %w", err)
	}
	return nil
}

// Search performs a LIKE-based substring search over annotation, file,
// and tags.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, trail_id, file, line, type, substr(annotation, 1, 200)
		FROM marks
		WHERE annotation LIKE ? OR file LIKE ? OR tags LIKE ?
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.TrailID, &r.File, &r.Line, &r.Type, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of indexed marks.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM marks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
