package index

import (
	"encoding/json"
	"fmt"

	"github.com/starford/clawmarks/internal/models"
)

// Sync rebuilds the index from the document in one transaction. The
// document is small enough that a full rebuild beats diffing.
func Sync(db *DB, doc *models.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM marks`); err != nil {
		return fmt.Errorf("index: clear marks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO marks (id, trail_id, file, line, type, annotation, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range doc.Marks {
		tagsJSON, _ := json.Marshal(m.Tags)
		if _, err := stmt.Exec(m.ID, m.TrailID, m.File, m.Line, m.Type, m.Annotation, string(tagsJSON)); err != nil {
			return fmt.Errorf("index: insert mark %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}
