package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS page_states (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		page_id    TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 0,
		state      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (project_id, page_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_page_states_project ON page_states(project_id)`,
}
