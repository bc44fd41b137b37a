package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/janver/pagecraft/internal/db"
	"github.com/janver/pagecraft/internal/domain"
)

// SQLitePageStateRepo implements PageStateRepo over SQLite.
type SQLitePageStateRepo struct {
	db db.DBTX
}

// NewSQLitePageStateRepo creates a page state repository over the given handle.
func NewSQLitePageStateRepo(dbtx db.DBTX) *SQLitePageStateRepo {
	return &SQLitePageStateRepo{db: dbtx}
}

// Save upserts a snapshot. The write succeeds only when the incoming
// version is strictly greater than what is stored; otherwise the row is
// left untouched and ErrStaleVersion is returned.
func (r *SQLitePageStateRepo) Save(ctx context.Context, ps *domain.PageState) error {
	query := `
		INSERT INTO page_states (project_id, page_id, version, state, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_id, page_id) DO UPDATE SET
			version = excluded.version,
			state = excluded.state,
			updated_at = excluded.updated_at
		WHERE excluded.version > page_states.version`
	res, err := r.db.ExecContext(ctx, query,
		ps.ProjectID,
		ps.PageID,
		ps.Version,
		ps.State,
		ps.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving page state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking save result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("page %s at version %d: %w", ps.PageID, ps.Version, ErrStaleVersion)
	}
	return nil
}

func (r *SQLitePageStateRepo) Get(ctx context.Context, projectID, pageID string) (*domain.PageState, error) {
	query := `SELECT project_id, page_id, version, state, updated_at
		FROM page_states WHERE project_id = ? AND page_id = ?`
	row := r.db.QueryRowContext(ctx, query, projectID, pageID)

	ps, err := scanPageState(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("page state %s/%s: %w", projectID, pageID, ErrNotFound)
		}
		return nil, err
	}
	return ps, nil
}

func (r *SQLitePageStateRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.PageState, error) {
	query := `SELECT project_id, page_id, version, state, updated_at
		FROM page_states WHERE project_id = ? ORDER BY page_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing page states: %w", err)
	}
	defer rows.Close()

	var states []*domain.PageState
	for rows.Next() {
		ps, err := scanPageState(rows.Scan)
		if err != nil {
			return nil, err
		}
		states = append(states, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page states: %w", err)
	}
	return states, nil
}

func scanPageState(scan func(...any) error) (*domain.PageState, error) {
	var ps domain.PageState
	var updatedAt string
	if err := scan(&ps.ProjectID, &ps.PageID, &ps.Version, &ps.State, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning page state: %w", err)
	}
	var err error
	ps.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &ps, nil
}
