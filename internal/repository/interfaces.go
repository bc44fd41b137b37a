// Package repository persists projects and their page-state snapshots for
// the autosave service.
package repository

import (
	"context"
	"errors"

	"github.com/janver/pagecraft/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrStaleVersion is returned when a snapshot save carries a version no
// newer than the stored one. A superseded autosave must never overwrite
// newer state.
var ErrStaleVersion = errors.New("stale version")

// ProjectRepo stores builder projects.
type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// PageStateRepo stores serialized page state keyed by (project, page).
type PageStateRepo interface {
	// Save upserts a snapshot iff version is strictly greater than the
	// stored version; otherwise ErrStaleVersion.
	Save(ctx context.Context, s *domain.PageState) error
	Get(ctx context.Context, projectID, pageID string) (*domain.PageState, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.PageState, error)
}
