package domain

import (
	"fmt"
	"time"
)

// PageLayout selects how a page's root container arranges its children.
type PageLayout string

const (
	LayoutColumn PageLayout = "column"
	LayoutRow    PageLayout = "row"
	LayoutGrid   PageLayout = "grid"
)

// Page is a named container owning exactly one root component tree.
type Page struct {
	ID        string
	Title     string
	Layout    PageLayout
	Hidden    bool
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks page fields before a create or update is applied.
func (p *Page) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("page title is required")
	}
	switch p.Layout {
	case "", LayoutColumn, LayoutRow, LayoutGrid:
		return nil
	default:
		return fmt.Errorf("page layout %q must be one of column, row, grid", p.Layout)
	}
}

// DisplayID returns a short identifier for display, truncating UUIDs.
func (p *Page) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
