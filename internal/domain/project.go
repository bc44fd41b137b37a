package domain

import (
	"fmt"
	"time"
)

// Project groups the pages of one built application for the autosave
// service.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks project fields before persistence.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	return nil
}

// PageState is one persisted page snapshot: the serialized document plus
// the monotonic version token that guards against stale overwrites.
type PageState struct {
	ProjectID string
	PageID    string
	Version   int64
	State     string // serialized JSON document
	UpdatedAt time.Time
}
