package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/janver/pagecraft/internal/domain"
)

// Project options
type ProjectOption func(*domain.Project)

func WithProjectID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ID = id
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page options
type PageOption func(*domain.Page)

func WithLayout(l domain.PageLayout) PageOption {
	return func(p *domain.Page) {
		p.Layout = l
	}
}

func WithHidden(h bool) PageOption {
	return func(p *domain.Page) {
		p.Hidden = h
	}
}

func WithPageID(id string) PageOption {
	return func(p *domain.Page) {
		p.ID = id
	}
}

func NewTestPage(title string, opts ...PageOption) *domain.Page {
	now := time.Now().UTC()
	p := &domain.Page{
		ID:        uuid.New().String(),
		Title:     title,
		Layout:    domain.LayoutColumn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Component options
type ComponentOption func(*domain.Component)

func WithParent(id string) ComponentOption {
	return func(c *domain.Component) {
		c.ParentID = &id
	}
}

func WithOrder(n int) ComponentOption {
	return func(c *domain.Component) {
		c.Order = n
	}
}

func WithProps(props map[string]any) ComponentOption {
	return func(c *domain.Component) {
		c.Props = props
	}
}

func WithValue(v string) ComponentOption {
	return func(c *domain.Component) {
		c.Value = v
	}
}

func WithBindings(refs ...domain.BindingRef) ComponentOption {
	return func(c *domain.Component) {
		c.Bindings = refs
	}
}

func WithComponentID(id string) ComponentOption {
	return func(c *domain.Component) {
		c.ID = id
	}
}

func NewTestComponent(pageID, typ string, opts ...ComponentOption) *domain.Component {
	now := time.Now().UTC()
	c := &domain.Component{
		ID:        uuid.New().String(),
		Type:      typ,
		PageID:    pageID,
		Props:     map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageState options
type PageStateOption func(*domain.PageState)

func WithVersion(v int64) PageStateOption {
	return func(ps *domain.PageState) {
		ps.Version = v
	}
}

func WithState(s string) PageStateOption {
	return func(ps *domain.PageState) {
		ps.State = s
	}
}

func NewTestPageState(projectID, pageID string, opts ...PageStateOption) *domain.PageState {
	ps := &domain.PageState{
		ProjectID: projectID,
		PageID:    pageID,
		Version:   1,
		State:     "{}",
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}
