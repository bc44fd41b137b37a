package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/janver/pagecraft/internal/domain"
)

// Page returns a copy of the page with the given id.
func (s *Store) Page(id string) (*domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	dup := *p
	return &dup, true
}

// Pages returns copies of all pages sorted by title.
func (s *Store) Pages() []*domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Page, 0, len(s.pages))
	for _, p := range s.pages {
		dup := *p
		out = append(out, &dup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// CreatePage validates and inserts a new page, assigning a fresh id when
// none is set.
func (s *Store) CreatePage(p *domain.Page) (*domain.Page, error) {
	start := time.Now()
	if err := p.Validate(); err != nil {
		s.observe("create_page", p.ID, start, err)
		return nil, err
	}

	s.mu.Lock()
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	} else if _, exists := s.pages[stored.ID]; exists {
		s.mu.Unlock()
		err := fmt.Errorf("page %s: %w", stored.ID, ErrIDTaken)
		s.observe("create_page", stored.ID, start, err)
		return nil, err
	}
	if stored.Layout == "" {
		stored.Layout = domain.LayoutColumn
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.pages[stored.ID] = &stored
	s.bumpPage(stored.ID)
	s.mu.Unlock()

	s.observe("create_page", stored.ID, start, nil)
	s.notify(Change{Kind: KindPage, Op: OpUpsert, ID: stored.ID})
	dup := stored
	return &dup, nil
}

// UpdatePage validates and overwrites an existing page.
func (s *Store) UpdatePage(p *domain.Page) error {
	start := time.Now()
	if err := p.Validate(); err != nil {
		s.observe("update_page", p.ID, start, err)
		return err
	}

	s.mu.Lock()
	existing, ok := s.pages[p.ID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("page %s: %w", p.ID, ErrNotFound)
		s.observe("update_page", p.ID, start, err)
		return err
	}
	stored := *p
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.pages[p.ID] = &stored
	s.bumpPage(p.ID)
	s.mu.Unlock()

	s.observe("update_page", p.ID, start, nil)
	s.notify(Change{Kind: KindPage, Op: OpUpsert, ID: p.ID})
	return nil
}

// DeletePage removes a page and cascade-deletes all of its components.
// Workflows scoped to the page survive; they have their own lifecycle.
func (s *Store) DeletePage(id string) error {
	start := time.Now()
	s.mu.Lock()

	if _, ok := s.pages[id]; !ok {
		s.mu.Unlock()
		err := fmt.Errorf("page %s: %w", id, ErrNotFound)
		s.observe("delete_page", id, start, err)
		return err
	}

	doomed := make(map[string]bool)
	for cid, c := range s.components {
		if c.PageID == id {
			doomed[cid] = true
		}
	}
	for cid := range doomed {
		delete(s.components, cid)
	}
	s.stripBindingsLocked(doomed)
	delete(s.pages, id)
	delete(s.pageVersions, id)

	changes := make([]Change, 0, len(doomed)+1)
	for cid := range doomed {
		changes = append(changes, Change{Kind: KindComponent, Op: OpDelete, ID: cid})
	}
	changes = append(changes, Change{Kind: KindPage, Op: OpDelete, ID: id})
	if doomed[s.ui.SelectedID] {
		s.ui.SelectedID = ""
	}
	s.mu.Unlock()

	s.observe("delete_page", id, start, nil)
	s.notify(changes...)
	return nil
}
