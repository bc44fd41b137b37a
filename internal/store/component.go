package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/janver/pagecraft/internal/domain"
)

// Component returns a deep copy of the component with the given id.
func (s *Store) Component(id string) (*domain.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Components returns deep copies of all components, keyed by id.
func (s *Store) Components() map[string]*domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*domain.Component, len(s.components))
	for id, c := range s.components {
		out[id] = c.Clone()
	}
	return out
}

// ChildrenOf returns copies of the components whose ParentID equals id,
// sorted ascending by Order. The sort is stable so order ties keep their
// relative position.
func (s *Store) ChildrenOf(id string) []*domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childrenLocked(id)
}

func (s *Store) childrenLocked(id string) []*domain.Component {
	var out []*domain.Component
	for _, c := range s.components {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RootOf returns the root component of a page, or false when the page has
// no components yet.
func (s *Store) RootOf(pageID string) (*domain.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.components {
		if c.PageID == pageID && c.ParentID == nil {
			return c.Clone(), true
		}
	}
	return nil, false
}

// SetComponent upserts a component by id. ParentID is not checked against
// the component map: multi-step construction may leave it dangling, and the
// renderer treats an unresolved parent as "no such node".
func (s *Store) SetComponent(c *domain.Component) {
	start := time.Now()
	s.mu.Lock()
	stored := c.Clone()
	stored.UpdatedAt = time.Now().UTC()
	if existing, ok := s.components[c.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.components[c.ID] = stored
	s.bumpPage(c.PageID)
	s.mu.Unlock()

	s.observe("set_component", c.ID, start, nil)
	s.notify(Change{Kind: KindComponent, Op: OpUpsert, ID: c.ID})
}

// CreateComponent inserts a new component of the given type under parentID
// (nil for the page root) with a fresh id and Order = max(sibling)+1.
// Creating a second root for a page is rejected.
func (s *Store) CreateComponent(pageID, typ string, parentID *string, props map[string]any) (*domain.Component, error) {
	start := time.Now()
	s.mu.Lock()

	if parentID == nil {
		for _, c := range s.components {
			if c.PageID == pageID && c.ParentID == nil {
				s.mu.Unlock()
				s.observe("create_component", "", start, ErrRootExists)
				return nil, fmt.Errorf("page %s: %w", pageID, ErrRootExists)
			}
		}
	}

	maxOrder := -1
	if parentID != nil {
		for _, c := range s.components {
			if c.ParentID != nil && *c.ParentID == *parentID && c.Order > maxOrder {
				maxOrder = c.Order
			}
		}
	}

	now := time.Now().UTC()
	c := &domain.Component{
		ID:        uuid.New().String(),
		Type:      typ,
		PageID:    pageID,
		ParentID:  parentID,
		Props:     domain.CloneProps(props),
		Order:     maxOrder + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.components[c.ID] = c
	s.bumpPage(pageID)
	s.mu.Unlock()

	s.observe("create_component", c.ID, start, nil)
	s.notify(Change{Kind: KindComponent, Op: OpUpsert, ID: c.ID})
	return c.Clone(), nil
}

// Move describes one entry of a batch reposition: the component to move,
// its new parent, and its new sibling order.
type Move struct {
	ID       string
	ParentID *string
	Order    int
}

// ChangeComponentPosition applies a batch of order/parent updates
// atomically: every target is validated before any mutation, so a failed
// batch leaves sibling orders exactly as they were.
func (s *Store) ChangeComponentPosition(moves []Move) error {
	start := time.Now()
	s.mu.Lock()

	for _, m := range moves {
		if _, ok := s.components[m.ID]; !ok {
			s.mu.Unlock()
			err := fmt.Errorf("component %s: %w", m.ID, ErrNotFound)
			s.observe("change_component_position", m.ID, start, err)
			return err
		}
		if m.ParentID != nil {
			if _, ok := s.components[*m.ParentID]; !ok {
				s.mu.Unlock()
				err := fmt.Errorf("new parent %s: %w", *m.ParentID, ErrNotFound)
				s.observe("change_component_position", m.ID, start, err)
				return err
			}
		}
	}

	changes := make([]Change, 0, len(moves))
	for _, m := range moves {
		c := s.components[m.ID]
		if m.ParentID != nil {
			p := *m.ParentID
			c.ParentID = &p
		} else {
			c.ParentID = nil
		}
		c.Order = m.Order
		c.UpdatedAt = time.Now().UTC()
		s.bumpPage(c.PageID)
		changes = append(changes, Change{Kind: KindComponent, Op: OpUpsert, ID: m.ID})
	}
	s.mu.Unlock()

	s.observe("change_component_position", "", start, nil)
	s.notify(changes...)
	return nil
}

// DeleteComponent removes the component and every transitive descendant,
// then strips binding references to any deleted id from the surviving
// components and workflow node data.
func (s *Store) DeleteComponent(id string) error {
	start := time.Now()
	s.mu.Lock()

	if _, ok := s.components[id]; !ok {
		s.mu.Unlock()
		err := fmt.Errorf("component %s: %w", id, ErrNotFound)
		s.observe("delete_component", id, start, err)
		return err
	}

	pageID := s.components[id].PageID
	doomed := s.subtreeLocked(id)
	for did := range doomed {
		delete(s.components, did)
	}
	s.stripBindingsLocked(doomed)
	s.bumpPage(pageID)

	changes := make([]Change, 0, len(doomed))
	for did := range doomed {
		changes = append(changes, Change{Kind: KindComponent, Op: OpDelete, ID: did})
	}
	if s.ui.SelectedID != "" && doomed[s.ui.SelectedID] {
		s.ui.SelectedID = ""
		changes = append(changes, Change{Kind: KindUIState, Op: OpUpsert})
	}
	if s.ui.HoveredID != "" && doomed[s.ui.HoveredID] {
		s.ui.HoveredID = ""
	}
	s.mu.Unlock()

	s.observe("delete_component", id, start, nil)
	s.notify(changes...)
	return nil
}

// subtreeLocked collects id and all ids whose ParentID chain leads to it.
func (s *Store) subtreeLocked(id string) map[string]bool {
	doomed := map[string]bool{id: true}
	for {
		grew := false
		for cid, c := range s.components {
			if doomed[cid] || c.ParentID == nil {
				continue
			}
			if doomed[*c.ParentID] {
				doomed[cid] = true
				grew = true
			}
		}
		if !grew {
			return doomed
		}
	}
}

// stripBindingsLocked removes binding references naming any id in gone from
// all surviving components and workflow node data.
func (s *Store) stripBindingsLocked(gone map[string]bool) {
	for _, c := range s.components {
		if len(c.Bindings) > 0 {
			kept := c.Bindings[:0]
			for _, b := range c.Bindings {
				if b.Kind == domain.BindComponent && gone[b.ID] {
					continue
				}
				kept = append(kept, b)
			}
			c.Bindings = kept
		}
		stripPropBindings(c.Props, gone)
	}
	for _, w := range s.workflows {
		for i := range w.Nodes {
			stripPropBindings(w.Nodes[i].Data, gone)
		}
	}
}

// stripPropBindings deletes map entries whose string value is a binding
// expression naming a removed component.
func stripPropBindings(props map[string]any, gone map[string]bool) {
	for key, v := range props {
		switch val := v.(type) {
		case string:
			if ref, err := domain.ParseBindingRef(val); err == nil {
				if ref.Kind == domain.BindComponent && gone[ref.ID] {
					delete(props, key)
				}
			}
		case map[string]any:
			stripPropBindings(val, gone)
		}
	}
}

// UpdateComponentID atomically renames a component, rewriting every
// ParentID, binding reference, and workflow data reference that names the
// old id. The rename is rejected when newID is already taken.
func (s *Store) UpdateComponentID(oldID, newID string) error {
	start := time.Now()
	s.mu.Lock()

	c, ok := s.components[oldID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("component %s: %w", oldID, ErrNotFound)
		s.observe("update_component_id", oldID, start, err)
		return err
	}
	if _, taken := s.components[newID]; taken {
		s.mu.Unlock()
		err := fmt.Errorf("component %s: %w", newID, ErrIDTaken)
		s.observe("update_component_id", oldID, start, err)
		return err
	}

	delete(s.components, oldID)
	c.ID = newID
	c.UpdatedAt = time.Now().UTC()
	s.components[newID] = c

	for _, other := range s.components {
		if other.ParentID != nil && *other.ParentID == oldID {
			id := newID
			other.ParentID = &id
		}
		for i, b := range other.Bindings {
			if b.Kind == domain.BindComponent && b.ID == oldID {
				other.Bindings[i].ID = newID
			}
		}
		rewritePropBindings(other.Props, oldID, newID)
	}
	for _, w := range s.workflows {
		for i := range w.Nodes {
			rewritePropBindings(w.Nodes[i].Data, oldID, newID)
		}
	}
	if s.ui.SelectedID == oldID {
		s.ui.SelectedID = newID
	}
	if s.ui.HoveredID == oldID {
		s.ui.HoveredID = newID
	}
	s.bumpPage(c.PageID)
	s.mu.Unlock()

	s.observe("update_component_id", newID, start, nil)
	s.notify(Change{Kind: KindComponent, Op: OpRename, ID: newID, OldID: oldID})
	return nil
}

// rewritePropBindings rewrites binding expressions naming oldID to newID in
// string values, recursing into nested maps.
func rewritePropBindings(props map[string]any, oldID, newID string) {
	for key, v := range props {
		switch val := v.(type) {
		case string:
			ref, err := domain.ParseBindingRef(val)
			if err == nil && ref.Kind == domain.BindComponent && ref.ID == oldID {
				ref.ID = newID
				props[key] = ref.String()
			}
		case map[string]any:
			rewritePropBindings(val, oldID, newID)
		}
	}
}

// SetComponentProp sets a single property value. Unknown components are an
// error; the props map is created on first use.
func (s *Store) SetComponentProp(id, key string, value any) error {
	start := time.Now()
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("component %s: %w", id, ErrNotFound)
		s.observe("set_component_prop", id, start, err)
		return err
	}
	if c.Props == nil {
		c.Props = make(map[string]any)
	}
	c.Props[key] = value
	c.UpdatedAt = time.Now().UTC()
	s.bumpPage(c.PageID)
	s.mu.Unlock()

	s.observe("set_component_prop", id, start, nil)
	s.notify(Change{Kind: KindComponent, Op: OpUpsert, ID: id})
	return nil
}

// SetComponentValue sets a component's runtime value.
func (s *Store) SetComponentValue(id string, value any) error {
	start := time.Now()
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("component %s: %w", id, ErrNotFound)
		s.observe("set_component_value", id, start, err)
		return err
	}
	c.Value = value
	c.UpdatedAt = time.Now().UTC()
	s.bumpPage(c.PageID)
	s.mu.Unlock()

	s.observe("set_component_value", id, start, nil)
	s.notify(Change{Kind: KindComponent, Op: OpUpsert, ID: id})
	return nil
}

// ComponentsByPage returns copies of all of a page's components keyed by id.
func (s *Store) ComponentsByPage(pageID string) map[string]*domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*domain.Component)
	for id, c := range s.components {
		if c.PageID == pageID {
			out[id] = c.Clone()
		}
	}
	return out
}

// AncestorChain returns the ids from the component up to its root,
// inclusive. A dangling parent terminates the chain.
func (s *Store) AncestorChain(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chain []string
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		seen[cur] = true
		chain = append(chain, cur)
		c, ok := s.components[cur]
		if !ok || c.ParentID == nil {
			break
		}
		cur = *c.ParentID
	}
	return chain
}
