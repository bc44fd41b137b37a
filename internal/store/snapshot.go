package store

import "github.com/janver/pagecraft/internal/domain"

// Snapshot is a deep copy of the store's persisted state, used by the
// persistence bridge as the unit of export and import.
type Snapshot struct {
	Components   map[string]*domain.Component
	Pages        map[string]*domain.Page
	Workflows    map[string]*domain.Workflow
	LocalStorage map[string]any
}

// Snapshot returns a deep copy of all persisted entity maps. Callers may
// mutate the result freely.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Components:   make(map[string]*domain.Component, len(s.components)),
		Pages:        make(map[string]*domain.Page, len(s.pages)),
		Workflows:    make(map[string]*domain.Workflow, len(s.workflows)),
		LocalStorage: make(map[string]any, len(s.localStorage)),
	}
	for id, c := range s.components {
		snap.Components[id] = c.Clone()
	}
	for id, p := range s.pages {
		dup := *p
		snap.Pages[id] = &dup
	}
	for id, w := range s.workflows {
		snap.Workflows[id] = w.Clone()
	}
	for k, v := range s.localStorage {
		snap.LocalStorage[k] = v
	}
	return snap
}

// Replace atomically swaps in a new snapshot, discarding all prior entity
// state. Validation happens in the persistence bridge before this is
// called; Replace itself never fails partially.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()

	s.components = make(map[string]*domain.Component, len(snap.Components))
	for id, c := range snap.Components {
		s.components[id] = c.Clone()
	}
	s.pages = make(map[string]*domain.Page, len(snap.Pages))
	for id, p := range snap.Pages {
		dup := *p
		s.pages[id] = &dup
	}
	s.workflows = make(map[string]*domain.Workflow, len(snap.Workflows))
	for id, w := range snap.Workflows {
		s.workflows[id] = w.Clone()
	}
	s.localStorage = make(map[string]any, len(snap.LocalStorage))
	for k, v := range snap.LocalStorage {
		s.localStorage[k] = v
	}

	// Selection may point at an id that no longer exists.
	if _, ok := s.components[s.ui.SelectedID]; !ok {
		s.ui.SelectedID = ""
	}
	if _, ok := s.components[s.ui.HoveredID]; !ok {
		s.ui.HoveredID = ""
	}
	for pageID := range s.pages {
		s.pageVersions[pageID]++
	}
	s.mu.Unlock()

	s.notify(Change{Kind: KindComponent, Op: OpReplace})
}
