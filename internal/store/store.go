// Package store owns all component, page, and workflow state for one editor
// session. Mutations go through named actions; every applied action emits a
// Change to subscribers so renderers can invalidate only what moved.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/janver/pagecraft/internal/domain"
)

var (
	// ErrNotFound is returned when an action targets a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrIDTaken is returned when a rename or create collides with an
	// existing id.
	ErrIDTaken = errors.New("id already in use")
	// ErrRootExists is returned when a second root component is created
	// for a page.
	ErrRootExists = errors.New("page already has a root component")
)

// EntityKind identifies which entity map a Change touched.
type EntityKind string

const (
	KindComponent EntityKind = "component"
	KindPage      EntityKind = "page"
	KindWorkflow  EntityKind = "workflow"
	KindUIState   EntityKind = "uistate"
)

// ChangeOp identifies what happened to the entity.
type ChangeOp string

const (
	OpUpsert  ChangeOp = "upsert"
	OpDelete  ChangeOp = "delete"
	OpRename  ChangeOp = "rename"
	OpReplace ChangeOp = "replace" // full-store import
)

// Change describes a single applied mutation. Subscribers use it to refresh
// only the affected entities instead of re-reading the whole store.
type Change struct {
	Kind  EntityKind
	Op    ChangeOp
	ID    string
	OldID string // set for OpRename
}

// Store is the in-memory owner of all builder entities. It is safe for use
// from the UI goroutine plus background readers (autosave snapshots).
type Store struct {
	mu sync.RWMutex

	components   map[string]*domain.Component
	pages        map[string]*domain.Page
	workflows    map[string]*domain.Workflow
	localStorage map[string]any

	ui UIState

	// pageVersions counts mutations per page; autosave uses it as a
	// monotonic version token.
	pageVersions map[string]int64

	subMu    sync.Mutex
	subs     map[int]func(Change)
	nextSub  int
	observer Observer
}

// New creates an empty store. A nil observer defaults to NoopObserver.
func New(observer Observer) *Store {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Store{
		components:   make(map[string]*domain.Component),
		pages:        make(map[string]*domain.Page),
		workflows:    make(map[string]*domain.Workflow),
		localStorage: make(map[string]any),
		pageVersions: make(map[string]int64),
		subs:         make(map[int]func(Change)),
		observer:     observer,
	}
}

// Subscribe registers a change listener and returns an unsubscribe func.
// Listeners run synchronously after the mutation commits, outside the
// store lock, in the order they subscribed.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(changes ...Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, ch := range changes {
		for _, fn := range fns {
			fn(ch)
		}
	}
}

// bumpPage advances a page's version token. Caller holds the write lock.
func (s *Store) bumpPage(pageID string) {
	if pageID != "" {
		s.pageVersions[pageID]++
	}
}

// PageVersion returns the monotonic mutation counter for a page.
func (s *Store) PageVersion(pageID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageVersions[pageID]
}

// SeedPageVersions raises page version counters to at least the given
// values. Counters restart at zero in every process; seeding them from the
// loaded snapshot keeps the next autosave ahead of what the server holds.
func (s *Store) SeedPageVersions(versions map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pageID, v := range versions {
		if v > s.pageVersions[pageID] {
			s.pageVersions[pageID] = v
		}
	}
}

// LocalStorageSet stores a free-form key/value pair carried through the
// persisted document.
func (s *Store) LocalStorageSet(key string, value any) {
	s.mu.Lock()
	s.localStorage[key] = value
	s.mu.Unlock()
}

// LocalStorageGet reads a free-form value.
func (s *Store) LocalStorageGet(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.localStorage[key]
	return v, ok
}
