package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/persist"
	"github.com/janver/pagecraft/internal/store"
)

// StateProvider returns the current serialized state of a page together with
// its version token. The token must increase with every mutation of the page.
type StateProvider func(pageID string) (state []byte, version int64, err error)

// Saver debounces mutations into autosave requests, one in flight per page.
// When a save completes and further mutations arrived meanwhile, it re-reads
// the state and saves again, so the last write always carries the newest
// version token.
type Saver struct {
	client   *Client
	provider StateProvider
	project  string
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	timers   map[string]*time.Timer
	inflight map[string]bool
	pending  map[string]bool
	wg       sync.WaitGroup
}

func NewSaver(client *Client, provider StateProvider, projectID string, debounce time.Duration, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saver{
		client:   client,
		provider: provider,
		project:  projectID,
		debounce: debounce,
		logger:   logger,
		timers:   map[string]*time.Timer{},
		inflight: map[string]bool{},
		pending:  map[string]bool{},
	}
}

// Trigger schedules a save of the page after the debounce window. Repeated
// triggers within the window collapse into one save.
func (s *Saver) Trigger(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[pageID]; ok {
		t.Reset(s.debounce)
		return
	}
	s.timers[pageID] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, pageID)
		s.mu.Unlock()
		s.flush(pageID)
	})
}

// Flush saves the page immediately, bypassing the debounce window.
func (s *Saver) Flush(pageID string) {
	s.mu.Lock()
	if t, ok := s.timers[pageID]; ok {
		t.Stop()
		delete(s.timers, pageID)
	}
	s.mu.Unlock()
	s.flush(pageID)
}

// FlushAll flushes every page still waiting out its debounce window. Call
// before Wait on shutdown so pending timers are not lost with the process.
func (s *Saver) FlushAll() {
	s.mu.Lock()
	pages := make([]string, 0, len(s.timers))
	for pageID := range s.timers {
		pages = append(pages, pageID)
	}
	s.mu.Unlock()

	for _, pageID := range pages {
		s.Flush(pageID)
	}
}

func (s *Saver) flush(pageID string) {
	s.mu.Lock()
	if s.inflight[pageID] {
		s.pending[pageID] = true
		s.mu.Unlock()
		return
	}
	s.inflight[pageID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			if err := s.saveOnce(pageID); err != nil {
				if errors.Is(err, ErrStaleVersion) {
					// A newer save already landed. Nothing to redo.
					s.logger.Info("dropped superseded autosave", "page", pageID)
				} else {
					s.logger.Warn("autosave failed", "page", pageID, "error", err)
				}
			}
			s.mu.Lock()
			if s.pending[pageID] {
				delete(s.pending, pageID)
				s.mu.Unlock()
				continue
			}
			delete(s.inflight, pageID)
			s.mu.Unlock()
			return
		}
	}()
}

func (s *Saver) saveOnce(pageID string) error {
	state, version, err := s.provider(pageID)
	if err != nil {
		return fmt.Errorf("reading page state: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Save(ctx, s.project, pageID, state, version)
}

// Wait blocks until all in-flight saves have finished. Pair with FlushAll
// on shutdown: Wait alone does not fire timers still inside their debounce
// window.
func (s *Saver) Wait() {
	s.wg.Wait()
}

// Attach subscribes the saver to store changes so every committed mutation of
// page content triggers a debounced save of the affected pages. Returns the
// unsubscribe func.
func Attach(s *Saver, st *store.Store) func() {
	return st.Subscribe(func(ch store.Change) {
		switch ch.Kind {
		case store.KindUIState:
			// Selection and hover are ephemeral, not worth a save.
			return
		case store.KindComponent:
			if c, ok := st.Component(ch.ID); ok {
				s.Trigger(c.PageID)
				return
			}
			// Deleted component: fall through and save every page.
		}
		for _, p := range st.Pages() {
			s.Trigger(p.ID)
		}
	})
}

// StoreProvider derives per-page state documents from the store, versioned by
// the store's page mutation counter.
func StoreProvider(st *store.Store) StateProvider {
	return func(pageID string) ([]byte, int64, error) {
		version := st.PageVersion(pageID)

		snap := st.Snapshot()
		page := store.Snapshot{
			Components:   map[string]*domain.Component{},
			Pages:        map[string]*domain.Page{},
			Workflows:    map[string]*domain.Workflow{},
			LocalStorage: map[string]any{},
		}
		for id, c := range snap.Components {
			if c.PageID == pageID {
				page.Components[id] = c
			}
		}
		if p, ok := snap.Pages[pageID]; ok {
			page.Pages[pageID] = p
		}
		for id, w := range snap.Workflows {
			if w.ParentPageID == pageID {
				page.Workflows[id] = w
			}
		}

		data, err := json.Marshal(persist.FromSnapshot(page))
		if err != nil {
			return nil, 0, fmt.Errorf("encoding page state: %w", err)
		}
		return data, version, nil
	}
}
