package binding

import (
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/store"
)

// Watcher keeps a component's derived value in sync with its binding
// sources: every relevant store change recomputes the value through the
// resolver and writes it back to the owning component.
//
// Only the "update own value" target is supported; richer mutation targets
// are a design placeholder upstream and deliberately not guessed at here.
type Watcher struct {
	store    *store.Store
	resolver *Resolver
	unsub    func()
}

// NewWatcher starts watching. Call Close to stop.
func NewWatcher(s *store.Store, r *Resolver) *Watcher {
	w := &Watcher{store: s, resolver: r}
	w.unsub = s.Subscribe(w.onChange)
	return w
}

// Close stops the watcher.
func (w *Watcher) Close() {
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
}

func (w *Watcher) onChange(ch store.Change) {
	if ch.Kind != store.KindComponent {
		return
	}
	changed := ch.ID

	for id, c := range w.store.Components() {
		if len(c.Bindings) == 0 || id == changed {
			continue
		}
		if ch.Op != store.OpReplace && !dependsOn(c.Bindings, changed) {
			continue
		}
		derived, ok := w.resolver.Resolve(c.Bindings)
		if !ok {
			derived = "" // reset, never partial
		}
		if cur, isStr := c.Value.(string); isStr && cur == derived {
			continue
		}
		// Ignore racing deletes; the next change recomputes.
		_ = w.store.SetComponentValue(id, derived)
	}
}

func dependsOn(refs []domain.BindingRef, id string) bool {
	for _, ref := range refs {
		if ref.Kind == domain.BindComponent && ref.ID == id {
			return true
		}
	}
	return false
}
