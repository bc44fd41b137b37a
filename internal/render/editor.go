package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/registry"
)

var (
	styleSelected = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#fe8019"))
	styleHovered = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#83a598"))
	styleFault = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#fb4934")).
			Foreground(lipgloss.Color("#fb4934")).
			Padding(0, 1)
)

type cacheEntry struct {
	snap *domain.Component
	out  string
}

// Editor is the editable renderer variant: it highlights the selected and
// hovered nodes, isolates render-function failures per node, and skips
// re-rendering subtrees whose root is unchanged under the type's dirty
// comparator.
type Editor struct {
	reader TreeReader
	reg    *registry.Registry
	sink   ErrorSink

	mu       sync.Mutex
	cache    map[string]cacheEntry
	faulted  map[string]bool
	selected string
	hovered  string
}

// NewEditor creates an editable renderer. A nil sink defaults to NoopSink.
func NewEditor(reader TreeReader, reg *registry.Registry, sink ErrorSink) *Editor {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Editor{
		reader:  reader,
		reg:     reg,
		sink:    sink,
		cache:   make(map[string]cacheEntry),
		faulted: make(map[string]bool),
	}
}

// RenderPage renders a page's full tree from its root. A page without a
// root renders an empty canvas hint.
func (e *Editor) RenderPage(pageID string) string {
	root, ok := e.reader.RootOf(pageID)
	if !ok {
		return lipgloss.NewStyle().Faint(true).Render("(empty page)")
	}
	return e.Render(root.ID)
}

// Render renders the subtree under the given component id.
func (e *Editor) Render(id string) string {
	c, ok := e.reader.Component(id)
	if !ok {
		// Unresolved reference: invisible, not a crash.
		return ""
	}
	return e.renderNode(c)
}

func (e *Editor) renderNode(c *domain.Component) string {
	e.mu.Lock()
	if e.faulted[c.ID] {
		e.mu.Unlock()
		return e.decorate(c.ID, faultBox(c))
	}
	def := e.reg.Get(c.Type)
	if def == nil {
		e.mu.Unlock()
		e.sink.RenderError(c.ID, c.Type, fmt.Errorf("unknown component type %q", c.Type))
		return ""
	}
	dirty := def.Dirty
	if dirty == nil {
		dirty = defaultDirty
	}
	if entry, ok := e.cache[c.ID]; ok && !dirty(entry.snap, c) {
		e.mu.Unlock()
		return e.decorate(c.ID, entry.out)
	}
	e.mu.Unlock()

	children := e.reader.ChildrenOf(c.ID)
	rendered := make([]string, 0, len(children))
	for _, child := range children {
		if out := e.renderNode(child); out != "" {
			rendered = append(rendered, out)
		}
	}

	out, err := e.safeRender(def.Render, c, rendered)
	if err != nil {
		e.mu.Lock()
		e.faulted[c.ID] = true
		e.mu.Unlock()
		e.sink.RenderError(c.ID, c.Type, err)
		return e.decorate(c.ID, faultBox(c))
	}

	e.mu.Lock()
	e.cache[c.ID] = cacheEntry{snap: c.Clone(), out: out}
	e.mu.Unlock()
	return e.decorate(c.ID, out)
}

// safeRender runs a render function inside the per-node fault boundary.
func (e *Editor) safeRender(fn registry.RenderFunc, c *domain.Component, children []string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return fn(c, children), nil
}

// faultBox is the inline error affordance shown in place of a failed
// subtree. The rest of the page keeps rendering.
func faultBox(c *domain.Component) string {
	return styleFault.Render(fmt.Sprintf("✖ %s failed to render (press R to retry)", c.Type))
}

// decorate applies selection/hover styling outside the cached output so a
// selection change never forces a re-render of the node itself.
func (e *Editor) decorate(id, out string) string {
	if out == "" {
		return out
	}
	e.mu.Lock()
	selected := e.selected == id
	hovered := e.hovered == id
	e.mu.Unlock()
	switch {
	case selected:
		return styleSelected.Render(out)
	case hovered:
		return styleHovered.Render(out)
	default:
		return out
	}
}

// SetSelection updates the selected and hovered component ids. Ancestors
// of the nodes entering and leaving the selection are invalidated: their
// cached compositions embed the old decoration.
func (e *Editor) SetSelection(selected, hovered string) {
	e.mu.Lock()
	prev := []string{e.selected, e.hovered}
	e.selected = selected
	e.hovered = hovered
	e.mu.Unlock()

	seen := make(map[string]bool)
	for _, id := range append(prev, selected, hovered) {
		if id != "" && !seen[id] {
			seen[id] = true
			e.invalidateAncestors(id)
		}
	}
}

// Retry clears a node's fault flag and invalidates it so the next render
// attempt runs the render function again.
func (e *Editor) Retry(id string) {
	e.mu.Lock()
	delete(e.faulted, id)
	delete(e.cache, id)
	e.mu.Unlock()
	e.invalidateAncestors(id)
}

// Faulted reports whether the node's last render attempt failed.
func (e *Editor) Faulted(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.faulted[id]
}

// Invalidate marks a changed component for the next render pass. Only the
// ancestors' cached compositions are dropped; whether the node itself
// re-renders is the dirty comparator's call, so structurally equal props
// still hit the cache.
func (e *Editor) Invalidate(id string) {
	e.invalidateAncestors(id)
}

// Evict removes a deleted or renamed component's cache entry and fault
// flag. The former ancestor chain is no longer reachable from the id, so
// the whole cache is dropped.
func (e *Editor) Evict(id string) {
	e.mu.Lock()
	e.cache = make(map[string]cacheEntry)
	delete(e.faulted, id)
	e.mu.Unlock()
}

// InvalidateAll drops the entire render cache.
func (e *Editor) InvalidateAll() {
	e.mu.Lock()
	e.cache = make(map[string]cacheEntry)
	e.mu.Unlock()
}

// invalidateAncestors drops the cache entries of every ancestor above id.
// The node's own entry stays; its dirty comparator decides reuse.
func (e *Editor) invalidateAncestors(id string) {
	chain := e.reader.AncestorChain(id)
	if len(chain) <= 1 {
		return
	}
	e.mu.Lock()
	for _, aid := range chain[1:] {
		delete(e.cache, aid)
	}
	e.mu.Unlock()
}

// Walk returns the page's component ids in render (depth-first, sibling
// order) order, ignoring the cache. The editor TUI uses it for cursor
// navigation.
func (e *Editor) Walk(pageID string) []string {
	root, ok := e.reader.RootOf(pageID)
	if !ok {
		return nil
	}
	var order []string
	var visit func(id string)
	visit = func(id string) {
		order = append(order, id)
		for _, child := range e.reader.ChildrenOf(id) {
			visit(child.ID)
		}
	}
	visit(root.ID)
	return order
}
