// Package registry maps component type names to their render and editing
// configuration. Registries are constructed explicitly and injected into the
// renderer and CLI; there is no package-level instance.
package registry

import (
	"log/slog"
	"sort"

	"github.com/janver/pagecraft/internal/domain"
)

// RenderFunc produces the visual output for a component. Children arrive
// already rendered, in sibling order; the function decides how to compose
// them and never sees siblings.
type RenderFunc func(c *domain.Component, children []string) string

// DirtyFunc reports whether a component must be re-rendered given its
// previous snapshot. A nil DirtyFunc falls back to deep structural equality
// over (id, type, value, props).
type DirtyFunc func(prev, next *domain.Component) bool

// PropertyField describes one editable property of a component type.
type PropertyField struct {
	Name     string
	Label    string
	Kind     string // "string", "int", "bool", "color", "binding"
	Bindable bool
}

// PropertySection groups property fields for the editor's property panel.
type PropertySection struct {
	Title  string
	Fields []PropertyField
}

// Definition is the full registry entry for one component type.
type Definition struct {
	Type         string
	DefaultProps map[string]any
	Sections     []PropertySection
	Render       RenderFunc
	Dirty        DirtyFunc
}

// Registry holds the component definitions for a single editor instance.
type Registry struct {
	defs   map[string]*Definition
	logger *slog.Logger
}

// New creates an empty registry. A nil logger disables warnings.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		defs:   make(map[string]*Definition),
		logger: logger,
	}
}

// Register inserts or overwrites the definition for def.Type. Overwriting
// an existing type is permitted but logged, since it usually means two
// plugins collide.
func (r *Registry) Register(def *Definition) {
	if _, exists := r.defs[def.Type]; exists {
		r.logger.Warn("overwriting component definition", "type", def.Type)
	}
	r.defs[def.Type] = def
}

// Get returns the definition for a type, or nil when unregistered.
func (r *Registry) Get(typ string) *Definition {
	return r.defs[typ]
}

// Unregister removes a type. Removing an unknown type is a no-op.
func (r *Registry) Unregister(typ string) {
	delete(r.defs, typ)
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.defs))
	for typ := range r.defs {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}
