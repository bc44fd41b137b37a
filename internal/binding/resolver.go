// Package binding computes derived values from structured references into
// other components' or queries' outputs.
package binding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/store"
)

// ValueSource resolves one reference kind to a current value. The second
// return is false when the source has no value yet.
type ValueSource interface {
	Lookup(ref domain.BindingRef) (any, bool)
}

// Resolver combines source values into a derived value. If any source is
// missing, the derived value resets to empty instead of being computed
// from partial inputs.
type Resolver struct {
	components ValueSource
	queries    ValueSource
}

// New creates a resolver. Either source may be nil, in which case every
// lookup of that kind is a miss.
func New(components, queries ValueSource) *Resolver {
	return &Resolver{components: components, queries: queries}
}

// Resolve computes the derived value for a set of references by
// concatenating their stringified values in order. The second return is
// false — and the value empty — when any source path has no value.
func (r *Resolver) Resolve(refs []domain.BindingRef) (string, bool) {
	var b strings.Builder
	for _, ref := range refs {
		var src ValueSource
		switch ref.Kind {
		case domain.BindComponent:
			src = r.components
		case domain.BindQuery:
			src = r.queries
		}
		if src == nil {
			return "", false
		}
		v, ok := src.Lookup(ref)
		if !ok || v == nil {
			return "", false
		}
		b.WriteString(fmt.Sprint(v))
	}
	return b.String(), true
}

// StoreSource resolves component references against the entity store.
type StoreSource struct {
	store *store.Store
}

// NewStoreSource wraps a store as a component ValueSource.
func NewStoreSource(s *store.Store) *StoreSource {
	return &StoreSource{store: s}
}

// Lookup resolves a component reference. The first path segment selects
// the root: "value" for the runtime value, "props" for the property bag.
func (s *StoreSource) Lookup(ref domain.BindingRef) (any, bool) {
	c, ok := s.store.Component(ref.ID)
	if !ok || len(ref.Path) == 0 {
		return nil, false
	}
	var cur any
	switch ref.Path[0] {
	case "value":
		cur = c.Value
	case "props":
		cur = c.Props
	default:
		return nil, false
	}
	return walkPath(cur, ref.Path[1:])
}

// walkPath descends through nested maps and slices by key or index.
func walkPath(v any, path []string) (any, bool) {
	for _, seg := range path {
		switch cur := v.(type) {
		case map[string]any:
			next, ok := cur[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur) {
				return nil, false
			}
			v = cur[idx]
		default:
			return nil, false
		}
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// MapSource is a static ValueSource for query outputs and tests.
type MapSource map[string]any

// Lookup resolves ref.ID against the map, then walks the path.
func (m MapSource) Lookup(ref domain.BindingRef) (any, bool) {
	v, ok := m[ref.ID]
	if !ok {
		return nil, false
	}
	return walkPath(v, ref.Path)
}
