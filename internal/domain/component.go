package domain

import "time"

// Component is a node in a page's UI tree. ParentID is nil for the page
// root; every other component must be reachable from the root through its
// ParentID chain.
type Component struct {
	ID       string
	Type     string
	PageID   string
	ParentID *string
	Props    map[string]any
	Order    int

	// Runtime state, not part of structural identity.
	Value    any
	Bindings []BindingRef

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot reports whether the component is its page's root.
func (c *Component) IsRoot() bool {
	return c.ParentID == nil
}

// Clone returns a deep copy of the component. Props, Value, and Bindings
// are copied so mutations on the clone never alias the original.
func (c *Component) Clone() *Component {
	dup := *c
	if c.ParentID != nil {
		p := *c.ParentID
		dup.ParentID = &p
	}
	dup.Props = CloneProps(c.Props)
	dup.Value = cloneValue(c.Value)
	if c.Bindings != nil {
		dup.Bindings = make([]BindingRef, len(c.Bindings))
		copy(dup.Bindings, c.Bindings)
	}
	return &dup
}

// CloneProps deep-copies a property bag. Nested maps and slices are copied
// recursively; scalar values are shared.
func CloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
