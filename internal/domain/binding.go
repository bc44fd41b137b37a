package domain

import (
	"fmt"
	"strings"
)

// BindingKind identifies the source an expression reads from.
type BindingKind string

const (
	BindComponent BindingKind = "component"
	BindQuery     BindingKind = "query"
)

// BindingRef is a parsed reference to another entity's output, e.g.
// "component.input1.value" or "query.orders.records". Expressions are
// parsed once at the edge of the system; everything downstream works with
// the structured form.
type BindingRef struct {
	Kind BindingKind
	ID   string
	Path []string
}

// ParseBindingRef parses a dotted binding expression. The first segment is
// the kind, the second the entity id, the rest the value path.
func ParseBindingRef(expr string) (BindingRef, error) {
	parts := strings.Split(expr, ".")
	if len(parts) < 3 {
		return BindingRef{}, fmt.Errorf("binding expression %q: want kind.id.path", expr)
	}
	kind := BindingKind(parts[0])
	switch kind {
	case BindComponent, BindQuery:
	default:
		return BindingRef{}, fmt.Errorf("binding expression %q: unknown kind %q", expr, parts[0])
	}
	if parts[1] == "" {
		return BindingRef{}, fmt.Errorf("binding expression %q: empty id", expr)
	}
	return BindingRef{Kind: kind, ID: parts[1], Path: parts[2:]}, nil
}

// IsBindingExpr reports whether s parses as a binding expression.
func IsBindingExpr(s string) bool {
	_, err := ParseBindingRef(s)
	return err == nil
}

// String renders the reference back to its expression form.
// ParseBindingRef(r.String()) round-trips.
func (r BindingRef) String() string {
	return string(r.Kind) + "." + r.ID + "." + strings.Join(r.Path, ".")
}
