// Package render walks the component tree and dispatches to per-type render
// functions from the registry. The Editor variant adds selection styling,
// per-node fault isolation, and a dirty-gated render cache; the Preview
// variant is a plain read-only pass.
package render

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/janver/pagecraft/internal/domain"
)

// TreeReader is the slice of the entity store the renderer needs.
type TreeReader interface {
	Component(id string) (*domain.Component, bool)
	ChildrenOf(id string) []*domain.Component
	RootOf(pageID string) (*domain.Component, bool)
	ComponentsByPage(pageID string) map[string]*domain.Component
	AncestorChain(id string) []string
}

// ErrorSink receives render failures for observability.
type ErrorSink interface {
	RenderError(componentID, componentType string, err error)
}

// NoopSink ignores render failures.
type NoopSink struct{}

func (NoopSink) RenderError(string, string, error) {}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink writes render failures to the provided writer.
func NewLogSink(w io.Writer) ErrorSink {
	if w == nil {
		return NoopSink{}
	}
	return &logSink{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

func (s *logSink) RenderError(componentID, componentType string, err error) {
	s.logger.Error("render_error",
		"component_id", componentID,
		"component_type", componentType,
		"error", err.Error(),
	)
}

// defaultDirty reports whether a component changed since its previous
// snapshot, by deep structural comparison over id, type, value, and props.
// Bound props are routinely replaced with structurally-equal fresh
// allocations, so reference equality is never enough here.
func defaultDirty(prev, next *domain.Component) bool {
	if prev == nil || next == nil {
		return true
	}
	if prev.ID != next.ID || prev.Type != next.Type {
		return true
	}
	if !reflect.DeepEqual(prev.Value, next.Value) {
		return true
	}
	return !reflect.DeepEqual(prev.Props, next.Props)
}
