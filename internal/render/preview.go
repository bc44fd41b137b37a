package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/registry"
)

// Preview is the read-only renderer variant. It carries no cache and no
// interaction state; every call re-reads the page's full component map.
// That cost is acceptable off the edit hot path.
type Preview struct {
	reader TreeReader
	reg    *registry.Registry
	sink   ErrorSink
}

// NewPreview creates a read-only renderer. A nil sink defaults to NoopSink.
func NewPreview(reader TreeReader, reg *registry.Registry, sink ErrorSink) *Preview {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Preview{reader: reader, reg: reg, sink: sink}
}

// RenderPage renders the page tree from scratch.
func (p *Preview) RenderPage(pageID string) string {
	components := p.reader.ComponentsByPage(pageID)

	var root *domain.Component
	children := make(map[string][]*domain.Component)
	for _, c := range components {
		if c.ParentID == nil {
			root = c
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	if root == nil {
		return lipgloss.NewStyle().Faint(true).Render("(empty page)")
	}
	for _, sibs := range children {
		sort.SliceStable(sibs, func(i, j int) bool {
			if sibs[i].Order != sibs[j].Order {
				return sibs[i].Order < sibs[j].Order
			}
			return sibs[i].ID < sibs[j].ID
		})
	}
	return p.renderNode(root, children)
}

func (p *Preview) renderNode(c *domain.Component, children map[string][]*domain.Component) string {
	def := p.reg.Get(c.Type)
	if def == nil {
		p.sink.RenderError(c.ID, c.Type, errUnknownType(c.Type))
		return ""
	}
	rendered := make([]string, 0, len(children[c.ID]))
	for _, child := range children[c.ID] {
		if out := p.renderNode(child, children); out != "" {
			rendered = append(rendered, out)
		}
	}
	return def.Render(c, rendered)
}

type unknownTypeError string

func (e unknownTypeError) Error() string { return "unknown component type " + string(e) }

func errUnknownType(typ string) error { return unknownTypeError(typ) }
