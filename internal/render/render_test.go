package render

import (
	"strings"
	"testing"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/registry"
	"github.com/janver/pagecraft/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry builds a registry with plain text/container definitions and
// a per-test render counter.
func testRegistry(counts map[string]int) *registry.Registry {
	reg := registry.New(nil)
	reg.Register(&registry.Definition{
		Type: "container",
		Render: func(c *domain.Component, children []string) string {
			counts[c.ID]++
			return "[" + strings.Join(children, "|") + "]"
		},
	})
	reg.Register(&registry.Definition{
		Type: "text",
		Render: func(c *domain.Component, children []string) string {
			counts[c.ID]++
			content, _ := c.Props["content"].(string)
			return content
		},
	})
	return reg
}

type treeFixture struct {
	store *store.Store
	page  *domain.Page
	root  *domain.Component
	a, b  *domain.Component
}

func newTree(t *testing.T) *treeFixture {
	t.Helper()
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "Home"})
	require.NoError(t, err)
	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	a, err := s.CreateComponent(page.ID, "text", &root.ID, map[string]any{"content": "alpha"})
	require.NoError(t, err)
	b, err := s.CreateComponent(page.ID, "text", &root.ID, map[string]any{"content": "beta"})
	require.NoError(t, err)
	return &treeFixture{store: s, page: page, root: root, a: a, b: b}
}

func TestEditorRendersChildrenInOrder(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	ed := NewEditor(fix.store, testRegistry(counts), nil)

	out := ed.RenderPage(fix.page.ID)
	assert.Equal(t, "[alpha|beta]", out)

	// Swap sibling order; invalidate; order flips.
	require.NoError(t, fix.store.ChangeComponentPosition([]store.Move{
		{ID: fix.a.ID, ParentID: &fix.root.ID, Order: 2},
	}))
	ed.Invalidate(fix.a.ID)
	assert.Equal(t, "[beta|alpha]", ed.RenderPage(fix.page.ID))
}

func TestEditorSkipsUnknownTypeWithoutError(t *testing.T) {
	fix := newTree(t)
	_, err := fix.store.CreateComponent(fix.page.ID, "holo-deck", &fix.root.ID, nil)
	require.NoError(t, err)

	counts := map[string]int{}
	ed := NewEditor(fix.store, testRegistry(counts), nil)

	// Known siblings still render; the unknown node is simply absent.
	assert.Equal(t, "[alpha|beta]", ed.RenderPage(fix.page.ID))
}

func TestEditorUnresolvedIDRendersNothing(t *testing.T) {
	fix := newTree(t)
	ed := NewEditor(fix.store, testRegistry(map[string]int{}), nil)
	assert.Equal(t, "", ed.Render("no-such-component"))
}

type recordingSink struct {
	ids   []string
	types []string
}

func (r *recordingSink) RenderError(id, typ string, err error) {
	r.ids = append(r.ids, id)
	r.types = append(r.types, typ)
}

func TestEditorFaultBoundaryIsolatesPanickingNode(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	reg := testRegistry(counts)
	reg.Register(&registry.Definition{
		Type: "bomb",
		Render: func(c *domain.Component, children []string) string {
			panic("render exploded")
		},
	})
	bomb, err := fix.store.CreateComponent(fix.page.ID, "bomb", &fix.root.ID, nil)
	require.NoError(t, err)

	sink := &recordingSink{}
	ed := NewEditor(fix.store, reg, sink)

	out := ed.RenderPage(fix.page.ID)
	// Siblings survive; the failed node shows an inline affordance.
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "retry")
	require.Contains(t, sink.ids, bomb.ID)
	require.Contains(t, sink.types, "bomb")

	// Faulted node stays faulted across renders until retried.
	before := len(sink.ids)
	ed.RenderPage(fix.page.ID)
	assert.Len(t, sink.ids, before, "faulted node must not re-run its render func")

	// Retry re-arms the node; still failing, it reports again.
	ed.Retry(bomb.ID)
	ed.RenderPage(fix.page.ID)
	assert.Greater(t, len(sink.ids), before)
}

func TestEditorDirtySkipAvoidsReRender(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	ed := NewEditor(fix.store, testRegistry(counts), nil)

	ed.RenderPage(fix.page.ID)
	require.Equal(t, 1, counts[fix.a.ID])

	// Unchanged content: cached output reused, render funcs not re-run.
	ed.RenderPage(fix.page.ID)
	assert.Equal(t, 1, counts[fix.a.ID])
	assert.Equal(t, 1, counts[fix.root.ID])

	// Structurally equal but freshly allocated props must also hit the
	// cache: comparison is deep, not reference.
	require.NoError(t, fix.store.SetComponentProp(fix.a.ID, "content", "alpha"))
	ed.Invalidate(fix.a.ID)
	ed.RenderPage(fix.page.ID)
	assert.Equal(t, 1, counts[fix.a.ID], "deep-equal props must not be dirty")

	// A real change re-renders the node and its ancestors only.
	require.NoError(t, fix.store.SetComponentProp(fix.a.ID, "content", "ALPHA"))
	ed.Invalidate(fix.a.ID)
	out := ed.RenderPage(fix.page.ID)
	assert.Equal(t, "[ALPHA|beta]", out)
	assert.Equal(t, 2, counts[fix.a.ID])
	assert.Equal(t, 1, counts[fix.b.ID], "untouched sibling must be skipped")
}

func TestEditorSelectionDecoratesWithoutInvalidation(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	ed := NewEditor(fix.store, testRegistry(counts), nil)

	plain := ed.RenderPage(fix.page.ID)
	ed.SetSelection(fix.a.ID, "")
	selected := ed.RenderPage(fix.page.ID)

	assert.NotEqual(t, plain, selected)
	assert.Equal(t, 1, counts[fix.a.ID], "selection must not re-run render funcs")
}

func TestEditorWalkDepthFirstSiblingOrder(t *testing.T) {
	fix := newTree(t)
	ed := NewEditor(fix.store, testRegistry(map[string]int{}), nil)

	assert.Equal(t, []string{fix.root.ID, fix.a.ID, fix.b.ID}, ed.Walk(fix.page.ID))
	assert.Nil(t, ed.Walk("no-such-page"))
}

func TestEditorEvictAfterDelete(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	ed := NewEditor(fix.store, testRegistry(counts), nil)

	require.Equal(t, "[alpha|beta]", ed.RenderPage(fix.page.ID))

	require.NoError(t, fix.store.DeleteComponent(fix.b.ID))
	ed.Evict(fix.b.ID)

	assert.Equal(t, "[alpha]", ed.RenderPage(fix.page.ID))
}

func TestPreviewRendersFreshEachCall(t *testing.T) {
	fix := newTree(t)
	counts := map[string]int{}
	pv := NewPreview(fix.store, testRegistry(counts), nil)

	assert.Equal(t, "[alpha|beta]", pv.RenderPage(fix.page.ID))

	// No cache: a store change shows up without any invalidation step.
	require.NoError(t, fix.store.SetComponentProp(fix.b.ID, "content", "BETA"))
	assert.Equal(t, "[alpha|BETA]", pv.RenderPage(fix.page.ID))
	assert.Equal(t, 2, counts[fix.root.ID])
}

func TestPreviewSkipsUnknownType(t *testing.T) {
	fix := newTree(t)
	_, err := fix.store.CreateComponent(fix.page.ID, "mystery", &fix.root.ID, nil)
	require.NoError(t, err)

	sink := &recordingSink{}
	pv := NewPreview(fix.store, testRegistry(map[string]int{}), sink)

	assert.Equal(t, "[alpha|beta]", pv.RenderPage(fix.page.ID))
	assert.Contains(t, sink.types, "mystery")
}

func TestPreviewEmptyPage(t *testing.T) {
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "Blank"})
	require.NoError(t, err)

	pv := NewPreview(s, testRegistry(map[string]int{}), nil)
	assert.Contains(t, pv.RenderPage(page.ID), "empty page")
}
