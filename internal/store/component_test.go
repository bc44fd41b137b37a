package store

import (
	"testing"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T, s *Store, title string) *domain.Page {
	t.Helper()
	p, err := s.CreatePage(&domain.Page{Title: title})
	require.NoError(t, err)
	return p
}

func TestCreateComponentAssignsOrderAfterSiblings(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Order)

	a, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)
	b, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)

	children := s.ChildrenOf(root.ID)
	require.Len(t, children, 2)
	assert.Equal(t, a.ID, children[0].ID)
	assert.Equal(t, b.ID, children[1].ID)
}

func TestCreateComponentSingleRootPerPage(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	_, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)

	// A second root on the same page violates the tree invariant.
	_, err = s.CreateComponent(page.ID, "container", nil, nil)
	assert.ErrorIs(t, err, ErrRootExists)

	// Another page gets its own root.
	other := newTestPage(t, s, "About")
	_, err = s.CreateComponent(other.ID, "container", nil, nil)
	assert.NoError(t, err)
}

func TestSetComponentToleratesDanglingParent(t *testing.T) {
	s := New(nil)
	ghost := "not-yet-created"
	s.SetComponent(&domain.Component{ID: "orphan", Type: "text", PageID: "p1", ParentID: &ghost})

	got, ok := s.Component("orphan")
	require.True(t, ok)
	assert.Equal(t, ghost, *got.ParentID)
	// The dangling parent simply has no resolvable children container;
	// nothing lists the orphan under a real node.
	assert.Empty(t, s.ChildrenOf("some-real-node"))
}

func TestDeleteComponentCascadesSubtree(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	// P; root A (container); child B (text) under A. Deleting A removes both.
	a, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	b, err := s.CreateComponent(page.ID, "text", &a.ID, nil)
	require.NoError(t, err)
	c, err := s.CreateComponent(page.ID, "text", &b.ID, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteComponent(a.ID))

	for _, id := range []string{a.ID, b.ID, c.ID} {
		_, ok := s.Component(id)
		assert.False(t, ok, "component %s should be deleted", id)
	}
	// No survivor references a deleted id.
	for _, comp := range s.Components() {
		if comp.ParentID != nil {
			assert.NotContains(t, []string{a.ID, b.ID, c.ID}, *comp.ParentID)
		}
	}
}

func TestDeleteComponentStripsBindings(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	src, err := s.CreateComponent(page.ID, "input", &root.ID, nil)
	require.NoError(t, err)
	dst, err := s.CreateComponent(page.ID, "text", &root.ID, map[string]any{
		"content": "component." + src.ID + ".value",
		"static":  "hello",
	})
	require.NoError(t, err)
	require.NoError(t, s.SetComponentProp(dst.ID, "nested", map[string]any{
		"inner": "component." + src.ID + ".value",
	}))

	bound, ok := s.Component(dst.ID)
	require.True(t, ok)
	bound.Bindings = []domain.BindingRef{
		{Kind: domain.BindComponent, ID: src.ID, Path: []string{"value"}},
		{Kind: domain.BindQuery, ID: "orders", Path: []string{"records"}},
	}
	s.SetComponent(bound)

	require.NoError(t, s.DeleteComponent(src.ID))

	got, ok := s.Component(dst.ID)
	require.True(t, ok)
	assert.NotContains(t, got.Props, "content")
	assert.Equal(t, "hello", got.Props["static"])
	assert.NotContains(t, got.Props["nested"].(map[string]any), "inner")
	require.Len(t, got.Bindings, 1)
	assert.Equal(t, domain.BindQuery, got.Bindings[0].Kind)
}

func TestChangeComponentPositionAtomicBatch(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	a, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)
	b, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)

	// Valid batch: swap sibling order.
	require.NoError(t, s.ChangeComponentPosition([]Move{
		{ID: a.ID, ParentID: &root.ID, Order: 1},
		{ID: b.ID, ParentID: &root.ID, Order: 0},
	}))
	children := s.ChildrenOf(root.ID)
	assert.Equal(t, b.ID, children[0].ID)
	assert.Equal(t, a.ID, children[1].ID)

	// Failing batch: one target does not exist. No partial application.
	err = s.ChangeComponentPosition([]Move{
		{ID: a.ID, ParentID: &root.ID, Order: 5},
		{ID: "ghost", ParentID: &root.ID, Order: 6},
	})
	require.ErrorIs(t, err, ErrNotFound)

	after := s.ChildrenOf(root.ID)
	assert.Equal(t, b.ID, after[0].ID)
	assert.Equal(t, 0, after[0].Order)
	assert.Equal(t, a.ID, after[1].ID)
	assert.Equal(t, 1, after[1].Order)
}

func TestUpdateComponentIDRewritesReferences(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	child, err := s.CreateComponent(page.ID, "text", &root.ID, map[string]any{
		"content": "component." + root.ID + ".value",
	})
	require.NoError(t, err)

	bound, _ := s.Component(child.ID)
	bound.Bindings = []domain.BindingRef{{Kind: domain.BindComponent, ID: root.ID, Path: []string{"value"}}}
	s.SetComponent(bound)

	wf, err := s.NewWorkflow(page.ID, "On click")
	require.NoError(t, err)
	node := wf.Nodes[1]
	require.NoError(t, s.DeleteWorkflowNode(wf.ID, node.ID))
	node.Data = map[string]any{"target": "component." + root.ID + ".value"}
	require.NoError(t, s.AddWorkflowNode(wf.ID, node))

	require.NoError(t, s.UpdateComponentID(root.ID, "mainRoot"))

	_, ok := s.Component(root.ID)
	assert.False(t, ok)
	renamed, ok := s.Component("mainRoot")
	require.True(t, ok)
	assert.Nil(t, renamed.ParentID)

	got, _ := s.Component(child.ID)
	assert.Equal(t, "mainRoot", *got.ParentID)
	assert.Equal(t, "component.mainRoot.value", got.Props["content"])
	assert.Equal(t, "mainRoot", got.Bindings[0].ID)

	wfAfter, _ := s.Workflow(wf.ID)
	assert.Equal(t, "component.mainRoot.value", wfAfter.Node(node.ID).Data["target"])
}

func TestUpdateComponentIDCollisionIsNoOp(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	child, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)

	err = s.UpdateComponentID(child.ID, root.ID)
	require.ErrorIs(t, err, ErrIDTaken)

	// Both components still present under their original ids.
	_, ok := s.Component(root.ID)
	assert.True(t, ok)
	_, ok = s.Component(child.ID)
	assert.True(t, ok)
}

func TestDeletePageCascadesComponents(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")
	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	_, err = s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeletePage(page.ID))

	_, ok := s.Page(page.ID)
	assert.False(t, ok)
	assert.Empty(t, s.Components())
}

func TestSubscribeDeliversFineGrainedChanges(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")

	var got []Change
	unsub := s.Subscribe(func(ch Change) { got = append(got, ch) })
	defer unsub()

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, KindComponent, got[0].Kind)
	assert.Equal(t, OpUpsert, got[0].Op)
	assert.Equal(t, root.ID, got[0].ID)

	unsub()
	_, err = s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1, "unsubscribed listener must not fire")
}

func TestPageVersionMonotonic(t *testing.T) {
	s := New(nil)
	page := newTestPage(t, s, "Home")
	v0 := s.PageVersion(page.ID)

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	v1 := s.PageVersion(page.ID)
	assert.Greater(t, v1, v0)

	require.NoError(t, s.SetComponentValue(root.ID, "x"))
	assert.Greater(t, s.PageVersion(page.ID), v1)
}
