package cli

import (
	"testing"

	"github.com/janver/pagecraft/internal/catalog"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/persist"
	"github.com/janver/pagecraft/internal/registry"
	"github.com/janver/pagecraft/internal/render"
	"github.com/janver/pagecraft/internal/store"
	"github.com/janver/pagecraft/internal/teatest"
	"github.com/janver/pagecraft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	st := store.New(nil)
	reg := registry.New(nil)
	catalog.Register(reg)

	return &App{
		Store:    st,
		Registry: reg,
		Plugins:  registry.NewPluginManager(reg, nil),
		Editor:   render.NewEditor(st, reg, render.NoopSink{}),
		Preview:  render.NewPreview(st, reg, render.NoopSink{}),
		Bridge:   persist.NewBridge(st),
	}
}

func seedPage(t *testing.T, app *App) (pageID, rootID, childID string) {
	t.Helper()
	page, err := app.Store.CreatePage(testutil.NewTestPage("Home"))
	require.NoError(t, err)
	root, err := app.Store.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	child, err := app.Store.CreateComponent(page.ID, "text", &root.ID, map[string]any{"content": "hello"})
	require.NoError(t, err)
	return page.ID, root.ID, child.ID
}

func TestEditorModel_TreeAndCursor(t *testing.T) {
	app := newTestApp(t)
	pageID, rootID, childID := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	view := d.View()
	assert.Contains(t, view, rootID)
	assert.Contains(t, view, childID)

	// Cursor starts on the root; moving down selects the child in the
	// store's UI state.
	assert.Equal(t, rootID, app.Store.UIState().SelectedID)
	d.PressDown()
	assert.Equal(t, childID, app.Store.UIState().SelectedID)
	d.PressUp()
	assert.Equal(t, rootID, app.Store.UIState().SelectedID)
}

func TestEditorModel_EditValue(t *testing.T) {
	app := newTestApp(t)
	pageID, _, childID := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	d.PressDown() // select child
	d.PressKey('v')
	d.Type("updated")
	d.PressEnter()

	c, ok := app.Store.Component(childID)
	require.True(t, ok)
	assert.Equal(t, "updated", c.Value)
}

func TestEditorModel_DeleteComponent(t *testing.T) {
	app := newTestApp(t)
	pageID, rootID, childID := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	d.PressDown()
	d.PressKey('d')

	_, ok := app.Store.Component(childID)
	assert.False(t, ok)
	_, ok = app.Store.Component(rootID)
	assert.True(t, ok)
	assert.NotContains(t, d.View(), childID)
}

func TestEditorModel_AddChildViaPicker(t *testing.T) {
	app := newTestApp(t)
	pageID, rootID, _ := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	before := len(app.Store.ComponentsByPage(pageID))
	d.PressKey('a')
	d.PressEnter() // pick the first registered type

	after := app.Store.ComponentsByPage(pageID)
	require.Len(t, after, before+1)

	// The new component hangs off the selected root.
	children := app.Store.ChildrenOf(rootID)
	assert.Len(t, children, 2)
}

func TestEditorModel_RenameRewrites(t *testing.T) {
	app := newTestApp(t)
	pageID, rootID, _ := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	d.PressKey('n')
	// Clear the prefilled id, then type the new one.
	d.Clear(len(rootID))
	d.Type("main-root")
	d.PressEnter()

	_, ok := app.Store.Component(rootID)
	assert.False(t, ok)
	renamed, ok := app.Store.Component("main-root")
	require.True(t, ok)
	assert.Equal(t, "container", renamed.Type)
	assert.Contains(t, d.View(), "main-root")
}

func TestEditorModel_EscCancelsInput(t *testing.T) {
	app := newTestApp(t)
	pageID, _, childID := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	d.PressDown()
	d.PressKey('v')
	d.Type("discarded")
	d.PressEsc()

	c, _ := app.Store.Component(childID)
	assert.NotEqual(t, "discarded", c.Value)
}

func TestEditorModel_QuitKey(t *testing.T) {
	app := newTestApp(t)
	pageID, _, _ := seedPage(t, app)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	d.PressKey('q')
	assert.True(t, d.Quitting)
}

func TestEditorModel_FaultedNodeMarkedAndRetryable(t *testing.T) {
	app := newTestApp(t)
	app.Registry.Register(&registry.Definition{
		Type: "bomb",
		Render: func(c *domain.Component, children []string) string {
			panic("boom")
		},
	})

	pageID, rootID, _ := seedPage(t, app)
	bomb, err := app.Store.CreateComponent(pageID, "bomb", &rootID, nil)
	require.NoError(t, err)

	d := teatest.New(t, newEditorModel(app, pageID), teatest.WithSize(120, 40))
	d.DrainInit()

	// First View renders the page, tripping the fault boundary.
	_ = d.View()
	assert.True(t, app.Editor.Faulted(bomb.ID))
	assert.Contains(t, d.View(), "✖")
}

func TestResolvePageID(t *testing.T) {
	app := newTestApp(t)
	page, err := app.Store.CreatePage(testutil.NewTestPage("Checkout"))
	require.NoError(t, err)

	id, err := resolvePageID(app, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.ID, id)

	id, err = resolvePageID(app, "checkout")
	require.NoError(t, err)
	assert.Equal(t, page.ID, id)

	id, err = resolvePageID(app, page.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, page.ID, id)

	_, err = resolvePageID(app, "nope")
	assert.Error(t, err)
}
