package binding

import (
	"testing"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(kind domain.BindingKind, id string, path ...string) domain.BindingRef {
	return domain.BindingRef{Kind: kind, ID: id, Path: path}
}

func TestResolveMissingSourceResetsToEmpty(t *testing.T) {
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "P"})
	require.NoError(t, err)

	// Y has a value, X does not exist. The derived value must be empty,
	// never a partial concatenation.
	y, err := s.CreateComponent(page.ID, "input", nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetComponentValue(y.ID, "5"))

	r := New(NewStoreSource(s), nil)
	got, ok := r.Resolve([]domain.BindingRef{
		ref(domain.BindComponent, "X", "value"),
		ref(domain.BindComponent, y.ID, "value"),
	})
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestResolveConcatenatesAllPresentSources(t *testing.T) {
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "P"})
	require.NoError(t, err)

	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	a, err := s.CreateComponent(page.ID, "input", &root.ID, nil)
	require.NoError(t, err)
	b, err := s.CreateComponent(page.ID, "input", &root.ID, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetComponentValue(a.ID, "hello "))
	require.NoError(t, s.SetComponentValue(b.ID, "world"))

	r := New(NewStoreSource(s), nil)
	got, ok := r.Resolve([]domain.BindingRef{
		ref(domain.BindComponent, a.ID, "value"),
		ref(domain.BindComponent, b.ID, "value"),
	})
	assert.True(t, ok)
	assert.Equal(t, "hello world", got)
}

func TestResolveQuerySourcePaths(t *testing.T) {
	queries := MapSource{
		"orders": map[string]any{
			"records": []any{
				map[string]any{"total": float64(42)},
			},
		},
	}
	r := New(nil, queries)

	got, ok := r.Resolve([]domain.BindingRef{
		ref(domain.BindQuery, "orders", "records", "0", "total"),
	})
	assert.True(t, ok)
	assert.Equal(t, "42", got)

	_, ok = r.Resolve([]domain.BindingRef{
		ref(domain.BindQuery, "orders", "records", "7", "total"),
	})
	assert.False(t, ok)
}

func TestStoreSourcePropsPath(t *testing.T) {
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "P"})
	require.NoError(t, err)
	c, err := s.CreateComponent(page.ID, "text", nil, map[string]any{
		"style": map[string]any{"tone": "ok"},
	})
	require.NoError(t, err)

	src := NewStoreSource(s)
	v, ok := src.Lookup(ref(domain.BindComponent, c.ID, "props", "style", "tone"))
	require.True(t, ok)
	assert.Equal(t, "ok", v)

	_, ok = src.Lookup(ref(domain.BindComponent, c.ID, "props", "missing"))
	assert.False(t, ok)
	_, ok = src.Lookup(ref(domain.BindComponent, c.ID, "bogusRoot"))
	assert.False(t, ok)
}

func TestWatcherKeepsDerivedValueInSync(t *testing.T) {
	s := store.New(nil)
	page, err := s.CreatePage(&domain.Page{Title: "P"})
	require.NoError(t, err)
	root, err := s.CreateComponent(page.ID, "container", nil, nil)
	require.NoError(t, err)
	src, err := s.CreateComponent(page.ID, "input", &root.ID, nil)
	require.NoError(t, err)
	dst, err := s.CreateComponent(page.ID, "text", &root.ID, nil)
	require.NoError(t, err)

	bound, _ := s.Component(dst.ID)
	bound.Bindings = []domain.BindingRef{ref(domain.BindComponent, src.ID, "value")}
	s.SetComponent(bound)

	w := NewWatcher(s, New(NewStoreSource(s), nil))
	defer w.Close()

	require.NoError(t, s.SetComponentValue(src.ID, "typed"))
	got, _ := s.Component(dst.ID)
	assert.Equal(t, "typed", got.Value)

	// Source loses its value: derived resets to empty.
	require.NoError(t, s.SetComponentValue(src.ID, nil))
	got, _ = s.Component(dst.ID)
	assert.Equal(t, "", got.Value)
}
