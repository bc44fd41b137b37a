package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneDoesNotAliasProps(t *testing.T) {
	parent := "root"
	c := &Component{
		ID:       "c1",
		Type:     "text",
		PageID:   "p1",
		ParentID: &parent,
		Props:    map[string]any{"style": map[string]any{"color": "red"}},
	}

	dup := c.Clone()
	dup.Props["style"].(map[string]any)["color"] = "blue"
	*dup.ParentID = "other"

	assert.Equal(t, "red", c.Props["style"].(map[string]any)["color"])
	assert.Equal(t, "root", *c.ParentID)
}

func TestCloneDoesNotAliasValue(t *testing.T) {
	c := &Component{
		ID:    "c1",
		Type:  "input",
		Value: map[string]any{"rows": []any{"a", "b"}},
	}

	dup := c.Clone()
	m, ok := dup.Value.(map[string]any)
	require.True(t, ok)
	m["rows"].([]any)[0] = "mutated"
	m["extra"] = true

	orig := c.Value.(map[string]any)
	assert.Equal(t, "a", orig["rows"].([]any)[0])
	assert.NotContains(t, orig, "extra")
}
