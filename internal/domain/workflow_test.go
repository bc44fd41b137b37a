package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowValidate(t *testing.T) {
	valid := &Workflow{
		ID: "wf1",
		Nodes: []WorkflowNode{
			{ID: "n1", Type: NodeStart},
			{ID: "n2", Type: NodeCode},
		},
		Edges: []WorkflowEdge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
	require.NoError(t, valid.Validate())

	danglingTarget := valid.Clone()
	danglingTarget.Edges[0].Target = "ghost"
	assert.ErrorContains(t, danglingTarget.Validate(), "target")

	danglingSource := valid.Clone()
	danglingSource.Edges[0].Source = "ghost"
	assert.ErrorContains(t, danglingSource.Validate(), "source")

	dupNode := valid.Clone()
	dupNode.Nodes = append(dupNode.Nodes, WorkflowNode{ID: "n1"})
	assert.ErrorContains(t, dupNode.Validate(), "duplicate")
}

func TestWorkflowCloneIsDeep(t *testing.T) {
	w := &Workflow{
		ID:    "wf1",
		Nodes: []WorkflowNode{{ID: "n1", Data: map[string]any{"code": "x"}}},
		Edges: []WorkflowEdge{{ID: "e1", Source: "n1", Target: "n1"}},
	}
	dup := w.Clone()
	dup.Nodes[0].Data["code"] = "changed"
	dup.Edges[0].Target = "other"

	assert.Equal(t, "x", w.Nodes[0].Data["code"])
	assert.Equal(t, "n1", w.Edges[0].Target)
}

func TestComponentCloneIsDeep(t *testing.T) {
	parent := "root"
	c := &Component{
		ID:       "c1",
		ParentID: &parent,
		Props:    map[string]any{"style": map[string]any{"bold": true}},
	}
	dup := c.Clone()
	dup.Props["style"].(map[string]any)["bold"] = false
	*dup.ParentID = "elsewhere"

	assert.Equal(t, true, c.Props["style"].(map[string]any)["bold"])
	assert.Equal(t, "root", *c.ParentID)
}
