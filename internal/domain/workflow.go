package domain

import (
	"fmt"
	"time"
)

// Workflow node types understood by the editor. The set is open: unknown
// types are carried through import/export untouched.
const (
	NodeStart = "startNode"
	NodeCode  = "codeNode"
)

// Point is a node position on the workflow canvas.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WorkflowNode is a typed node in a workflow graph.
type WorkflowNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Point          `json:"position"`
	Width    int            `json:"width,omitempty"`
	Height   int            `json:"height,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// WorkflowEdge connects two nodes within the same workflow.
type WorkflowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Workflow is a node/edge graph representing an automation, scoped to a
// parent page. It is deleted independently of the page.
type Workflow struct {
	ID           string
	Title        string
	ParentPageID string
	Nodes        []WorkflowNode
	Edges        []WorkflowEdge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Node returns the node with the given id, or nil.
func (w *Workflow) Node(id string) *WorkflowNode {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}
	return nil
}

// Validate checks graph integrity: node ids unique, every edge endpoint
// names an existing node in this workflow.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("workflow %s: node with empty id", w.ID)
		}
		if seen[n.ID] {
			return fmt.Errorf("workflow %s: duplicate node id %q", w.ID, n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range w.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("workflow %s: edge %s source %q does not exist", w.ID, e.ID, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("workflow %s: edge %s target %q does not exist", w.ID, e.ID, e.Target)
		}
	}
	return nil
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	dup := *w
	dup.Nodes = make([]WorkflowNode, len(w.Nodes))
	for i, n := range w.Nodes {
		dup.Nodes[i] = n
		dup.Nodes[i].Data = CloneProps(n.Data)
	}
	dup.Edges = make([]WorkflowEdge, len(w.Edges))
	copy(dup.Edges, w.Edges)
	return &dup
}
