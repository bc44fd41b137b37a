package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/janver/pagecraft/internal/domain"
)

// Auto-layout constants for seeded workflow nodes.
const (
	layoutOriginX  = 120
	layoutOriginY  = 80
	layoutRowPitch = 140
)

// autoLayout assigns each node a distinct position in a vertical flow.
// Nodes that already carry a non-zero position keep it.
func autoLayout(nodes []domain.WorkflowNode) {
	for i := range nodes {
		if nodes[i].Position == (domain.Point{}) {
			nodes[i].Position = domain.Point{X: layoutOriginX, Y: layoutOriginY + i*layoutRowPitch}
		}
	}
}

// Workflow returns a deep copy of the workflow with the given id.
func (s *Store) Workflow(id string) (*domain.Workflow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workflows[id]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Workflows returns deep copies of all workflows keyed by id.
func (s *Store) Workflows() map[string]*domain.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*domain.Workflow, len(s.workflows))
	for id, w := range s.workflows {
		out[id] = w.Clone()
	}
	return out
}

// NewWorkflow creates a workflow scoped to a page, seeded with a start node
// wired to a code node. Auto-layout keeps the two nodes apart.
func (s *Store) NewWorkflow(pageID, title string) (*domain.Workflow, error) {
	start := time.Now()

	now := time.Now().UTC()
	startID := uuid.New().String()
	codeID := uuid.New().String()
	w := &domain.Workflow{
		ID:           uuid.New().String(),
		Title:        title,
		ParentPageID: pageID,
		Nodes: []domain.WorkflowNode{
			{ID: startID, Type: domain.NodeStart, Data: map[string]any{"label": "Start"}},
			{ID: codeID, Type: domain.NodeCode, Data: map[string]any{"code": ""}},
		},
		Edges: []domain.WorkflowEdge{
			{ID: uuid.New().String(), Source: startID, Target: codeID, Type: "default"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	autoLayout(w.Nodes)

	s.mu.Lock()
	s.workflows[w.ID] = w
	s.bumpPage(pageID)
	s.mu.Unlock()

	s.observe("new_workflow", w.ID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: w.ID})
	return w.Clone(), nil
}

// SetWorkflow upserts a workflow after validating graph integrity.
func (s *Store) SetWorkflow(w *domain.Workflow) error {
	start := time.Now()
	if err := w.Validate(); err != nil {
		s.observe("set_workflow", w.ID, start, err)
		return err
	}

	s.mu.Lock()
	stored := w.Clone()
	stored.UpdatedAt = time.Now().UTC()
	if existing, ok := s.workflows[w.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.workflows[w.ID] = stored
	s.bumpPage(w.ParentPageID)
	s.mu.Unlock()

	s.observe("set_workflow", w.ID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: w.ID})
	return nil
}

// DeleteWorkflow removes a workflow. Independent of its parent page.
func (s *Store) DeleteWorkflow(id string) error {
	start := time.Now()
	s.mu.Lock()
	w, ok := s.workflows[id]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("workflow %s: %w", id, ErrNotFound)
		s.observe("delete_workflow", id, start, err)
		return err
	}
	pageID := w.ParentPageID
	delete(s.workflows, id)
	s.bumpPage(pageID)
	s.mu.Unlock()

	s.observe("delete_workflow", id, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpDelete, ID: id})
	return nil
}

// AddWorkflowNode appends a node to a workflow, auto-positioning it when no
// position is given.
func (s *Store) AddWorkflowNode(workflowID string, node domain.WorkflowNode) error {
	start := time.Now()
	s.mu.Lock()
	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("workflow %s: %w", workflowID, ErrNotFound)
		s.observe("add_workflow_node", workflowID, start, err)
		return err
	}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if w.Node(node.ID) != nil {
		s.mu.Unlock()
		err := fmt.Errorf("workflow node %s: %w", node.ID, ErrIDTaken)
		s.observe("add_workflow_node", workflowID, start, err)
		return err
	}
	if node.Position == (domain.Point{}) {
		node.Position = domain.Point{
			X: layoutOriginX,
			Y: layoutOriginY + len(w.Nodes)*layoutRowPitch,
		}
	}
	w.Nodes = append(w.Nodes, node)
	w.UpdatedAt = time.Now().UTC()
	s.bumpPage(w.ParentPageID)
	s.mu.Unlock()

	s.observe("add_workflow_node", workflowID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: workflowID})
	return nil
}

// AddWorkflowEdge appends an edge after checking both endpoints exist in
// the workflow.
func (s *Store) AddWorkflowEdge(workflowID string, edge domain.WorkflowEdge) error {
	start := time.Now()
	s.mu.Lock()
	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("workflow %s: %w", workflowID, ErrNotFound)
		s.observe("add_workflow_edge", workflowID, start, err)
		return err
	}
	if w.Node(edge.Source) == nil {
		s.mu.Unlock()
		err := fmt.Errorf("edge source %s: %w", edge.Source, ErrNotFound)
		s.observe("add_workflow_edge", workflowID, start, err)
		return err
	}
	if w.Node(edge.Target) == nil {
		s.mu.Unlock()
		err := fmt.Errorf("edge target %s: %w", edge.Target, ErrNotFound)
		s.observe("add_workflow_edge", workflowID, start, err)
		return err
	}
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	w.Edges = append(w.Edges, edge)
	w.UpdatedAt = time.Now().UTC()
	s.bumpPage(w.ParentPageID)
	s.mu.Unlock()

	s.observe("add_workflow_edge", workflowID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: workflowID})
	return nil
}

// DeleteWorkflowNode removes a node and every edge touching it.
func (s *Store) DeleteWorkflowNode(workflowID, nodeID string) error {
	start := time.Now()
	s.mu.Lock()
	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("workflow %s: %w", workflowID, ErrNotFound)
		s.observe("delete_workflow_node", workflowID, start, err)
		return err
	}
	idx := -1
	for i := range w.Nodes {
		if w.Nodes[i].ID == nodeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		err := fmt.Errorf("workflow node %s: %w", nodeID, ErrNotFound)
		s.observe("delete_workflow_node", workflowID, start, err)
		return err
	}
	w.Nodes = append(w.Nodes[:idx], w.Nodes[idx+1:]...)
	kept := w.Edges[:0]
	for _, e := range w.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			continue
		}
		kept = append(kept, e)
	}
	w.Edges = kept
	w.UpdatedAt = time.Now().UTC()
	s.bumpPage(w.ParentPageID)
	s.mu.Unlock()

	s.observe("delete_workflow_node", workflowID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: workflowID})
	return nil
}

// ChangeNodePosition moves a single node on the workflow canvas.
func (s *Store) ChangeNodePosition(workflowID, nodeID string, pos domain.Point) error {
	return s.mutateNode("change_node_position", workflowID, nodeID, func(n *domain.WorkflowNode) {
		n.Position = pos
	})
}

// ChangeNodeDimensions resizes a single node.
func (s *Store) ChangeNodeDimensions(workflowID, nodeID string, width, height int) error {
	return s.mutateNode("change_node_dimensions", workflowID, nodeID, func(n *domain.WorkflowNode) {
		n.Width = width
		n.Height = height
	})
}

func (s *Store) mutateNode(action, workflowID, nodeID string, fn func(n *domain.WorkflowNode)) error {
	start := time.Now()
	s.mu.Lock()
	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("workflow %s: %w", workflowID, ErrNotFound)
		s.observe(action, workflowID, start, err)
		return err
	}
	n := w.Node(nodeID)
	if n == nil {
		s.mu.Unlock()
		err := fmt.Errorf("workflow node %s: %w", nodeID, ErrNotFound)
		s.observe(action, nodeID, start, err)
		return err
	}
	fn(n)
	w.UpdatedAt = time.Now().UTC()
	s.bumpPage(w.ParentPageID)
	s.mu.Unlock()

	s.observe(action, nodeID, start, nil)
	s.notify(Change{Kind: KindWorkflow, Op: OpUpsert, ID: workflowID})
	return nil
}
