package persist

import (
	"fmt"

	"github.com/janver/pagecraft/internal/domain"
)

// ValidateDocument checks a decoded document against the structural
// invariants before it may replace live state. All problems are collected
// so the user sees the full list at once.
func ValidateDocument(doc *Document) []error {
	var errs []error

	errs = append(errs, validateComponents(doc)...)
	errs = append(errs, validateWorkflows(doc)...)

	return errs
}

func validateComponents(doc *Document) []error {
	var errs []error

	rootsByPage := make(map[string]int)
	for key, c := range doc.Component {
		if c == nil {
			errs = append(errs, fmt.Errorf("component[%s]: null entry", key))
			continue
		}
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("component[%s]: id is required", key))
		} else if c.ID != key {
			errs = append(errs, fmt.Errorf("component[%s]: id %q does not match map key", key, c.ID))
		}
		if c.Type == "" {
			errs = append(errs, fmt.Errorf("component[%s]: type is required", key))
		}
		if c.PageID == "" {
			errs = append(errs, fmt.Errorf("component[%s]: pageId is required", key))
		} else if _, ok := doc.Page[c.PageID]; !ok {
			errs = append(errs, fmt.Errorf("component[%s]: pageId %q does not exist", key, c.PageID))
		}
		if c.ParentID == nil {
			rootsByPage[c.PageID]++
		} else if _, ok := doc.Component[*c.ParentID]; !ok {
			errs = append(errs, fmt.Errorf("component[%s]: parentId %q does not exist", key, *c.ParentID))
		}
		for _, expr := range c.Bindings {
			if _, err := domain.ParseBindingRef(expr); err != nil {
				errs = append(errs, fmt.Errorf("component[%s]: %v", key, err))
			}
		}
	}

	// Exactly one root per page that has components at all.
	componentsByPage := make(map[string]bool)
	for _, c := range doc.Component {
		if c != nil {
			componentsByPage[c.PageID] = true
		}
	}
	for pageID := range componentsByPage {
		switch n := rootsByPage[pageID]; {
		case n == 0:
			errs = append(errs, fmt.Errorf("page %s: no root component (parentId null)", pageID))
		case n > 1:
			errs = append(errs, fmt.Errorf("page %s: %d root components, want exactly 1", pageID, n))
		}
	}

	errs = append(errs, validateNoCycles(doc)...)

	for key, p := range doc.Page {
		if p == nil {
			errs = append(errs, fmt.Errorf("page[%s]: null entry", key))
			continue
		}
		if p.ID != key {
			errs = append(errs, fmt.Errorf("page[%s]: id %q does not match map key", key, p.ID))
		}
		if p.Title == "" {
			errs = append(errs, fmt.Errorf("page[%s]: title is required", key))
		}
	}

	return errs
}

// validateNoCycles walks every component's parent chain; a chain that does
// not terminate at a root within the component count is cyclic.
func validateNoCycles(doc *Document) []error {
	var errs []error
	limit := len(doc.Component)
	for key, c := range doc.Component {
		if c == nil {
			continue
		}
		steps := 0
		cur := c
		for cur.ParentID != nil {
			next, ok := doc.Component[*cur.ParentID]
			if !ok || next == nil {
				break // dangling parent reported elsewhere
			}
			cur = next
			steps++
			if steps > limit {
				errs = append(errs, fmt.Errorf("component[%s]: parentId chain is cyclic", key))
				break
			}
		}
	}
	return errs
}

func validateWorkflows(doc *Document) []error {
	var errs []error
	for key, w := range doc.Workflow {
		if w == nil {
			errs = append(errs, fmt.Errorf("workflow[%s]: null entry", key))
			continue
		}
		if w.ID != key {
			errs = append(errs, fmt.Errorf("workflow[%s]: id %q does not match map key", key, w.ID))
		}
		wf := domain.Workflow{ID: w.ID, Nodes: w.Nodes, Edges: w.Edges}
		if err := wf.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
