// Package persist translates the store's entity maps to and from the
// persisted JSON document. It is a stateless transform: the store owns the
// live state, this package owns the wire shape and its validation.
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/store"
)

// ComponentDoc is the wire form of a component.
type ComponentDoc struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	PageID   string         `json:"pageId"`
	ParentID *string        `json:"parentId"`
	Props    map[string]any `json:"props,omitempty"`
	Order    int            `json:"order"`
	Value    any            `json:"value,omitempty"`
	Bindings []string       `json:"bindings,omitempty"`
}

// PageDoc is the wire form of a page.
type PageDoc struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Layout  string `json:"layout,omitempty"`
	Hidden  bool   `json:"hidden,omitempty"`
	Content string `json:"content,omitempty"`
}

// WorkflowDoc is the wire form of a workflow.
type WorkflowDoc struct {
	ID           string                `json:"id"`
	Title        string                `json:"title,omitempty"`
	ParentPageID string                `json:"parentPageId"`
	Nodes        []domain.WorkflowNode `json:"nodes"`
	Edges        []domain.WorkflowEdge `json:"edges"`
}

// Document is the top-level persisted form. Legacy exports nested the same
// maps under pageAppState or appState; Decode accepts those too.
type Document struct {
	Component    map[string]*ComponentDoc `json:"component"`
	Page         map[string]*PageDoc      `json:"page"`
	Workflow     map[string]*WorkflowDoc  `json:"workflow"`
	LocalStorage map[string]any           `json:"localStorage,omitempty"`

	PageAppState json.RawMessage `json:"pageAppState,omitempty"`
	AppState     json.RawMessage `json:"appState,omitempty"`
}

// FromSnapshot converts a store snapshot into its wire form.
func FromSnapshot(snap store.Snapshot) *Document {
	doc := &Document{
		Component:    make(map[string]*ComponentDoc, len(snap.Components)),
		Page:         make(map[string]*PageDoc, len(snap.Pages)),
		Workflow:     make(map[string]*WorkflowDoc, len(snap.Workflows)),
		LocalStorage: snap.LocalStorage,
	}
	for id, c := range snap.Components {
		bindings := make([]string, 0, len(c.Bindings))
		for _, b := range c.Bindings {
			bindings = append(bindings, b.String())
		}
		if len(bindings) == 0 {
			bindings = nil
		}
		doc.Component[id] = &ComponentDoc{
			ID:       c.ID,
			Type:     c.Type,
			PageID:   c.PageID,
			ParentID: c.ParentID,
			Props:    c.Props,
			Order:    c.Order,
			Value:    c.Value,
			Bindings: bindings,
		}
	}
	for id, p := range snap.Pages {
		doc.Page[id] = &PageDoc{
			ID:      p.ID,
			Title:   p.Title,
			Layout:  string(p.Layout),
			Hidden:  p.Hidden,
			Content: p.Content,
		}
	}
	for id, w := range snap.Workflows {
		doc.Workflow[id] = &WorkflowDoc{
			ID:           w.ID,
			Title:        w.Title,
			ParentPageID: w.ParentPageID,
			Nodes:        w.Nodes,
			Edges:        w.Edges,
		}
	}
	return doc
}

// ToSnapshot converts a validated document into a store snapshot.
func (d *Document) ToSnapshot() store.Snapshot {
	now := time.Now().UTC()
	snap := store.Snapshot{
		Components:   make(map[string]*domain.Component, len(d.Component)),
		Pages:        make(map[string]*domain.Page, len(d.Page)),
		Workflows:    make(map[string]*domain.Workflow, len(d.Workflow)),
		LocalStorage: d.LocalStorage,
	}
	if snap.LocalStorage == nil {
		snap.LocalStorage = make(map[string]any)
	}
	for id, c := range d.Component {
		var bindings []domain.BindingRef
		for _, expr := range c.Bindings {
			// Validation already checked these parse.
			if ref, err := domain.ParseBindingRef(expr); err == nil {
				bindings = append(bindings, ref)
			}
		}
		snap.Components[id] = &domain.Component{
			ID:        c.ID,
			Type:      c.Type,
			PageID:    c.PageID,
			ParentID:  c.ParentID,
			Props:     c.Props,
			Order:     c.Order,
			Value:     c.Value,
			Bindings:  bindings,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	for id, p := range d.Page {
		snap.Pages[id] = &domain.Page{
			ID:        p.ID,
			Title:     p.Title,
			Layout:    domain.PageLayout(p.Layout),
			Hidden:    p.Hidden,
			Content:   p.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	for id, w := range d.Workflow {
		snap.Workflows[id] = &domain.Workflow{
			ID:           w.ID,
			Title:        w.Title,
			ParentPageID: w.ParentPageID,
			Nodes:        w.Nodes,
			Edges:        w.Edges,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return snap
}

// Decode parses a raw document, accepting the legacy pageAppState/appState
// nesting when the current top-level maps are absent.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if doc.Component == nil && doc.Page == nil && doc.Workflow == nil {
		for _, raw := range [][]byte{doc.PageAppState, doc.AppState} {
			if len(raw) == 0 {
				continue
			}
			var nested Document
			if err := json.Unmarshal(raw, &nested); err != nil {
				return nil, fmt.Errorf("parsing legacy app state: %w", err)
			}
			nested.LocalStorage = mergeLocalStorage(nested.LocalStorage, doc.LocalStorage)
			return &nested, nil
		}
	}
	return &doc, nil
}

// Encode renders the document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

func mergeLocalStorage(inner, outer map[string]any) map[string]any {
	if inner == nil {
		return outer
	}
	for k, v := range outer {
		if _, ok := inner[k]; !ok {
			inner[k] = v
		}
	}
	return inner
}
