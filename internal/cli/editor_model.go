package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/janver/pagecraft/internal/store"
)

type editorMode int

const (
	modeTree editorMode = iota
	modeInput
	modePick
)

type inputPurpose int

const (
	purposeValue inputPurpose = iota
	purposeRename
)

type treeRow struct {
	id     string
	typ    string
	level  int
	isLast bool
}

// storeChangedMsg is sent by the store subscription so the model refreshes
// rows after any mutation, including ones from bindings or plugins.
type storeChangedMsg struct{ change store.Change }

type editorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Value  key.Binding
	Rename key.Binding
	Add    key.Binding
	Delete key.Binding
	Retry  key.Binding
	Quit   key.Binding
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Value:  key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "edit value")),
		Rename: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "rename id")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Retry:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry render")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// editorModel is the bubbletea model for the interactive page editor: a
// component tree on the left, the rendered page on the right, and the
// selected component's properties below.
type editorModel struct {
	app    *App
	pageID string
	keys   editorKeyMap

	rows   []treeRow
	cursor int

	mode    editorMode
	purpose inputPurpose
	input   textinput.Model

	pickOptions []string
	pickCursor  int

	status string
	width  int
	height int
}

func newEditorModel(app *App, pageID string) editorModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = formatter.StyleHeader
	ti.CharLimit = 120

	m := editorModel{
		app:    app,
		pageID: pageID,
		keys:   newEditorKeyMap(),
		input:  ti,
	}
	m.refresh()
	m.syncSelection()
	return m
}

// refresh rebuilds the tree rows from the store, clamping the cursor.
func (m *editorModel) refresh() {
	m.rows = nil
	root, ok := m.app.Store.RootOf(m.pageID)
	if !ok {
		m.cursor = 0
		return
	}

	var walk func(id string, level int, isLast bool)
	walk = func(id string, level int, isLast bool) {
		c, ok := m.app.Store.Component(id)
		if !ok {
			return
		}
		m.rows = append(m.rows, treeRow{id: id, typ: c.Type, level: level, isLast: isLast})
		children := m.app.Store.ChildrenOf(id)
		for i, ch := range children {
			walk(ch.ID, level+1, i == len(children)-1)
		}
	}
	walk(root.ID, 0, true)

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *editorModel) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].id
}

func (m *editorModel) syncSelection() {
	id := m.selectedID()
	m.app.Store.SelectComponent(id)
	m.app.Editor.SetSelection(id, "")
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modePick:
			return m.updatePick(msg)
		default:
			return m.updateTree(msg)
		}
	}
	return m, nil
}

func (m editorModel) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.syncSelection()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.syncSelection()
		}

	case key.Matches(msg, m.keys.Value):
		id := m.selectedID()
		if id == "" {
			break
		}
		c, _ := m.app.Store.Component(id)
		m.mode = modeInput
		m.purpose = purposeValue
		m.input.SetValue(fmt.Sprintf("%v", c.Value))
		m.input.Focus()
		m.status = "Editing value of " + id

	case key.Matches(msg, m.keys.Rename):
		id := m.selectedID()
		if id == "" {
			break
		}
		m.mode = modeInput
		m.purpose = purposeRename
		m.input.SetValue(id)
		m.input.Focus()
		m.status = "Renaming " + id

	case key.Matches(msg, m.keys.Add):
		m.pickOptions = m.app.Registry.Types()
		if len(m.pickOptions) == 0 {
			m.status = "No component types registered"
			break
		}
		m.pickCursor = 0
		m.mode = modePick
		m.status = "Pick a component type"

	case key.Matches(msg, m.keys.Delete):
		id := m.selectedID()
		if id == "" {
			break
		}
		if err := m.app.Store.DeleteComponent(id); err != nil {
			m.status = err.Error()
			break
		}
		m.app.Editor.Evict(id)
		m.refresh()
		m.syncSelection()
		m.status = "Deleted " + id

	case key.Matches(msg, m.keys.Retry):
		if id := m.selectedID(); id != "" {
			m.app.Editor.Retry(id)
			m.status = "Retrying " + id
		}
	}
	return m, nil
}

func (m editorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeTree
		m.input.Blur()
		m.status = ""
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		id := m.selectedID()
		m.mode = modeTree
		m.input.Blur()

		switch m.purpose {
		case purposeValue:
			if err := m.app.Store.SetComponentValue(id, value); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.app.Editor.Invalidate(id)
			m.status = "Updated value of " + id
		case purposeRename:
			if value == id {
				m.status = ""
				return m, nil
			}
			if err := m.app.Store.UpdateComponentID(id, value); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.app.Editor.Evict(id)
			m.refresh()
			m.syncSelection()
			m.status = "Renamed to " + value
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeTree
		m.status = ""
		return m, nil

	case tea.KeyUp:
		if m.pickCursor > 0 {
			m.pickCursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.pickCursor < len(m.pickOptions)-1 {
			m.pickCursor++
		}
		return m, nil

	case tea.KeyEnter:
		typ := m.pickOptions[m.pickCursor]
		m.mode = modeTree

		var parentID *string
		if id := m.selectedID(); id != "" {
			parentID = &id
		}
		def := m.app.Registry.Get(typ)
		var props map[string]any
		if def != nil {
			props = def.DefaultProps
		}
		c, err := m.app.Store.CreateComponent(m.pageID, typ, parentID, props)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.app.Editor.Invalidate(c.ID)
		m.refresh()
		m.status = "Added " + c.ID
		return m, nil
	}
	return m, nil
}

// ── view ─────────────────────────────────────────────────────────────────────

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(formatter.ColorDim).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(formatter.ColorYellow)
)

func (m editorModel) View() string {
	tree := m.viewTree()
	page := m.app.Editor.RenderPage(m.pageID)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(tree),
		paneStyle.Render(page),
	)

	sections := []string{
		formatter.Header("pagecraft"),
		panes,
		m.viewProperties(),
	}

	switch m.mode {
	case modeInput:
		sections = append(sections, m.input.View())
	case modePick:
		sections = append(sections, m.viewPicker())
	}

	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, formatter.Dim(
		"↑/↓ move · enter value · n rename · a add · d delete · R retry · q quit"))

	return strings.Join(sections, "\n")
}

func (m editorModel) viewTree() string {
	items := make([]formatter.TreeItem, len(m.rows))
	for i, row := range m.rows {
		items[i] = formatter.TreeItem{
			Title:    row.id,
			Type:     row.typ,
			Level:    row.level,
			IsLast:   row.isLast,
			Selected: i == m.cursor,
			Faulted:  m.app.Editor.Faulted(row.id),
		}
	}
	return formatter.RenderTree(items)
}

func (m editorModel) viewProperties() string {
	id := m.selectedID()
	if id == "" {
		return formatter.Dim("No component selected. Press 'a' to add a root component.")
	}
	c, ok := m.app.Store.Component(id)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(formatter.Bold(c.ID) + " " + formatter.Dim("("+c.Type+")"))
	if c.Value != nil && c.Value != "" {
		b.WriteString(fmt.Sprintf("\n  value: %v", c.Value))
	}

	def := m.app.Registry.Get(c.Type)
	if def == nil {
		return b.String()
	}
	for _, section := range def.Sections {
		b.WriteString("\n" + formatter.StyleBlue.Render(section.Title))
		for _, field := range section.Fields {
			val, set := c.Props[field.Name]
			line := fmt.Sprintf("\n  %s: ", field.Label)
			if set {
				line += fmt.Sprintf("%v", val)
			} else {
				line += formatter.Dim("unset")
			}
			if field.Bindable {
				line += " " + formatter.Dim("⚡")
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

func (m editorModel) viewPicker() string {
	var b strings.Builder
	for i, opt := range m.pickOptions {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == m.pickCursor {
			b.WriteString(formatter.StyleHeader.Render("▸ " + opt))
		} else {
			b.WriteString("  " + opt)
		}
	}
	return b.String()
}
