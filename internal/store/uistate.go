package store

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a transient message for the editor's status area.
type Notification struct {
	ID      string
	Level   string // "info", "warn", "error"
	Message string
	At      time.Time
}

// UIState holds ephemeral editor state. It is persisted for the session
// only, never exported.
type UIState struct {
	ActiveTab     string
	SelectedID    string
	HoveredID     string
	PanelVisible  bool
	DarkMode      bool
	Notifications []Notification
}

// UIState returns a copy of the current UI state.
func (s *Store) UIState() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dup := s.ui
	dup.Notifications = make([]Notification, len(s.ui.Notifications))
	copy(dup.Notifications, s.ui.Notifications)
	return dup
}

func (s *Store) setUI(fn func(ui *UIState)) {
	s.mu.Lock()
	fn(&s.ui)
	s.mu.Unlock()
	s.notify(Change{Kind: KindUIState, Op: OpUpsert})
}

// SetActiveTab switches the editor's active tab.
func (s *Store) SetActiveTab(tab string) {
	s.setUI(func(ui *UIState) { ui.ActiveTab = tab })
}

// SelectComponent marks a component as selected. An empty id clears the
// selection.
func (s *Store) SelectComponent(id string) {
	s.setUI(func(ui *UIState) { ui.SelectedID = id })
}

// HoverComponent marks a component as hovered. An empty id clears it.
func (s *Store) HoverComponent(id string) {
	s.setUI(func(ui *UIState) { ui.HoveredID = id })
}

// SetPanelVisible toggles the property panel.
func (s *Store) SetPanelVisible(visible bool) {
	s.setUI(func(ui *UIState) { ui.PanelVisible = visible })
}

// SetDarkMode toggles the editor color theme.
func (s *Store) SetDarkMode(dark bool) {
	s.setUI(func(ui *UIState) { ui.DarkMode = dark })
}

// PushNotification appends a message to the notification list.
func (s *Store) PushNotification(level, message string) {
	s.setUI(func(ui *UIState) {
		ui.Notifications = append(ui.Notifications, Notification{
			ID:      uuid.New().String(),
			Level:   level,
			Message: message,
			At:      time.Now().UTC(),
		})
	})
}

// ClearNotifications empties the notification list.
func (s *Store) ClearNotifications() {
	s.setUI(func(ui *UIState) { ui.Notifications = nil })
}
