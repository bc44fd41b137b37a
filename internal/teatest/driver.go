// Package teatest drives bubbletea models synchronously in tests. Instead
// of starting a tea.Program, the Driver feeds messages straight into
// Update and keeps executing the returned commands until the model settles,
// so the editor UI can be asserted on without goroutines or timing.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainDepth bounds command chasing so a model that keeps emitting
// commands cannot hang a test.
const maxDrainDepth = 100

// blinkCutoff separates real commands from cursor blink timers. The
// textinput fields in the editor schedule blinks that sleep ~530ms; any
// command still running after this cutoff is treated as one and skipped.
const blinkCutoff = 10 * time.Millisecond

// Driver owns one model under test.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set when a tea.QuitMsg comes out of a command. The real
	// runtime swallows that message before the model sees it, so the
	// driver records it instead.
	Quitting bool
}

// Option configures the Driver during construction.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else, the way the
// runtime does on startup.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.T.Helper()
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// New wraps a model. Follow with DrainInit to run its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs the model's Init command and everything it produces.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send feeds one message through Update and chases the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

// SendKey sends a raw tea.KeyMsg.
func (d *Driver) SendKey(msg tea.KeyMsg) {
	d.T.Helper()
	d.Send(msg)
}

// PressKey sends a single character key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.SendKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type sends a string one key at a time, as typed into an input field.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) PressEnter()     { d.SendKey(tea.KeyMsg{Type: tea.KeyEnter}) }
func (d *Driver) PressEsc()       { d.SendKey(tea.KeyMsg{Type: tea.KeyEsc}) }
func (d *Driver) PressUp()        { d.SendKey(tea.KeyMsg{Type: tea.KeyUp}) }
func (d *Driver) PressDown()      { d.SendKey(tea.KeyMsg{Type: tea.KeyDown}) }
func (d *Driver) PressBackspace() { d.SendKey(tea.KeyMsg{Type: tea.KeyBackspace}) }

// Clear backspaces over n characters, emptying a prefilled input.
func (d *Driver) Clear(n int) {
	d.T.Helper()
	for i := 0; i < n; i++ {
		d.PressBackspace()
	}
}

// View renders the model as it currently stands.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDrainDepth {
		d.T.Logf("teatest: gave up draining commands after %d levels", depth)
		return
	}

	msg := runOrSkip(cmd)
	if msg == nil || looksLikeBlink(msg) {
		return
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub != nil {
				d.drain(sub, depth+1)
			}
		}
		return
	}

	if _, quit := msg.(tea.QuitMsg); quit {
		d.Quitting = true
		updated, _ := d.Model.Update(msg)
		d.Model = updated
		return
	}

	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drain(next, depth+1)
}

// runOrSkip executes a command, abandoning it past the blink cutoff.
// Ordinary commands (store reads, message constructors) return in
// microseconds; only blink timers sleep longer.
func runOrSkip(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(blinkCutoff):
		return nil
	}
}

// looksLikeBlink recognizes the unexported blink message types of
// bubbles/cursor by name, since they cannot be referenced directly.
func looksLikeBlink(msg tea.Msg) bool {
	return strings.Contains(fmt.Sprintf("%T", msg), "link")
}
