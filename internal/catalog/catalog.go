// Package catalog holds the built-in component definitions. It is the
// static half of the registry's content; plugins supply the rest.
package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/registry"
)

// Gruvbox-inspired palette, matching the editor chrome.
var (
	colorAccent = lipgloss.Color("#fe8019")
	colorBlue   = lipgloss.Color("#83a598")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
)

var (
	styleHeading = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleText    = lipgloss.NewStyle().Foreground(colorFg)
	styleButton  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1d2021")).
			Background(colorBlue).
			Padding(0, 2).
			Bold(true)
	styleInput = lipgloss.NewStyle().
			Foreground(colorFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	styleImage = lipgloss.NewStyle().
			Foreground(colorDim).
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	styleBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1d2021")).
			Background(colorYellow).
			Padding(0, 1)
	styleContainer = lipgloss.NewStyle().Padding(0, 1)
)

// Register installs every built-in definition into the registry.
func Register(reg *registry.Registry) {
	for _, def := range Definitions() {
		reg.Register(def)
	}
}

// Definitions returns the built-in component definitions.
func Definitions() []*registry.Definition {
	return []*registry.Definition{
		containerDef(),
		headingDef(),
		textDef(),
		buttonDef(),
		inputDef(),
		imageDef(),
		dividerDef(),
		badgeDef(),
	}
}

// propString reads a string prop, falling back to the default.
func propString(c *domain.Component, key, fallback string) string {
	if v, ok := c.Props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func containerDef() *registry.Definition {
	return &registry.Definition{
		Type:         "container",
		DefaultProps: map[string]any{"direction": "column", "gap": float64(0)},
		Sections: []registry.PropertySection{
			{Title: "Layout", Fields: []registry.PropertyField{
				{Name: "direction", Label: "Direction", Kind: "string"},
				{Name: "gap", Label: "Gap", Kind: "int"},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			if len(children) == 0 {
				return styleContainer.Render(lipgloss.NewStyle().Faint(true).Render("·"))
			}
			if propString(c, "direction", "column") == "row" {
				return styleContainer.Render(lipgloss.JoinHorizontal(lipgloss.Top, children...))
			}
			return styleContainer.Render(lipgloss.JoinVertical(lipgloss.Left, children...))
		},
	}
}

func headingDef() *registry.Definition {
	return &registry.Definition{
		Type:         "heading",
		DefaultProps: map[string]any{"content": "Heading"},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "content", Label: "Text", Kind: "string", Bindable: true},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			text := propString(c, "content", "Heading")
			underline := strings.Repeat("─", lipgloss.Width(text))
			return styleHeading.Render(strings.ToUpper(text)) + "\n" +
				lipgloss.NewStyle().Foreground(colorDim).Render(underline)
		},
	}
}

func textDef() *registry.Definition {
	return &registry.Definition{
		Type:         "text",
		DefaultProps: map[string]any{"content": ""},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "content", Label: "Text", Kind: "string", Bindable: true},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			if s, ok := c.Value.(string); ok && s != "" {
				return styleText.Render(s)
			}
			return styleText.Render(propString(c, "content", ""))
		},
	}
}

func buttonDef() *registry.Definition {
	return &registry.Definition{
		Type:         "button",
		DefaultProps: map[string]any{"label": "Button", "workflowId": ""},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "label", Label: "Label", Kind: "string", Bindable: true},
			}},
			{Title: "Actions", Fields: []registry.PropertyField{
				{Name: "workflowId", Label: "On click workflow", Kind: "string"},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			return styleButton.Render(propString(c, "label", "Button"))
		},
	}
}

func inputDef() *registry.Definition {
	return &registry.Definition{
		Type:         "input",
		DefaultProps: map[string]any{"placeholder": "", "label": ""},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "label", Label: "Label", Kind: "string"},
				{Name: "placeholder", Label: "Placeholder", Kind: "string"},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			var body string
			if s, ok := c.Value.(string); ok && s != "" {
				body = styleText.Render(s)
			} else {
				body = lipgloss.NewStyle().Faint(true).Render(propString(c, "placeholder", " "))
			}
			box := styleInput.Render(body)
			if label := propString(c, "label", ""); label != "" {
				return lipgloss.JoinVertical(lipgloss.Left, styleText.Render(label), box)
			}
			return box
		},
	}
}

func imageDef() *registry.Definition {
	return &registry.Definition{
		Type:         "image",
		DefaultProps: map[string]any{"src": "", "alt": "image"},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "src", Label: "Source", Kind: "string", Bindable: true},
				{Name: "alt", Label: "Alt text", Kind: "string"},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			return styleImage.Render(fmt.Sprintf("🖼 %s", propString(c, "alt", "image")))
		},
	}
}

func dividerDef() *registry.Definition {
	return &registry.Definition{
		Type:         "divider",
		DefaultProps: map[string]any{"width": float64(24)},
		Render: func(c *domain.Component, children []string) string {
			width := 24
			if f, ok := c.Props["width"].(float64); ok && f > 0 {
				width = int(f)
			}
			return lipgloss.NewStyle().Foreground(colorDim).Render(strings.Repeat("─", width))
		},
	}
}

func badgeDef() *registry.Definition {
	return &registry.Definition{
		Type:         "badge",
		DefaultProps: map[string]any{"content": "new", "tone": "warn"},
		Sections: []registry.PropertySection{
			{Title: "Content", Fields: []registry.PropertyField{
				{Name: "content", Label: "Text", Kind: "string", Bindable: true},
				{Name: "tone", Label: "Tone", Kind: "string"},
			}},
		},
		Render: func(c *domain.Component, children []string) string {
			style := styleBadge
			if propString(c, "tone", "warn") == "ok" {
				style = style.Background(colorGreen)
			}
			return style.Render(propString(c, "content", "new"))
		},
	}
}
