package cli

import (
	"fmt"
	"strings"
)

// resolvePageID maps user input to a page id: exact id first, then
// case-insensitive title, then id prefix.
func resolvePageID(app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("page is required")
	}

	pages := app.Store.Pages()

	for _, p := range pages {
		if p.ID == input {
			return p.ID, nil
		}
	}
	for _, p := range pages {
		if strings.EqualFold(p.Title, input) {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range pages {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("page not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("page %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveWorkflowID maps user input to a workflow id the same way.
func resolveWorkflowID(app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("workflow is required")
	}

	workflows := app.Store.Workflows()

	if _, ok := workflows[input]; ok {
		return input, nil
	}
	for id, w := range workflows {
		if strings.EqualFold(w.Title, input) {
			return id, nil
		}
	}

	var matches []string
	for id := range workflows {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("workflow not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("workflow %q is ambiguous (%d matches)", input, len(matches))
	}
}
