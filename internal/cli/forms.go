package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/janver/pagecraft/internal/domain"
)

func validateNonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

// pageForm collects a page title and layout.
func pageForm(title, layout *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Page Title").
				Placeholder("Home").
				Value(title).
				Validate(validateNonEmpty),
			huh.NewSelect[string]().
				Title("Layout").
				Options(
					huh.NewOption("Column", string(domain.LayoutColumn)),
					huh.NewOption("Row", string(domain.LayoutRow)),
					huh.NewOption("Grid", string(domain.LayoutGrid)),
				).
				Value(layout),
		),
	).WithTheme(pagecraftHuhTheme()).WithShowHelp(false)
}

// workflowForm collects a workflow title and its parent page.
func workflowForm(app *App, title, pageID *string) *huh.Form {
	pages := app.Store.Pages()
	options := make([]huh.Option[string], 0, len(pages))
	for _, p := range pages {
		options = append(options, huh.NewOption(p.Title, p.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workflow Title").
				Placeholder("On submit").
				Value(title).
				Validate(validateNonEmpty),
			huh.NewSelect[string]().
				Title("Page").
				Options(options...).
				Value(pageID),
		),
	).WithTheme(pagecraftHuhTheme()).WithShowHelp(false)
}

// componentTypeForm picks a registered component type.
func componentTypeForm(app *App, typ *string) *huh.Form {
	types := app.Registry.Types()
	options := make([]huh.Option[string], 0, len(types))
	for _, t := range types {
		options = append(options, huh.NewOption(t, t))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Component Type").
				Options(options...).
				Value(typ),
		),
	).WithTheme(pagecraftHuhTheme()).WithShowHelp(false)
}

// confirmForm asks a yes/no question.
func confirmForm(prompt string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Value(confirmed),
		),
	).WithTheme(pagecraftHuhTheme()).WithShowHelp(false)
}
