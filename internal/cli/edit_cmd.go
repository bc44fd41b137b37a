package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/janver/pagecraft/internal/store"
	"github.com/spf13/cobra"
)

func newEditCmd(app *App) *cobra.Command {
	var page string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive page editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("edit requires an interactive terminal")
			}

			pageID := ""
			if page != "" {
				var err error
				pageID, err = resolvePageID(app, page)
				if err != nil {
					return err
				}
			} else {
				pages := app.Store.Pages()
				if len(pages) == 0 {
					return fmt.Errorf("no pages yet; create one with 'pagecraft page new'")
				}
				pageID = pages[0].ID
			}

			model := newEditorModel(app, pageID)
			program := tea.NewProgram(model, tea.WithAltScreen())

			// Keep the renderer and the TUI in sync with mutations that
			// originate outside the model, e.g. the binding watcher.
			unsubscribe := app.Store.Subscribe(func(ch store.Change) {
				switch {
				case ch.Kind != store.KindComponent:
					// nothing cached under page/workflow ids
				case ch.Op == store.OpDelete || ch.Op == store.OpRename:
					app.Editor.Evict(ch.ID)
				case ch.Op == store.OpReplace:
					app.Editor.InvalidateAll()
				default:
					app.Editor.Invalidate(ch.ID)
				}
				program.Send(storeChangedMsg{change: ch})
			})
			defer unsubscribe()

			_, err := program.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&page, "page", "", "Page to edit (id or title, defaults to the first page)")

	return cmd
}
