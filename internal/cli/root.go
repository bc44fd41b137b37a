package cli

import (
	"log/slog"

	"github.com/janver/pagecraft/internal/autosave"
	"github.com/janver/pagecraft/internal/config"
	"github.com/janver/pagecraft/internal/db"
	"github.com/janver/pagecraft/internal/persist"
	"github.com/janver/pagecraft/internal/registry"
	"github.com/janver/pagecraft/internal/render"
	"github.com/janver/pagecraft/internal/store"
	"github.com/spf13/cobra"
)

// App holds the wired collaborators used by CLI commands.
type App struct {
	Store    *store.Store
	Registry *registry.Registry
	Plugins  *registry.PluginManager
	Editor   *render.Editor
	Preview  *render.Preview
	Bridge   *persist.Bridge
	Config   *config.Config
	Saver    *autosave.Saver // nil when autosave is disabled
	UoW      db.UnitOfWork   // nil unless a database was opened (serve)
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal; huh forms and the
	// editor TUI are only offered when it returns true.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// NewRootCmd creates the top-level "pagecraft" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pagecraft",
		Short: "Terminal low-code page builder",
	}

	root.AddCommand(
		newEditCmd(app),
		newPreviewCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newPageCmd(app),
		newWorkflowCmd(app),
		newComponentCmd(app),
		newComponentsCmd(app),
		newServeCmd(app),
	)

	return root
}
