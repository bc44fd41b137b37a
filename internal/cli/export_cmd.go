package cli

import (
	"fmt"

	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the full project document to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Bridge.DownloadToFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", formatter.Bold(args[0]))
			return nil
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all state from a JSON document",
		Long: "Validates the document first; on any validation error the " +
			"current state is left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Bridge.UploadFromFile(args[0]); err != nil {
				return err
			}
			snap := app.Store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d pages, %d components, %d workflows\n",
				formatter.Bold(args[0]), len(snap.Pages), len(snap.Components), len(snap.Workflows))
			return nil
		},
	}
}
