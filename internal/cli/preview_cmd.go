package cli

import (
	"fmt"

	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <page>",
		Short: "Render a page read-only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolvePageID(app, args[0])
			if err != nil {
				return err
			}
			p, _ := app.Store.Page(id)
			out := app.Preview.RenderPage(id)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox(p.Title, out))
			return nil
		},
	}
}

func newComponentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List registered component types",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, typ := range app.Registry.Types() {
				def := app.Registry.Get(typ)
				sections := 0
				fields := 0
				for _, s := range def.Sections {
					sections++
					fields += len(s.Fields)
				}
				rows = append(rows, []string{
					typ,
					fmt.Sprintf("%d", len(def.DefaultProps)),
					fmt.Sprintf("%d sections / %d fields", sections, fields),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"TYPE", "DEFAULTS", "PROPERTIES"},
				rows,
			))
			if plugins := app.Plugins.Plugins(); len(plugins) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("Plugins: %v", plugins)))
			}
			return nil
		},
	}
}
