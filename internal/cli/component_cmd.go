package cli

import (
	"fmt"

	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newComponentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Manage components",
	}

	cmd.AddCommand(newComponentNewCmd(app))

	return cmd
}

func newComponentNewCmd(app *App) *cobra.Command {
	var pageRef, typ, parent string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Add a component to a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageRef == "" {
				return fmt.Errorf("--page is required")
			}
			pageID, err := resolvePageID(app, pageRef)
			if err != nil {
				return err
			}

			if typ == "" && app.interactive() {
				if err := componentTypeForm(app, &typ).Run(); err != nil {
					return err
				}
			}
			if typ == "" {
				return fmt.Errorf("--type is required")
			}
			def := app.Registry.Get(typ)
			if def == nil {
				return fmt.Errorf("unknown component type %q", typ)
			}

			// Without an explicit parent the component hangs off the page
			// root, when one exists.
			var parentID *string
			if parent != "" {
				if _, ok := app.Store.Component(parent); !ok {
					return fmt.Errorf("parent component %q not found", parent)
				}
				parentID = &parent
			} else if root, ok := app.Store.RootOf(pageID); ok {
				parentID = &root.ID
			}

			created, err := app.Store.CreateComponent(pageID, typ, parentID, def.DefaultProps)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s component %s\n",
				formatter.Bold(created.Type), formatter.Dim(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&pageRef, "page", "", "Page id or title")
	cmd.Flags().StringVar(&typ, "type", "", "Component type")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent component id")

	return cmd
}
