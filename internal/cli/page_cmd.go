package cli

import (
	"fmt"

	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/spf13/cobra"
)

func newPageCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages",
	}

	cmd.AddCommand(
		newPageNewCmd(app),
		newPageListCmd(app),
		newPageDeleteCmd(app),
	)

	return cmd
}

func newPageNewCmd(app *App) *cobra.Command {
	var title, layout string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && app.interactive() {
				layout = string(domain.LayoutColumn)
				if err := pageForm(&title, &layout).Run(); err != nil {
					return err
				}
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			p := &domain.Page{Title: title, Layout: domain.PageLayout(layout)}
			created, err := app.Store.CreatePage(p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created page %s %s\n",
				formatter.Bold(created.Title), formatter.Dim(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().StringVar(&layout, "layout", "column", "Layout (column|row|grid)")

	return cmd
}

func newPageListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages := app.Store.Pages()
			if len(pages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No pages yet. Create one with 'pagecraft page new'."))
				return nil
			}

			rows := make([][]string, 0, len(pages))
			for _, p := range pages {
				components := len(app.Store.ComponentsByPage(p.ID))
				hidden := ""
				if p.Hidden {
					hidden = formatter.Dim("hidden")
				}
				rows = append(rows, []string{
					p.ID,
					p.Title,
					formatter.LayoutBadge(p.Layout),
					fmt.Sprintf("%d", components),
					hidden,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "TITLE", "LAYOUT", "COMPONENTS", ""},
				rows,
			))
			return nil
		},
	}
}

func newPageDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <page>",
		Short: "Delete a page and its components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolvePageID(app, args[0])
			if err != nil {
				return err
			}

			if !force && app.interactive() {
				confirmed := false
				p, _ := app.Store.Page(id)
				prompt := fmt.Sprintf("Delete page %q and all its components?", p.Title)
				if err := confirmForm(prompt, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			if err := app.Store.DeletePage(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted page %s\n", formatter.Dim(id))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation")

	return cmd
}
