package cli

import (
	"fmt"
	"sort"

	"github.com/janver/pagecraft/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newWorkflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage page workflows",
	}

	cmd.AddCommand(
		newWorkflowNewCmd(app),
		newWorkflowListCmd(app),
		newWorkflowDeleteCmd(app),
	)

	return cmd
}

func newWorkflowNewCmd(app *App) *cobra.Command {
	var title, page string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a workflow seeded with a start and a code node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && app.interactive() {
				if err := workflowForm(app, &title, &page).Run(); err != nil {
					return err
				}
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			pageID, err := resolvePageID(app, page)
			if err != nil {
				return err
			}

			w, err := app.Store.NewWorkflow(pageID, title)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created workflow %s %s with %d nodes\n",
				formatter.Bold(w.Title), formatter.Dim(w.ID), len(w.Nodes))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Workflow title")
	cmd.Flags().StringVar(&page, "page", "", "Parent page (id or title)")

	return cmd
}

func newWorkflowListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows := app.Store.Workflows()
			if len(workflows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No workflows yet."))
				return nil
			}

			ids := make([]string, 0, len(workflows))
			for id := range workflows {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				w := workflows[id]
				page := w.ParentPageID
				if p, ok := app.Store.Page(w.ParentPageID); ok {
					page = p.Title
				}
				rows = append(rows, []string{
					w.ID,
					w.Title,
					page,
					fmt.Sprintf("%d nodes / %d edges", len(w.Nodes), len(w.Edges)),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "TITLE", "PAGE", "GRAPH"},
				rows,
			))
			return nil
		},
	}
}

func newWorkflowDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workflow>",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkflowID(app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteWorkflow(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workflow %s\n", formatter.Dim(id))
			return nil
		},
	}
}
