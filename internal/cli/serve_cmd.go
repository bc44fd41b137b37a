package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/janver/pagecraft/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the autosave server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.UoW == nil {
				return fmt.Errorf("no database configured (set PAGECRAFT_DB or the config file)")
			}
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.UoW, app.logger())
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to config)")

	return cmd
}
