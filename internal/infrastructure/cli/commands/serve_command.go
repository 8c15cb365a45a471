package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/internal/app"
	"github.com/doeshing/nhscreen/internal/infrastructure/api"
)

// NewServeCommand creates the serve command exposing the HTTP API
func NewServeCommand(container *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the screening API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ScreeningService == nil {
				return fmt.Errorf(ErrScreeningServiceUnavailable)
			}
			cfg := container.Config
			if addr == "" {
				addr = cfg.GetServerAddr()
			}

			server := api.NewServer(container.ScreeningService, container.ScreeningService.Topics, api.Options{
				MaxBytes:       cfg.GetMaxInputBytes(),
				ReadTimeout:    cfg.GetReadTimeout(),
				RequestTimeout: cfg.GetRequestTimeout(),
				Logger:         container.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", addr)
			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
