// Package cmd - serve command
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paint-quote/internal/app"
	"paint-quote/internal/config"
	"paint-quote/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := config.Get()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		srv, err := app.NewServer(ctx, cfg, Version, logging.Logger)
		if err != nil {
			return err
		}
		defer srv.Close()

		err = srv.ListenAndServe(ctx, cfg.Server.Addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
