// Package main is the entry point for the paint-quote API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"paint-quote/internal/app"
	"paint-quote/internal/config"
	"paint-quote/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Config file path")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(ctx, cfg, version, logging.Logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logging.Info("paint-quote server starting", zap.String("addr", cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
