// Package app wires configuration into the storage, events and API
// components shared by the CLI and the server binary.
package app

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"paint-quote/adapters/events"
	"paint-quote/adapters/storage"
	"paint-quote/api"
	"paint-quote/core/engine"
	"paint-quote/internal/config"
	"paint-quote/internal/errors"
)

// OpenStore opens and migrates the configured store
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	backend := storage.Backend(cfg.Storage.Backend)
	if backend == "" {
		backend = storage.BackendSQLite
	}
	if backend == storage.BackendSQLite && cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return nil, errors.Config("create database directory", err)
		}
	}
	return storage.StoreFactory(ctx, backend,
		map[string]string{"path": cfg.Storage.Path},
		storage.WithLogger(logger.Named("storage")))
}

// NewEngine builds an engine using the configured pricing defaults
func NewEngine(cfg *config.Config, logger *zap.Logger, opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{
		engine.WithLogger(logger.Named("engine")),
		engine.WithPolicy(cfg.Pricing.Policy()),
	}, opts...)
	return engine.New(opts...)
}

// Server is a configured API server and the resources it holds
type Server struct {
	*api.Server

	store     storage.Store
	publisher events.Publisher
}

// NewServer builds the API server from configuration
func NewServer(ctx context.Context, cfg *config.Config, version string, logger *zap.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var apiStore api.Store = store
	if cfg.Cache.Enabled && cfg.Cache.TTL() > 0 {
		apiStore = storage.NewCachedStore(store, cfg.Cache.TTL())
	}
	publisher := events.New(cfg.Events.Brokers, cfg.Events.Topic, logger.Named("events"))

	srv := api.NewServer(api.Options{
		Version:        version,
		Engine:         NewEngine(cfg, logger),
		Store:          apiStore,
		Publisher:      publisher,
		Logger:         logger.Named("api"),
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: cfg.Server.RequestTimeout(),
	})
	return &Server{Server: srv, store: store, publisher: publisher}, nil
}

// Close releases the store and publisher
func (s *Server) Close() error {
	pubErr := s.publisher.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return pubErr
}
