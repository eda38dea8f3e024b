package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/schema-registry/pkg/api"
	"github.com/platinummonkey/schema-registry/pkg/config"
	"github.com/platinummonkey/schema-registry/pkg/observability"
	"github.com/platinummonkey/schema-registry/pkg/registry"
	"github.com/platinummonkey/schema-registry/pkg/storage"
	"github.com/platinummonkey/schema-registry/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting schema registry")
	logger.Infof("storage backend: %s", cfg.Storage.Type)

	ctx := context.Background()
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize OpenTelemetry, continuing without it")
	}

	store, err := newSnapshotStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage backend %q: %v", cfg.Storage.Type, err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	engine := registry.NewEngineFromSnapshot(snap)
	engine.SetLogger(logger)
	schemaCount, subjectCount := engine.Stats()
	logger.Infof("loaded snapshot: %d schemas, %d subjects", schemaCount, subjectCount)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	server := api.NewServer(engine, cfg.Registry.SchemaCacheSize, store, logger, metrics)

	var handler http.Handler = server
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "schema-registry-api",
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		)
		logger.Info("OpenTelemetry HTTP instrumentation enabled")
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// /healthz, /readyz, and /metrics are registered on server's own router;
	// the health server just exposes them on a separate port for probes that
	// shouldn't share the API's traffic.
	healthMux := http.NewServeMux()
	healthMux.Handle("/healthz", server)
	healthMux.Handle("/readyz", server)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", server)
	}
	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownManager := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)

	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		logger.Info("persisting final snapshot")
		return store.Save(ctx, engine.Snapshot())
	})

	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		logger.Info("shutting down health server")
		return healthServer.Shutdown(ctx)
	})

	if otelProviders != nil {
		shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
			logger.Info("shutting down OpenTelemetry")
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	go func() {
		logger.Infof("starting health/metrics server on port %s", cfg.Server.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.Infof("listening on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	logger.Info("server started, waiting for shutdown signal")
	if err := shutdownManager.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

// newSnapshotStore builds the configured SnapshotStore backend, optionally
// wrapped in a Redis read-through cache.
func newSnapshotStore(cfg storage.Config) (storage.SnapshotStore, error) {
	var store storage.SnapshotStore
	var err error

	switch cfg.Type {
	case "filesystem":
		store, err = storage.NewFileSystemStore(cfg.FilesystemRoot)
	case "postgres":
		store, err = postgres.NewStore(cfg)
	case "s3":
		store, err = postgres.NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled && cfg.RedisURL != "" {
		store, err = postgres.NewRedisCache(cfg, store)
		if err != nil {
			return nil, fmt.Errorf("initialize redis cache: %w", err)
		}
	}

	return store, nil
}
