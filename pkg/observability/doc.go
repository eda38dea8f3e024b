// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, and distributed tracing integration.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("server started")
//
// Context-aware logging, using the copy-on-write WithField/WithFields/WithError builders:
//
//	logger.WithField("request_id", reqID).WithError(err).Error("request failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/subjects", "200").Inc()
//	metrics.HTTPRequestDuration.WithLabelValues("GET", "/subjects").Observe(0.123)
//
// Registry metrics:
//
//	metrics.SchemasRegisteredTotal.Set(float64(schemaCount))
//	metrics.SubjectsActiveTotal.Set(float64(subjectCount))
//
// # Health Checks
//
// Configure health checker over a storage.SnapshotStore (or anything
// exposing HealthCheck(ctx) error):
//
//	checker := observability.NewHealthChecker(store, version)
//	status := checker.Check(ctx)
//	fmt.Printf("status: %s\n", status.Status)
//
// # OpenTelemetry
//
// Initialize tracing and metrics export:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:        true,
//		ServiceName:    "schema-registry",
//		ServiceVersion: "1.0.0",
//		Endpoint:       "otel-collector:4317",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/middleware: Request authentication middleware
//   - pkg/httputil: Request logging and panic-recovery middleware
package observability
