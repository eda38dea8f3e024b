// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	SCHEMAREG_HOST="0.0.0.0"
//	SCHEMAREG_PORT="8081"
//	SCHEMAREG_HEALTH_PORT="9090"
//	SCHEMAREG_READ_TIMEOUT="15s"
//	SCHEMAREG_WRITE_TIMEOUT="15s"
//
// Storage settings:
//
//	SCHEMAREG_STORAGE_TYPE="postgres"  # filesystem, postgres, s3
//	SCHEMAREG_FILESYSTEM_ROOT="/var/schema-registry/data"
//	SCHEMAREG_POSTGRES_URL="postgres://localhost/schema-registry"
//	SCHEMAREG_POSTGRES_MAX_CONNS="10"
//	SCHEMAREG_S3_BUCKET="schema-registry-snapshots"
//	SCHEMAREG_S3_REGION="us-east-1"
//
// Cache settings:
//
//	SCHEMAREG_CACHE_ENABLED="true"
//	SCHEMAREG_REDIS_URL="redis://localhost:6379"
//	SCHEMAREG_REDIS_TTL="1m"
//
// Registry settings:
//
//	SCHEMAREG_DEFAULT_COMPATIBILITY="BACKWARD"
//	SCHEMAREG_DEFAULT_MODE="READWRITE"
//	SCHEMAREG_SCHEMA_CACHE_SIZE="1000"
//
// Observability settings:
//
//	SCHEMAREG_LOG_LEVEL="info"  # debug, info, warn, error
//	SCHEMAREG_METRICS_ENABLED="true"
//	SCHEMAREG_OTEL_ENABLED="true"
//	SCHEMAREG_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//	fmt.Printf("Log level: %v\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
//   - pkg/registry: Uses registry configuration for subject defaults
package config
