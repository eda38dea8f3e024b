package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/schema-registry/pkg/observability"
	"github.com/platinummonkey/schema-registry/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Registry configuration
	Registry RegistryConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// RegistryConfig holds settings specific to the schema registry domain: the
// defaults new subjects fall back to, and the size of the GET-by-id read
// cache.
type RegistryConfig struct {
	DefaultCompatibility string
	DefaultMode          string
	SchemaCacheSize      int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Registry:      loadRegistryConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SCHEMAREG_HOST", "0.0.0.0"),
		Port:            getEnv("SCHEMAREG_PORT", "8081"),
		ReadTimeout:     getEnvDuration("SCHEMAREG_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SCHEMAREG_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SCHEMAREG_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SCHEMAREG_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("SCHEMAREG_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads snapshot-store configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("SCHEMAREG_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}

	// Filesystem backend
	if fsRoot := getEnv("SCHEMAREG_FILESYSTEM_ROOT", ""); fsRoot != "" {
		cfg.FilesystemRoot = fsRoot
	}

	// Postgres backend
	if pgURL := getEnv("SCHEMAREG_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("SCHEMAREG_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if timeout := getEnvDuration("SCHEMAREG_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// S3 backend
	if s3Endpoint := getEnv("SCHEMAREG_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("SCHEMAREG_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("SCHEMAREG_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3Key := getEnv("SCHEMAREG_S3_KEY", ""); s3Key != "" {
		cfg.S3Key = s3Key
	}
	if s3AccessKey := getEnv("SCHEMAREG_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("SCHEMAREG_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3UsePathStyle := getEnv("SCHEMAREG_S3_USE_PATH_STYLE", ""); s3UsePathStyle != "" {
		cfg.S3UsePathStyle = strings.ToLower(s3UsePathStyle) == "true"
	}

	// Redis read-through cache in front of the chosen backend
	if redisURL := getEnv("SCHEMAREG_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("SCHEMAREG_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("SCHEMAREG_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisTTL := getEnvDuration("SCHEMAREG_REDIS_TTL", 0); redisTTL > 0 {
		cfg.RedisTTL = redisTTL
	}
	if cacheEnabled := getEnv("SCHEMAREG_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}

	return cfg
}

// loadRegistryConfig loads registry-domain defaults from environment
func loadRegistryConfig() RegistryConfig {
	return RegistryConfig{
		DefaultCompatibility: strings.ToUpper(getEnv("SCHEMAREG_DEFAULT_COMPATIBILITY", "BACKWARD")),
		DefaultMode:          strings.ToUpper(getEnv("SCHEMAREG_DEFAULT_MODE", "READWRITE")),
		SchemaCacheSize:      getEnvInt("SCHEMAREG_SCHEMA_CACHE_SIZE", 1000),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	cfg := ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("SCHEMAREG_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("SCHEMAREG_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("SCHEMAREG_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("SCHEMAREG_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("SCHEMAREG_OTEL_SERVICE_NAME", "schema-registry"),
		OTelServiceVersion: getEnv("SCHEMAREG_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("SCHEMAREG_OTEL_INSECURE", true),
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Type {
	case "filesystem":
		if c.Storage.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem, postgres, or s3)", c.Storage.Type)
	}

	if !isValidCompatibility(c.Registry.DefaultCompatibility) {
		return fmt.Errorf("invalid default compatibility level: %s", c.Registry.DefaultCompatibility)
	}
	if !isValidMode(c.Registry.DefaultMode) {
		return fmt.Errorf("invalid default mode: %s", c.Registry.DefaultMode)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func isValidCompatibility(level string) bool {
	switch level {
	case "NONE", "BACKWARD", "BACKWARD_TRANSITIVE", "FORWARD", "FORWARD_TRANSITIVE", "FULL", "FULL_TRANSITIVE":
		return true
	default:
		return false
	}
}

func isValidMode(mode string) bool {
	switch mode {
	case "READWRITE", "READONLY", "READONLY_OVERRIDE", "IMPORT":
		return true
	default:
		return false
	}
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
