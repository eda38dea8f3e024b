package config

import (
	"os"
	"testing"
	"time"

	"github.com/platinummonkey/schema-registry/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "returns true for 'true'", key: "TEST_BOOL", defaultValue: false, envValue: "true", want: true},
		{name: "returns true for '1'", key: "TEST_BOOL", defaultValue: false, envValue: "1", want: true},
		{name: "returns false for 'false'", key: "TEST_BOOL", defaultValue: true, envValue: "false", want: false},
		{name: "returns default when not set", key: "TEST_BOOL_NOT_SET", defaultValue: true, envValue: "", want: true},
		{name: "returns true for 'TRUE' (case insensitive)", key: "TEST_BOOL", defaultValue: false, envValue: "TRUE", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvInt tests the getEnvInt helper function
func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{name: "returns parsed int", key: "TEST_INT", defaultValue: 10, envValue: "42", want: 42},
		{name: "returns default for invalid int", key: "TEST_INT", defaultValue: 10, envValue: "invalid", want: 10},
		{name: "returns default when not set", key: "TEST_INT_NOT_SET", defaultValue: 10, envValue: "", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{name: "returns parsed duration", key: "TEST_DURATION", defaultValue: 10 * time.Second, envValue: "30s", want: 30 * time.Second},
		{name: "returns default for invalid duration", key: "TEST_DURATION", defaultValue: 10 * time.Second, envValue: "invalid", want: 10 * time.Second},
		{name: "returns default when not set", key: "TEST_DURATION_NOT_SET", defaultValue: 10 * time.Second, envValue: "", want: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestParseLogLevel tests the parseLogLevel function
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  observability.LogLevel
	}{
		{name: "debug", level: "debug", want: observability.DebugLevel},
		{name: "DEBUG uppercase", level: "DEBUG", want: observability.DebugLevel},
		{name: "info", level: "info", want: observability.InfoLevel},
		{name: "warn", level: "warn", want: observability.WarnLevel},
		{name: "warning", level: "warning", want: observability.WarnLevel},
		{name: "error", level: "error", want: observability.ErrorLevel},
		{name: "invalid defaults to info", level: "invalid", want: observability.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLogLevel(tt.level)
			if got != tt.want {
				t.Errorf("parseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func clearEnv(keys []string) func() {
	original := make(map[string]string, len(keys))
	for _, k := range keys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	return func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}
}

func TestLoadServerConfig(t *testing.T) {
	keys := []string{
		"SCHEMAREG_HOST", "SCHEMAREG_PORT", "SCHEMAREG_READ_TIMEOUT",
		"SCHEMAREG_WRITE_TIMEOUT", "SCHEMAREG_IDLE_TIMEOUT",
		"SCHEMAREG_SHUTDOWN_TIMEOUT", "SCHEMAREG_HEALTH_PORT",
	}
	defer clearEnv(keys)()

	t.Run("defaults", func(t *testing.T) {
		clearEnv(keys)
		got := loadServerConfig()
		want := ServerConfig{
			Host: "0.0.0.0", Port: "8081",
			ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second, ShutdownTimeout: 30 * time.Second,
			HealthPort: "9090",
		}
		if got != want {
			t.Errorf("loadServerConfig() = %+v, want %+v", got, want)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_HOST", "localhost")
		os.Setenv("SCHEMAREG_PORT", "3000")
		os.Setenv("SCHEMAREG_HEALTH_PORT", "9091")

		got := loadServerConfig()
		if got.Host != "localhost" || got.Port != "3000" || got.HealthPort != "9091" {
			t.Errorf("loadServerConfig() = %+v, want host/port/healthport overridden", got)
		}
	})
}

func TestLoadStorageConfig(t *testing.T) {
	keys := []string{
		"SCHEMAREG_STORAGE_TYPE", "SCHEMAREG_FILESYSTEM_ROOT",
		"SCHEMAREG_POSTGRES_URL", "SCHEMAREG_POSTGRES_MAX_CONNS", "SCHEMAREG_POSTGRES_TIMEOUT",
		"SCHEMAREG_S3_ENDPOINT", "SCHEMAREG_S3_REGION", "SCHEMAREG_S3_BUCKET",
		"SCHEMAREG_S3_ACCESS_KEY", "SCHEMAREG_S3_SECRET_KEY", "SCHEMAREG_S3_USE_PATH_STYLE",
		"SCHEMAREG_REDIS_URL", "SCHEMAREG_REDIS_PASSWORD", "SCHEMAREG_REDIS_DB", "SCHEMAREG_REDIS_TTL",
		"SCHEMAREG_CACHE_ENABLED",
	}
	defer clearEnv(keys)()

	t.Run("loads default config", func(t *testing.T) {
		clearEnv(keys)
		cfg := loadStorageConfig()
		if cfg.Type != "filesystem" {
			t.Errorf("Type = %v, want filesystem", cfg.Type)
		}
	})

	t.Run("loads postgres config from env", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_POSTGRES_URL", "postgres://localhost/db")
		os.Setenv("SCHEMAREG_POSTGRES_MAX_CONNS", "50")
		os.Setenv("SCHEMAREG_POSTGRES_TIMEOUT", "20s")

		cfg := loadStorageConfig()
		if cfg.PostgresURL != "postgres://localhost/db" {
			t.Errorf("PostgresURL = %v", cfg.PostgresURL)
		}
		if cfg.PostgresMaxConns != 50 {
			t.Errorf("PostgresMaxConns = %v, want 50", cfg.PostgresMaxConns)
		}
		if cfg.PostgresTimeout != 20*time.Second {
			t.Errorf("PostgresTimeout = %v, want 20s", cfg.PostgresTimeout)
		}
	})

	t.Run("loads s3 config from env", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_S3_ENDPOINT", "s3.amazonaws.com")
		os.Setenv("SCHEMAREG_S3_REGION", "us-east-1")
		os.Setenv("SCHEMAREG_S3_BUCKET", "my-bucket")
		os.Setenv("SCHEMAREG_S3_ACCESS_KEY", "access")
		os.Setenv("SCHEMAREG_S3_SECRET_KEY", "secret")
		os.Setenv("SCHEMAREG_S3_USE_PATH_STYLE", "true")

		cfg := loadStorageConfig()
		if cfg.S3Endpoint != "s3.amazonaws.com" || cfg.S3Region != "us-east-1" || cfg.S3Bucket != "my-bucket" {
			t.Errorf("s3 fields not loaded: %+v", cfg)
		}
		if cfg.S3AccessKey != "access" || cfg.S3SecretKey != "secret" {
			t.Errorf("s3 credentials not loaded: %+v", cfg)
		}
		if !cfg.S3UsePathStyle {
			t.Errorf("S3UsePathStyle = %v, want true", cfg.S3UsePathStyle)
		}
	})

	t.Run("loads redis config from env", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_REDIS_URL", "redis://localhost:6379")
		os.Setenv("SCHEMAREG_REDIS_PASSWORD", "password")
		os.Setenv("SCHEMAREG_REDIS_DB", "1")
		os.Setenv("SCHEMAREG_REDIS_TTL", "5m")

		cfg := loadStorageConfig()
		if cfg.RedisURL != "redis://localhost:6379" || cfg.RedisPassword != "password" {
			t.Errorf("redis fields not loaded: %+v", cfg)
		}
		if cfg.RedisDB != 1 {
			t.Errorf("RedisDB = %v, want 1", cfg.RedisDB)
		}
		if cfg.RedisTTL != 5*time.Minute {
			t.Errorf("RedisTTL = %v, want 5m", cfg.RedisTTL)
		}
	})

	t.Run("ignores invalid postgres max conns", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_POSTGRES_MAX_CONNS", "0")

		cfg := loadStorageConfig()
		if cfg.PostgresMaxConns != 10 {
			t.Errorf("PostgresMaxConns = %v, want 10 (default)", cfg.PostgresMaxConns)
		}
	})

	t.Run("ignores invalid redis db", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_REDIS_DB", "-1")

		cfg := loadStorageConfig()
		if cfg.RedisDB != 0 {
			t.Errorf("RedisDB = %v, want 0 (default)", cfg.RedisDB)
		}
	})
}

func TestLoadRegistryConfig(t *testing.T) {
	keys := []string{"SCHEMAREG_DEFAULT_COMPATIBILITY", "SCHEMAREG_DEFAULT_MODE", "SCHEMAREG_SCHEMA_CACHE_SIZE"}
	defer clearEnv(keys)()

	t.Run("defaults", func(t *testing.T) {
		clearEnv(keys)
		cfg := loadRegistryConfig()
		if cfg.DefaultCompatibility != "BACKWARD" {
			t.Errorf("DefaultCompatibility = %v, want BACKWARD", cfg.DefaultCompatibility)
		}
		if cfg.DefaultMode != "READWRITE" {
			t.Errorf("DefaultMode = %v, want READWRITE", cfg.DefaultMode)
		}
		if cfg.SchemaCacheSize != 1000 {
			t.Errorf("SchemaCacheSize = %v, want 1000", cfg.SchemaCacheSize)
		}
	})

	t.Run("lowercase env values are upcased", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_DEFAULT_COMPATIBILITY", "full_transitive")
		os.Setenv("SCHEMAREG_DEFAULT_MODE", "readonly")

		cfg := loadRegistryConfig()
		if cfg.DefaultCompatibility != "FULL_TRANSITIVE" {
			t.Errorf("DefaultCompatibility = %v, want FULL_TRANSITIVE", cfg.DefaultCompatibility)
		}
		if cfg.DefaultMode != "READONLY" {
			t.Errorf("DefaultMode = %v, want READONLY", cfg.DefaultMode)
		}
	})
}

func TestLoadObservabilityConfig(t *testing.T) {
	keys := []string{
		"SCHEMAREG_LOG_LEVEL", "SCHEMAREG_METRICS_ENABLED", "SCHEMAREG_OTEL_ENABLED",
		"SCHEMAREG_OTEL_ENDPOINT", "SCHEMAREG_OTEL_SERVICE_NAME",
		"SCHEMAREG_OTEL_SERVICE_VERSION", "SCHEMAREG_OTEL_INSECURE",
	}
	defer clearEnv(keys)()

	t.Run("defaults", func(t *testing.T) {
		clearEnv(keys)
		got := loadObservabilityConfig()
		want := ObservabilityConfig{
			LogLevel: observability.InfoLevel, MetricsEnabled: true,
			OTelEnabled: false, OTelEndpoint: "localhost:4317",
			OTelServiceName: "schema-registry", OTelServiceVersion: "1.0.0",
			OTelInsecure: true,
		}
		if got != want {
			t.Errorf("loadObservabilityConfig() = %+v, want %+v", got, want)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_LOG_LEVEL", "debug")
		os.Setenv("SCHEMAREG_METRICS_ENABLED", "false")
		os.Setenv("SCHEMAREG_OTEL_ENABLED", "true")
		os.Setenv("SCHEMAREG_OTEL_ENDPOINT", "otel-collector:4317")

		got := loadObservabilityConfig()
		if got.LogLevel != observability.DebugLevel || got.MetricsEnabled {
			t.Errorf("loadObservabilityConfig() = %+v", got)
		}
		if !got.OTelEnabled || got.OTelEndpoint != "otel-collector:4317" {
			t.Errorf("loadObservabilityConfig() = %+v", got)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing server port", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "", HealthPort: "9090"}}
		if err := cfg.Validate(); err == nil || err.Error() != "server port is required" {
			t.Errorf("Validate() = %v, want 'server port is required'", err)
		}
	})

	t.Run("missing health port", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: ""}}
		if err := cfg.Validate(); err == nil || err.Error() != "health port is required" {
			t.Errorf("Validate() = %v, want 'health port is required'", err)
		}
	})

	t.Run("same server and health port", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "8081"}}
		if err := cfg.Validate(); err == nil || err.Error() != "server port and health port must be different" {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("filesystem storage without root", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "filesystem"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"}
		if err := cfg.Validate(); err == nil || err.Error() != "filesystem root is required for filesystem storage" {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("postgres storage without postgres url", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "postgres"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"}
		if err := cfg.Validate(); err == nil || err.Error() != "postgres URL is required for postgres storage" {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("s3 storage without bucket", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "s3"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"}
		if err := cfg.Validate(); err == nil || err.Error() != "S3 bucket is required for s3 storage" {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("invalid storage type", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "invalid"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"}
		want := "invalid storage type: invalid (must be filesystem, postgres, or s3)"
		if err := cfg.Validate(); err == nil || err.Error() != want {
			t.Errorf("Validate() = %v, want %v", err, want)
		}
	})

	t.Run("invalid default compatibility", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "filesystem"
		cfg.Storage.FilesystemRoot = "/tmp/schema-registry"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "NOPE", DefaultMode: "READWRITE"}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for invalid compatibility level")
		}
	})

	t.Run("invalid default mode", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Port: "8081", HealthPort: "9090"}}
		cfg.Storage.Type = "filesystem"
		cfg.Storage.FilesystemRoot = "/tmp/schema-registry"
		cfg.Registry = RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "NOPE"}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for invalid mode")
		}
	})

	t.Run("otel enabled without endpoint", func(t *testing.T) {
		cfg := Config{
			Server:   ServerConfig{Port: "8081", HealthPort: "9090"},
			Registry: RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"},
			Observability: ObservabilityConfig{
				OTelEnabled: true, OTelEndpoint: "", OTelServiceName: "test",
			},
		}
		cfg.Storage.Type = "filesystem"
		cfg.Storage.FilesystemRoot = "/tmp/schema-registry"

		if err := cfg.Validate(); err == nil || err.Error() != "OpenTelemetry endpoint is required when OTel is enabled" {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("valid config", func(t *testing.T) {
		cfg := Config{
			Server:   ServerConfig{Port: "8081", HealthPort: "9090"},
			Registry: RegistryConfig{DefaultCompatibility: "BACKWARD", DefaultMode: "READWRITE"},
		}
		cfg.Storage.Type = "filesystem"
		cfg.Storage.FilesystemRoot = "/tmp/schema-registry"

		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error = %v", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	keys := []string{"SCHEMAREG_PORT", "SCHEMAREG_HEALTH_PORT", "SCHEMAREG_STORAGE_TYPE", "SCHEMAREG_FILESYSTEM_ROOT"}
	defer clearEnv(keys)()

	t.Run("valid config", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_PORT", "8081")
		os.Setenv("SCHEMAREG_HEALTH_PORT", "9090")
		os.Setenv("SCHEMAREG_STORAGE_TYPE", "filesystem")
		os.Setenv("SCHEMAREG_FILESYSTEM_ROOT", "/tmp/schema-registry")

		cfg, err := LoadConfig()
		if err != nil {
			t.Errorf("LoadConfig() unexpected error = %v", err)
		}
		if cfg == nil {
			t.Fatal("LoadConfig() returned nil config without error")
		}
	})

	t.Run("invalid config - same ports", func(t *testing.T) {
		clearEnv(keys)
		os.Setenv("SCHEMAREG_PORT", "8081")
		os.Setenv("SCHEMAREG_HEALTH_PORT", "8081")

		_, err := LoadConfig()
		if err == nil {
			t.Error("LoadConfig() expected error for matching ports")
		}
	})
}
