package storage

import (
	"context"
	"time"
)

// Snapshot is the full persisted state of a registry.Engine: every schema
// record, every subject's version list, and the config/mode overrides. It
// is the unit the SnapshotStore backends save and load — the Engine itself
// stays the sole mutator of in-memory state; a SnapshotStore only gives
// that state a lifetime past the process, for backends where that matters.
type Snapshot struct {
	NextID   int                 `json:"next_id"`
	Schemas  []SnapshotSchema    `json:"schemas"`
	Subjects []SnapshotSubject   `json:"subjects"`
	Config   []SnapshotScopeLvl  `json:"config"`
	Mode     []SnapshotScopeMode `json:"mode"`
}

// SnapshotSchema mirrors registry.SchemaRecord for serialization, without
// importing pkg/registry (which imports this package for the Snapshot
// types — the Engine is the consumer, this package the implementation).
type SnapshotSchema struct {
	ID            int                 `json:"id"`
	SchemaType    string              `json:"schema_type"`
	CanonicalText string              `json:"canonical_text"`
	RawText       string              `json:"raw_text"`
	Fingerprint   string              `json:"fingerprint"`
	References    []SnapshotSchemaRef `json:"references,omitempty"`
}

// SnapshotSchemaRef mirrors registry.SchemaReference.
type SnapshotSchemaRef struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// SnapshotSubject mirrors registry.Subject.
type SnapshotSubject struct {
	Context  string                 `json:"context"`
	Name     string                 `json:"name"`
	Deleted  bool                   `json:"deleted"`
	Versions []SnapshotVersionEntry `json:"versions"`
}

// SnapshotVersionEntry mirrors registry.VersionEntry.
type SnapshotVersionEntry struct {
	VersionNumber int  `json:"version_number"`
	SchemaID      int  `json:"schema_id"`
	Deleted       bool `json:"deleted"`
}

// SnapshotScopeLvl is one (context, subject) -> compatibility level entry.
type SnapshotScopeLvl struct {
	Context string `json:"context"`
	Subject string `json:"subject"`
	Level   string `json:"level"`
}

// SnapshotScopeMode is one (context, subject) -> mode entry.
type SnapshotScopeMode struct {
	Context string `json:"context"`
	Subject string `json:"subject"`
	Mode    string `json:"mode"`
}

// SnapshotStore persists and restores a Snapshot. Implementations:
// FileSystemStore (local disk), postgres.Store (lib/pq), postgres.S3Store
// (aws-sdk-go-v2/service/s3), and postgres.RedisCache (a read-through
// cache wrapping another SnapshotStore).
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	HealthCheck(ctx context.Context) error
}

// Config selects and configures a SnapshotStore backend at startup.
type Config struct {
	Type string // "filesystem", "postgres", "s3"

	FilesystemRoot string

	PostgresURL      string
	PostgresMaxConns int
	PostgresTimeout  time.Duration

	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3Key          string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	CacheEnabled bool
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "filesystem",
		FilesystemRoot:   "/tmp/schema-registry",
		PostgresMaxConns: 10,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		RedisTTL:         1 * time.Minute,
		CacheEnabled:     true,
	}
}
