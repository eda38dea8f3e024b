package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/schema-registry/pkg/storage"
)

var tracer = otel.Tracer("schemaregistry/storage/postgres")

const snapshotRowID = 1

// Store persists a Snapshot as a single JSONB row, overwritten on every
// Save. Grounded on the teacher's PostgresStorage, folded from a
// modules/versions/proto_files schema down to one row since a Snapshot
// already is the whole state graph.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed SnapshotStore and ensures its table
// exists.
func NewStore(cfg storage.Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.PostgresMaxConns)

	store, err := newStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// newStoreWithDB wraps an already-open database handle, creating the
// snapshot table if it doesn't exist. Exposed at package level so tests can
// substitute a sqlmock connection.
func newStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS registry_snapshot (
			id INT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts snap into the single snapshot row.
func (s *Store) Save(ctx context.Context, snap *storage.Snapshot) error {
	ctx, span := tracer.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPSERT"),
			attribute.String("db.table", "registry_snapshot"),
		),
	)
	defer span.End()

	data, err := json.Marshal(snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal snapshot")
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO registry_snapshot (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = now()
	`, snapshotRowID, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert snapshot")
		return fmt.Errorf("save snapshot: %w", err)
	}

	span.SetStatus(codes.Ok, "snapshot saved")
	return nil
}

// Load reads the snapshot row; a missing row is an empty snapshot, not an
// error, since a fresh registry has nothing to restore.
func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Load",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "registry_snapshot"),
		),
	)
	defer span.End()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM registry_snapshot WHERE id = $1`, snapshotRowID).Scan(&data)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Ok, "no snapshot row, returning empty snapshot")
		return &storage.Snapshot{NextID: 1}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load snapshot")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal snapshot")
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	span.SetStatus(codes.Ok, "snapshot loaded")
	return &snap, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unhealthy: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.SnapshotStore = (*Store)(nil)
