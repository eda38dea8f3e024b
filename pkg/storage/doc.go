// Package storage provides pluggable snapshot persistence for the schema
// registry's Engine. The Engine owns all mutable state in memory; a
// SnapshotStore gives that state a lifetime past the process by saving and
// loading the whole state graph (schemas, subjects, config, mode) as one
// unit.
//
// Backends:
//
//	storage.NewFileSystemStore(root)       // local disk, single JSON file
//	postgres.NewStore(cfg)                 // lib/pq, one JSONB row
//	postgres.NewS3Store(cfg)               // aws-sdk-go-v2 s3, one object
//	postgres.NewRedisCache(cfg, next)      // go-redis read-through cache
//
// Config selects a backend at startup; DefaultConfig favors the
// filesystem backend for local development.
package storage
