// Package sqlite provides a SQLite-based annotation and query store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single database connection serves both interfaces:
//
//   - AnnotationStore: relevance judgements keyed by (query, chunk)
//   - QueryStore: evaluation queries
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Each migration is a pair of .up.sql and .down.sql files; applied versions are
// recorded in schema_migrations.
//
// # Data Location
//
// The database is stored at <data dir>/annotations.db.
package sqlite
