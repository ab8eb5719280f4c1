package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// DefaultFileName is the database file created inside the data directory.
const DefaultFileName = "annotations.db"

// Store is a SQLite-backed annotation and query store.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interfaces.
var (
	_ driven.AnnotationStore = (*Store)(nil)
	_ driven.QueryStore      = (*Store)(nil)
)

// NewStore opens (or creates) the database inside dataDir and applies
// pending migrations.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	return Open(filepath.Join(dataDir, DefaultFileName))
}

// Open opens (or creates) the database file at dbPath and applies
// pending migrations. Missing parent directories are created.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrIOFailure, err)
	}

	// WAL keeps readers from blocking the annotate command.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Annotation Store ====================

// Load returns every annotation.
func (s *Store) Load(ctx context.Context) (domain.AnnotationSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT query_id, chunk_id, relevance, annotated_at
		FROM annotations ORDER BY query_id, chunk_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	set := make(domain.AnnotationSet)
	for rows.Next() {
		var queryID, chunkID, annotatedAt string
		var relevance int
		if err := rows.Scan(&queryID, &chunkID, &relevance, &annotatedAt); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		set.Set(queryID, chunkID, domain.Annotation{
			Relevance: domain.Relevance(relevance),
			Timestamp: parseTime(annotatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}
	return set, nil
}

// Save replaces every stored annotation with set.
func (s *Store) Save(ctx context.Context, set domain.AnnotationSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations"); err != nil {
		return fmt.Errorf("clearing annotations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (query_id, chunk_id, relevance, annotated_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, queryID := range set.QueryIDs() {
		for chunkID, a := range set[queryID] {
			if !a.Relevance.IsValid() {
				return fmt.Errorf("%w: relevance %d for %s/%s", domain.ErrInvalidInput, a.Relevance, queryID, chunkID)
			}
			if _, err := stmt.ExecContext(ctx, queryID, chunkID, int(a.Relevance), formatTime(a.Timestamp)); err != nil {
				return fmt.Errorf("saving annotation: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Put records a single annotation, replacing any earlier judgement.
func (s *Store) Put(ctx context.Context, queryID, chunkID string, a domain.Annotation) error {
	if queryID == "" || chunkID == "" {
		return fmt.Errorf("%w: query and chunk ids are required", domain.ErrInvalidInput)
	}
	if !a.Relevance.IsValid() {
		return fmt.Errorf("%w: relevance %d", domain.ErrInvalidInput, a.Relevance)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (query_id, chunk_id, relevance, annotated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query_id, chunk_id) DO UPDATE SET
			relevance = excluded.relevance,
			annotated_at = excluded.annotated_at
	`, queryID, chunkID, int(a.Relevance), formatTime(a.Timestamp))
	if err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	return nil
}

// Delete removes a single annotation.
func (s *Store) Delete(ctx context.Context, queryID, chunkID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM annotations WHERE query_id = ? AND chunk_id = ?", queryID, chunkID)
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	return requireAffected(res)
}

// ==================== Query Store ====================

// SaveQuery stores or updates a query.
func (s *Store) SaveQuery(ctx context.Context, q domain.Query) error {
	if q.ID == "" {
		return fmt.Errorf("%w: query id is required", domain.ErrInvalidInput)
	}

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries (id, text, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			type = excluded.type,
			updated_at = excluded.updated_at
	`, q.ID, q.Text, q.Type, now, now)
	if err != nil {
		return fmt.Errorf("saving query: %w", err)
	}
	return nil
}

// ListQueries returns all queries ordered by ID.
func (s *Store) ListQueries(ctx context.Context) ([]domain.Query, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text, type FROM queries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.Query
	for rows.Next() {
		var q domain.Query
		if err := rows.Scan(&q.ID, &q.Text, &q.Type); err != nil {
			return nil, fmt.Errorf("scanning query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queries: %w", err)
	}
	return queries, nil
}

// DeleteQuery removes a query. Its annotations are kept.
func (s *Store) DeleteQuery(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM queries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting query: %w", err)
	}
	return requireAffected(res)
}

// ==================== Helpers ====================

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
