package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "contextpacket-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func TestNewStore_Migrates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.FileExists(t, store.Path())
}

func TestOpen_CustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "labels.db")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Put(context.Background(), "q1", "c1", domain.Annotation{Relevance: domain.RelevanceRelevant}))

	set, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, set.Count())
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Put(ctx, "q1", "c0", domain.Annotation{Relevance: domain.RelevanceRelevant}))
	require.NoError(t, store1.Close())

	// Reopening must not re-run applied migrations.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	version, err := store2.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	set, err := store2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Count())
}

func TestStore_PutAndLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Date(2025, 3, 4, 5, 6, 7, 800, time.UTC)

	require.NoError(t, store.Put(ctx, "q1", "abcdefgh_c0", domain.Annotation{Relevance: domain.RelevanceRelevant, Timestamp: now}))
	require.NoError(t, store.Put(ctx, "q1", "abcdefgh_c1", domain.Annotation{Relevance: domain.RelevanceNotRelevant, Timestamp: now}))
	require.NoError(t, store.Put(ctx, "q2", "abcdefgh_c0", domain.Annotation{Relevance: domain.RelevanceSkipped}))

	// Overwrite an existing judgement.
	require.NoError(t, store.Put(ctx, "q1", "abcdefgh_c1", domain.Annotation{Relevance: domain.RelevanceRelevant, Timestamp: now}))

	set, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Count())
	assert.Equal(t, []string{"q1", "q2"}, set.QueryIDs())

	a, ok := set.Get("q1", "abcdefgh_c1")
	require.True(t, ok)
	assert.Equal(t, domain.RelevanceRelevant, a.Relevance)
	assert.True(t, now.Equal(a.Timestamp))

	a, ok = set.Get("q2", "abcdefgh_c0")
	require.True(t, ok)
	assert.Equal(t, domain.RelevanceSkipped, a.Relevance)
	assert.True(t, a.Timestamp.IsZero())
}

func TestStore_PutInvalid(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, "q1", "c0", domain.Annotation{Relevance: 3}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Put(ctx, "q1", "", domain.Annotation{}), domain.ErrInvalidInput)
}

func TestStore_Save_Replaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "old", "c0", domain.Annotation{}))

	set := domain.AnnotationSet{}
	set.Set("q1", "c0", domain.Annotation{Relevance: domain.RelevanceRelevant})
	set.Set("q1", "c1", domain.Annotation{Relevance: domain.RelevanceNotRelevant})
	require.NoError(t, store.Save(ctx, set))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, loaded.QueryIDs())
	assert.Equal(t, 2, loaded.Count())
}

func TestStore_Save_InvalidRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "keep", "c0", domain.Annotation{}))

	bad := domain.AnnotationSet{}
	bad.Set("q1", "c0", domain.Annotation{Relevance: 7})
	assert.ErrorIs(t, store.Save(ctx, bad), domain.ErrInvalidInput)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, loaded.QueryIDs())
}

func TestStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "q1", "c0", domain.Annotation{}))
	require.NoError(t, store.Delete(ctx, "q1", "c0"))
	assert.ErrorIs(t, store.Delete(ctx, "q1", "c0"), domain.ErrNotFound)
}

func TestStore_Queries(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	queries, err := store.ListQueries(ctx)
	require.NoError(t, err)
	assert.Empty(t, queries)

	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q2", Text: "how are windows sized", Type: "procedural"}))
	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q1", Text: "what is a citation"}))
	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q1", Text: "what is a citation marker", Type: "factual"}))
	assert.ErrorIs(t, store.SaveQuery(ctx, domain.Query{Text: "no id"}), domain.ErrInvalidInput)

	queries, err = store.ListQueries(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, domain.Query{ID: "q1", Text: "what is a citation marker", Type: "factual"}, queries[0])
	assert.Equal(t, "q2", queries[1].ID)

	require.NoError(t, store.DeleteQuery(ctx, "q2"))
	assert.ErrorIs(t, store.DeleteQuery(ctx, "q2"), domain.ErrNotFound)
}
