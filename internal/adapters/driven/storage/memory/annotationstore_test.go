package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func TestAnnotationStore_PutLoad(t *testing.T) {
	ctx := context.Background()
	store := NewAnnotationStore()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "q1", "abcdefgh_c0", domain.Annotation{Relevance: domain.RelevanceRelevant, Timestamp: now}))
	require.NoError(t, store.Put(ctx, "q1", "abcdefgh_c1", domain.Annotation{Relevance: domain.RelevanceSkipped, Timestamp: now}))

	set, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Count())

	a, ok := set.Get("q1", "abcdefgh_c0")
	require.True(t, ok)
	assert.Equal(t, domain.RelevanceRelevant, a.Relevance)
	assert.Equal(t, now, a.Timestamp)

	// Mutating the loaded copy leaves the store untouched.
	set.Set("q2", "x_c0", domain.Annotation{})
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Count())
}

func TestAnnotationStore_PutInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewAnnotationStore()

	err := store.Put(ctx, "q1", "c", domain.Annotation{Relevance: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Put(ctx, "", "c", domain.Annotation{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnnotationStore_Save(t *testing.T) {
	ctx := context.Background()
	store := NewAnnotationStore()
	require.NoError(t, store.Put(ctx, "old", "c", domain.Annotation{}))

	set := domain.AnnotationSet{}
	set.Set("q1", "c0", domain.Annotation{Relevance: domain.RelevanceNotRelevant})
	require.NoError(t, store.Save(ctx, set))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, loaded.QueryIDs())

	bad := domain.AnnotationSet{}
	bad.Set("q1", "c0", domain.Annotation{Relevance: 5})
	assert.ErrorIs(t, store.Save(ctx, bad), domain.ErrInvalidInput)
}

func TestAnnotationStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewAnnotationStore()
	require.NoError(t, store.Put(ctx, "q1", "c0", domain.Annotation{}))

	require.NoError(t, store.Delete(ctx, "q1", "c0"))
	assert.ErrorIs(t, store.Delete(ctx, "q1", "c0"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "q9", "c0"), domain.ErrNotFound)

	set, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestAnnotationStore_Queries(t *testing.T) {
	ctx := context.Background()
	store := NewAnnotationStore()

	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q2", Text: "second"}))
	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q1", Text: "first", Type: "factual"}))
	require.NoError(t, store.SaveQuery(ctx, domain.Query{ID: "q2", Text: "second, edited"}))
	assert.ErrorIs(t, store.SaveQuery(ctx, domain.Query{}), domain.ErrInvalidInput)

	queries, err := store.ListQueries(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "q1", queries[0].ID)
	assert.Equal(t, "second, edited", queries[1].Text)

	require.NoError(t, store.DeleteQuery(ctx, "q1"))
	assert.ErrorIs(t, store.DeleteQuery(ctx, "q1"), domain.ErrNotFound)
}
