package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func newAnnotationService() (*AnnotationService, *memory.AnnotationStore, *mockArchive) {
	store := memory.NewAnnotationStore()
	archive := &mockArchive{}
	svc := NewAnnotationService(store, store, archive)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, archive
}

func TestAnnotationService_Annotate(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAnnotationService()

	require.NoError(t, svc.Annotate(ctx, "q1", "abc_c0", domain.RelevanceRelevant))

	set, err := store.Load(ctx)
	require.NoError(t, err)
	a, ok := set.Get("q1", "abc_c0")
	require.True(t, ok)
	assert.Equal(t, domain.Annotation{Relevance: domain.RelevanceRelevant, Timestamp: fixedNow}, a)
}

func TestAnnotationService_Annotate_Invalid(t *testing.T) {
	svc, _, _ := newAnnotationService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Annotate(ctx, "", "abc_c0", 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Annotate(ctx, "q1", " ", 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Annotate(ctx, "q1", "abc_c0", 2), domain.ErrInvalidInput)
}

func TestAnnotationService_RemoveAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAnnotationService()
	require.NoError(t, svc.Annotate(ctx, "q1", "c0", domain.RelevanceRelevant))
	require.NoError(t, svc.Annotate(ctx, "q2", "c0", domain.RelevanceNotRelevant))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count())

	one, err := svc.List(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, one.QueryIDs())

	none, err := svc.List(ctx, "q9")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, svc.Remove(ctx, "q1", "c0"))
	assert.ErrorIs(t, svc.Remove(ctx, "q1", "c0"), domain.ErrNotFound)
}

func TestAnnotationService_ImportMerges(t *testing.T) {
	ctx := context.Background()
	svc, store, archive := newAnnotationService()
	require.NoError(t, svc.Annotate(ctx, "q1", "c0", domain.RelevanceNotRelevant))
	require.NoError(t, svc.Annotate(ctx, "q1", "c1", domain.RelevanceRelevant))

	incoming := domain.AnnotationSet{}
	incoming.Set("q1", "c0", domain.Annotation{Relevance: domain.RelevanceRelevant})
	incoming.Set("q2", "c5", domain.Annotation{Relevance: domain.RelevanceSkipped})
	archive.files = map[string]domain.AnnotationExport{
		"in.json": {Annotations: incoming, Queries: []domain.Query{{ID: "q2", Text: "second"}}},
	}

	n, err := svc.Import(ctx, "in.json")

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	set, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Count())
	assert.Equal(t, domain.RelevanceRelevant, set["q1"]["c0"].Relevance)
	assert.Equal(t, domain.RelevanceRelevant, set["q1"]["c1"].Relevance)

	queries, err := svc.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Query{{ID: "q2", Text: "second"}}, queries)
}

func TestAnnotationService_ImportMissingFile(t *testing.T) {
	svc, _, _ := newAnnotationService()
	_, err := svc.Import(context.Background(), "missing.json")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}

func TestAnnotationService_Export(t *testing.T) {
	ctx := context.Background()
	svc, _, archive := newAnnotationService()
	require.NoError(t, svc.Annotate(ctx, "q1", "c0", domain.RelevanceRelevant))
	require.NoError(t, svc.AddQuery(ctx, domain.Query{ID: "q1", Text: "first"}))

	require.NoError(t, svc.Export(ctx, "out.json"))

	doc := archive.files["out.json"]
	assert.Equal(t, fixedNow, doc.ExportTimestamp)
	assert.Equal(t, []domain.Query{{ID: "q1", Text: "first"}}, doc.Queries)
	assert.Equal(t, 1, doc.Annotations.Count())
}

func TestAnnotationService_NoArchiveOrQueryStore(t *testing.T) {
	ctx := context.Background()
	svc := NewAnnotationService(memory.NewAnnotationStore(), nil, nil)

	_, err := svc.Import(ctx, "x.json")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, svc.Export(ctx, "x.json"), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, svc.AddQuery(ctx, domain.Query{ID: "q", Text: "t"}), domain.ErrInvalidConfiguration)

	queries, err := svc.Queries(ctx)
	require.NoError(t, err)
	assert.Nil(t, queries)
}

func TestAnnotationService_AddQuery_Invalid(t *testing.T) {
	svc, _, _ := newAnnotationService()
	assert.ErrorIs(t, svc.AddQuery(context.Background(), domain.Query{ID: "q1"}), domain.ErrInvalidInput)
}
