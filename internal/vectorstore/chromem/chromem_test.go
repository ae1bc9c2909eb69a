package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/internal/domain"
)

func record(filename, text string, embedding []float32) domain.Record {
	return domain.Record{
		Chunk: domain.Chunk{
			Filename: filename,
			Text:     text,
			Strategy: "sentence_split_simple",
		},
		Embedding: embedding,
	}
}

func newStore(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(Config{Dimension: 3})
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestInsertAndSearchRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.InsertBatch(ctx, []domain.Record{
		record("a.txt", "about cats", []float32{1, 0, 0}),
		record("a.txt", "about dogs", []float32{0, 1, 0}),
		record("b.txt", "about birds", []float32{0.9, 0.1, 0}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "about cats", results[0].ChunkText)
	assert.Equal(t, "a.txt", results[0].Filename)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	assert.Equal(t, "about birds", results[1].ChunkText)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchReturnsAllWhenFewerThanTopK(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.InsertBatch(ctx, []domain.Record{
		record("a.txt", "only entry", []float32{0, 0, 1}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{0, 0, 1}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEmptyStore(t *testing.T) {
	s := newStore(t)

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInsertBatchRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.InsertBatch(ctx, []domain.Record{
		record("a.txt", "fits", []float32{1, 0, 0}),
		record("a.txt", "too wide", []float32{1, 0, 0, 0}),
	})
	var ierr *domain.InsertError
	require.ErrorAs(t, err, &ierr)

	// Nothing from the failed batch may be visible.
	results, err := s.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOpenServesQueriesWithoutSchemaCall(t *testing.T) {
	ctx := context.Background()
	s, err := Open(Config{Dimension: 3})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	err = s.InsertBatch(ctx, []domain.Record{
		record("a.txt", "first entry", []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	results, err = s.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first entry", results[0].ChunkText)
}

func TestPersistentStoreAnswersAfterReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir, Dimension: 3})
	require.NoError(t, err)
	err = s.InsertBatch(ctx, []domain.Record{
		record("a.txt", "kept across runs", []float32{0, 1, 0}),
	})
	require.NoError(t, err)
	s.Close()

	reopened, err := Open(Config{Path: dir, Dimension: 3})
	require.NoError(t, err)

	results, err := reopened.Search(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept across runs", results[0].ChunkText)
	assert.Equal(t, "a.txt", results[0].Filename)
}

func TestSearchRejectsNonPositiveTopK(t *testing.T) {
	s := newStore(t)
	_, err := s.Search(context.Background(), []float32{1, 0, 0}, 0)
	require.Error(t, err)
}

func TestSearchRejectsWrongQueryDimension(t *testing.T) {
	s := newStore(t)
	_, err := s.Search(context.Background(), []float32{1, 0}, 5)
	require.Error(t, err)
}
