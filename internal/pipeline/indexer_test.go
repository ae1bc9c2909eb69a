package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docsearch/internal/chunker"
	"docsearch/internal/domain"
	"docsearch/internal/extract"
)

type fakeEmbedder struct {
	dim     int
	failOn  map[string]error
	intents []domain.Intent
	texts   []string
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(_ context.Context, text string, intent domain.Intent) ([]float32, error) {
	f.intents = append(f.intents, intent)
	f.texts = append(f.texts, text)
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	return make([]float32, f.dim), nil
}

type fakeStore struct {
	schemaCalls int
	inserted    []domain.Record
	insertErr   error
	results     []domain.SearchResult
	searchErr   error
	queries     [][]float32
	topKs       []int
}

func (f *fakeStore) EnsureSchema(context.Context) error {
	f.schemaCalls++
	return nil
}

func (f *fakeStore) InsertBatch(_ context.Context, records []domain.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, vector)
	f.topKs = append(f.topKs, topK)
	return f.results, f.searchErr
}

func (f *fakeStore) Close() {}

func newIndexer(emb *fakeEmbedder, store *fakeStore) *Indexer {
	return NewIndexer(extract.New(), chunker.New(3), emb, store, zap.NewNop())
}

func TestIndexTextHappyPath(t *testing.T) {
	emb := &fakeEmbedder{dim: 4}
	store := &fakeStore{}
	ix := newIndexer(emb, store)

	report, err := ix.IndexText(context.Background(), "doc.txt",
		"One. Two.\nThree. Four. Five.")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	require.Len(t, store.inserted, 2)
	assert.Equal(t, "One. Two. Three.", store.inserted[0].Text)
	assert.Equal(t, "Four. Five.", store.inserted[1].Text)
	assert.Equal(t, "doc.txt", store.inserted[0].Filename)
	assert.Equal(t, "sentence_split_simple", store.inserted[0].Strategy)
	assert.Len(t, store.inserted[0].Embedding, 4)

	for _, intent := range emb.intents {
		assert.Equal(t, domain.IntentDocument, intent)
	}
}

func TestIndexTextEmptyInputIsNotAnError(t *testing.T) {
	store := &fakeStore{}
	ix := newIndexer(&fakeEmbedder{dim: 4}, store)

	for _, text := range []string{"", "   ", "\n\t"} {
		report, err := ix.IndexText(context.Background(), "doc.txt", text)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Inserted)
	}
	assert.Empty(t, store.inserted)
}

func TestIndexTextDropsFailedChunksAndCountsThem(t *testing.T) {
	emb := &fakeEmbedder{
		dim:    4,
		failOn: map[string]error{"Four. Five.": errors.New("rate limited")},
	}
	store := &fakeStore{}
	ix := newIndexer(emb, store)

	report, err := ix.IndexText(context.Background(), "doc.txt",
		"One. Two. Three. Four. Five.")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "One. Two. Three.", store.inserted[0].Text)
}

func TestIndexTextAbortsWhenEveryChunkFails(t *testing.T) {
	emb := &fakeEmbedder{
		dim: 4,
		failOn: map[string]error{
			"One. Two. Three.": errors.New("boom"),
			"Four.":            errors.New("boom"),
		},
	}
	store := &fakeStore{}
	ix := newIndexer(emb, store)

	report, err := ix.IndexText(context.Background(), "doc.txt",
		"One. Two. Three. Four.")
	require.ErrorIs(t, err, domain.ErrNothingToIndex)
	assert.Equal(t, 2, report.Failed)
	assert.Empty(t, store.inserted)
}

func TestIndexTextPropagatesInsertFailure(t *testing.T) {
	insertErr := &domain.InsertError{Err: errors.New("connection reset")}
	store := &fakeStore{insertErr: insertErr}
	ix := newIndexer(&fakeEmbedder{dim: 4}, store)

	_, err := ix.IndexText(context.Background(), "doc.txt", "One. Two. Three.")
	var ierr *domain.InsertError
	require.ErrorAs(t, err, &ierr)
}

func TestIndexFileEnsuresSchemaAndExtracts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha. Beta. Gamma."), 0o644))

	store := &fakeStore{}
	ix := newIndexer(&fakeEmbedder{dim: 4}, store)

	report, err := ix.IndexFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, store.schemaCalls)
	assert.Equal(t, "notes.txt", report.Filename)
	assert.Equal(t, 1, report.Inserted)
}

func TestIndexFileSurfacesExtractionFailure(t *testing.T) {
	store := &fakeStore{}
	ix := newIndexer(&fakeEmbedder{dim: 4}, store)

	_, err := ix.IndexFile(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	var xerr *domain.ExtractError
	require.ErrorAs(t, err, &xerr)
	assert.Empty(t, store.inserted)
}

func TestNormalizeCollapsesNewlines(t *testing.T) {
	assert.Equal(t, "a b c", normalize(" a\nb c \n"))
	assert.Equal(t, "x y", normalize("x\ry"))
	assert.Equal(t, "", normalize("\n \r\n"))
}
