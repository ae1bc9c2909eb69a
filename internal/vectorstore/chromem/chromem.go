// Package chromem runs the pipelines against an embedded chromem-go
// collection, for local use without a Postgres instance. It applies the
// same dimension invariant and similarity semantics as the pgvector
// backend.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/philippgille/chromem-go"

	"docsearch/internal/domain"
)

type Storage struct {
	db         *chromem.DB
	name       string
	dimension  int
	collection *chromem.Collection
}

type Config struct {
	// Path enables on-disk persistence; empty keeps everything in memory.
	Path       string
	Collection string
	Dimension  int
}

func Open(cfg Config) (*Storage, error) {
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, &domain.ConnectError{Err: err}
		}
		db = d
	}
	s := &Storage{db: db, name: cfg.Collection, dimension: cfg.Dimension}
	// Acquire the collection eagerly so a freshly opened store can serve
	// queries (a reopened persistent store keeps its prior records) without
	// requiring a schema call first.
	if err := s.ensureCollection(); err != nil {
		return nil, &domain.ConnectError{Err: err}
	}
	return s, nil
}

// EnsureSchema re-acquires the collection; it is idempotent and safe to
// call on every startup.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if err := s.ensureCollection(); err != nil {
		return fmt.Errorf("schema setup: %w", err)
	}
	return nil
}

// ensureCollection creates the collection if it does not exist yet.
// Vectors are always supplied by the pipelines, so the collection gets an
// embedding func that refuses to be called.
func (s *Storage) ensureCollection() error {
	c, err := s.db.GetOrCreateCollection(s.name, nil, func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embeddings are computed upstream")
	})
	if err != nil {
		return err
	}
	s.collection = c
	return nil
}

func (s *Storage) InsertBatch(ctx context.Context, records []domain.Record) error {
	if s.collection == nil {
		return &domain.InsertError{Err: errors.New("collection not initialized")}
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	ids := make([]string, len(records))
	batch := time.Now().UnixNano()
	for i, r := range records {
		if len(r.Embedding) != s.dimension {
			return &domain.InsertError{
				Err: fmt.Errorf("record %d: vector dimension %d does not match collection dimension %d",
					i, len(r.Embedding), s.dimension),
			}
		}
		ids[i] = fmt.Sprintf("%d-%d", batch, i)
		docs[i] = chromem.Document{
			ID: ids[i],
			Metadata: map[string]string{
				"filename":       r.Filename,
				"split_strategy": r.Strategy,
			},
			Embedding: r.Embedding,
			Content:   r.Text,
		}
	}
	// chromem adds documents one by one, so a mid-batch failure could leave
	// a prefix behind. Deleting the batch IDs restores the all-or-nothing
	// insert contract.
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		_ = s.collection.Delete(ctx, nil, nil, ids...)
		return &domain.InsertError{Err: err}
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if s.collection == nil {
		return nil, errors.New("collection not initialized")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match collection dimension %d",
			len(vector), s.dimension)
	}
	// chromem rejects result counts above the population size.
	if n := s.collection.Count(); topK > n {
		if n == 0 {
			return nil, nil
		}
		topK = n
	}
	found, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	results := make([]domain.SearchResult, len(found))
	for i, r := range found {
		results[i] = domain.SearchResult{
			Filename:  r.Metadata["filename"],
			ChunkText: r.Content,
			Score:     float64(r.Similarity),
		}
	}
	return results, nil
}

// Close is a no-op: persistent collections are written through on insert.
func (s *Storage) Close() {}
