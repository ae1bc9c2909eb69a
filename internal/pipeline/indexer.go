// Package pipeline orchestrates chunking, embedding and vector
// persistence for indexing, and query embedding plus similarity search
// for retrieval. Both pipelines are synchronous; the only suspension
// points are the embedding calls and the store round trips.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docsearch/internal/domain"
)

// Indexer runs the chunk, embed, persist flow for a single document.
type Indexer struct {
	extractor domain.TextExtractor
	chunker   domain.Chunker
	embedder  domain.Embedder
	store     domain.Storage
	log       *zap.Logger
}

func NewIndexer(extractor domain.TextExtractor, chunker domain.Chunker, embedder domain.Embedder, store domain.Storage, log *zap.Logger) *Indexer {
	return &Indexer{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		log:       log,
	}
}

// IndexReport summarizes one indexing run.
type IndexReport struct {
	Filename string
	Inserted int
	// Skipped counts chunks that normalized to empty text.
	Skipped int
	// Failed counts chunks dropped because their embedding call failed.
	Failed int
}

// IndexFile extracts text from the document at path and indexes it. The
// schema is ensured first so a fresh database works on first run.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (*IndexReport, error) {
	if err := ix.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	text, err := ix.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	return ix.IndexText(ctx, filepath.Base(path), text)
}

// IndexText chunks and embeds already-extracted text and bulk-inserts the
// surviving chunks. Chunks that fail to embed are dropped and counted, not
// escalated; if every chunk fails the run aborts with ErrNothingToIndex
// and the store is left untouched. Empty input is a successful no-op.
func (ix *Indexer) IndexText(ctx context.Context, filename, text string) (*IndexReport, error) {
	report := &IndexReport{Filename: filename}
	log := ix.log.With(zap.String("filename", filename))

	if strings.TrimSpace(text) == "" {
		log.Info("extracted text is empty, nothing to index")
		return report, nil
	}

	chunks := ix.chunker.Chunk(text)
	log.Info("document chunked", zap.Int("chunks", len(chunks)))

	records := make([]domain.Record, 0, len(chunks))
	for i, chunk := range chunks {
		clean := normalize(chunk)
		if clean == "" {
			report.Skipped++
			log.Warn("skipping empty chunk", zap.Int("chunk", i+1))
			continue
		}
		vec, err := ix.embedder.Embed(ctx, clean, domain.IntentDocument)
		if err != nil {
			report.Failed++
			log.Warn("dropping chunk, embedding failed",
				zap.Int("chunk", i+1),
				zap.Error(err))
			continue
		}
		records = append(records, domain.Record{
			Chunk: domain.Chunk{
				Filename: filename,
				Text:     clean,
				Strategy: ix.chunker.Strategy(),
			},
			Embedding: vec,
		})
	}

	if len(records) == 0 {
		if report.Failed > 0 {
			return report, fmt.Errorf("%s: no chunks prepared, %d embedding failures: %w",
				filename, report.Failed, domain.ErrNothingToIndex)
		}
		log.Info("no non-empty chunks, nothing to index")
		return report, nil
	}

	if err := ix.store.InsertBatch(ctx, records); err != nil {
		return report, err
	}
	report.Inserted = len(records)
	log.Info("document indexed",
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

var newlines = strings.NewReplacer("\n", " ", "\r", " ")

// normalize collapses embedded newlines to spaces and trims the result.
func normalize(chunk string) string {
	return strings.TrimSpace(newlines.Replace(chunk))
}
