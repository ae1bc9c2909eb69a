package domain

import "context"

// Chunk is a bounded span of source text prepared for independent embedding.
type Chunk struct {
	Filename string
	Text     string
	Strategy string
}

// Record is a chunk paired with its embedding vector, ready for persistence.
type Record struct {
	Chunk
	Embedding []float32
}

// SearchResult pairs a stored chunk with its similarity to the query.
// Score is 1 - cosine_distance: 1 means identical direction, 0 orthogonal.
type SearchResult struct {
	Filename  string
	ChunkText string
	Score     float64
}

// Intent tells the embedding provider whether the text is document content
// being indexed or a retrieval query. Providers may compute different
// vectors for the two cases.
type Intent string

const (
	IntentDocument Intent = "document"
	IntentQuery    Intent = "query"
)

// Embedder converts free text into a fixed-dimension numeric vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string, intent Intent) ([]float32, error)
}

// Chunker splits extracted document text into chunk strings.
type Chunker interface {
	Strategy() string
	Chunk(text string) []string
}

// TextExtractor pulls plain text out of a document file on disk.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Storage persists embedded chunks and answers similarity queries.
// Search returns up to topK results ordered by descending similarity.
type Storage interface {
	EnsureSchema(ctx context.Context) error
	InsertBatch(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Close()
}
