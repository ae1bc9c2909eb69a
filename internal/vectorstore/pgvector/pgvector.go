// Package pgvector persists embedded chunks in Postgres and delegates
// similarity ranking to the pgvector cosine operator, so distance is
// computed by the index rather than in the client.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"docsearch/internal/domain"
)

type Storage struct {
	pool      *pgxpool.Pool
	dimension int
}

type Config struct {
	URL       string
	Dimension int
}

// Connect opens a connection pool and verifies the database is reachable.
// Connection establishment failures are reported as ConnectError so callers
// can tell them apart from insert and query failures.
func Connect(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.URL == "" {
		return nil, &domain.ConfigError{Setting: "postgres connection url"}
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, &domain.ConnectError{Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &domain.ConnectError{Err: err}
	}
	return &Storage{pool: pool, dimension: cfg.Dimension}, nil
}

// EnsureSchema creates the vector extension, the documents table and the
// cosine ivfflat index. Every statement is idempotent, so it is safe to run
// on each startup.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			chunk_text TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			split_strategy VARCHAR(50),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_embedding
			ON documents
			USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup: %w", err)
		}
	}
	return nil
}

// InsertBatch writes all records in a single multi-row statement. The
// statement is atomic: either every record is committed or none is.
func (s *Storage) InsertBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	stmt, args, err := buildInsert(records, s.dimension)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, stmt, args...); err != nil {
		return &domain.InsertError{Err: err}
	}
	return nil
}

// buildInsert assembles one multi-row INSERT for the whole batch, four
// placeholders per record. Vectors are validated against the schema
// dimension before anything reaches the database.
func buildInsert(records []domain.Record, dimension int) (string, []any, error) {
	var (
		sb   strings.Builder
		args = make([]any, 0, len(records)*4)
	)
	sb.WriteString("INSERT INTO documents (filename, chunk_text, embedding, split_strategy) VALUES ")
	for i, r := range records {
		if len(r.Embedding) != dimension {
			return "", nil, &domain.InsertError{
				Err: fmt.Errorf("record %d: vector dimension %d does not match schema dimension %d",
					i, len(r.Embedding), dimension),
			}
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d::vector, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, r.Filename, r.Text, pgv.NewVector(r.Embedding), r.Strategy)
	}
	return sb.String(), args, nil
}

// Search returns up to topK stored chunks ordered by ascending cosine
// distance to vector, with similarity reported as 1 - distance.
func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match schema dimension %d",
			len(vector), s.dimension)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT filename, chunk_text, 1 - (embedding <=> $1::vector) AS similarity
		FROM documents
		ORDER BY embedding <=> $1::vector
		LIMIT $2`,
		pgv.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.Filename, &r.ChunkText, &r.Score); err != nil {
			return nil, fmt.Errorf("similarity query: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	return results, nil
}

func (s *Storage) Close() { s.pool.Close() }
