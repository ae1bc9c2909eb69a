package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Embedder.Type)
	assert.Equal(t, "GEMINI_API_KEY", cfg.Embedder.Gemini.APIKeyEnv)
	assert.Equal(t, "pgvector", cfg.Store.Type)
	assert.Equal(t, "POSTGRES_URL", cfg.Store.Pgvector.URLEnv)
	assert.Equal(t, 768, cfg.Store.Pgvector.Dimension)
	assert.Equal(t, 3, cfg.Chunker.SentencesPerChunk)
	assert.Equal(t, 5, cfg.Search.TopK)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
store:
  type: chromem
  chromem:
    path: /tmp/vectors
chunker:
  sentences_per_chunk: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "chromem", cfg.Store.Type)
	assert.Equal(t, "/tmp/vectors", cfg.Store.Chromem.Path)
	assert.Equal(t, "documents", cfg.Store.Chromem.Collection)
	assert.Equal(t, 5, cfg.Chunker.SentencesPerChunk)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [oops"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
