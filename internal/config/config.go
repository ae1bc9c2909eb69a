package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeminiConfig configures the Gemini embeddings client. The API key is
// read from the environment variable named by APIKeyEnv.
type GeminiConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIConfig configures the OpenAI embeddings client.
type OpenAIConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	SentencesPerChunk int `yaml:"sentences_per_chunk"`
}

// PgvectorConfig holds the Postgres store settings. The connection URL is
// read from the environment variable named by URLEnv. Dimension must match
// the width of vectors the configured embedder produces.
type PgvectorConfig struct {
	URLEnv    string `yaml:"url_env"`
	Dimension int    `yaml:"dimension"`
}

// ChromemConfig holds the embedded store settings.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type     string          `yaml:"type"`
	Pgvector *PgvectorConfig `yaml:"pgvector,omitempty"`
	Chromem  *ChromemConfig  `yaml:"chromem,omitempty"`
}

// SearchConfig configures retrieval defaults.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Store    StoreConfig    `yaml:"store"`
	Search   SearchConfig   `yaml:"search"`
}

// Load reads the config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{Type: "gemini"},
		Store:    StoreConfig{Type: "pgvector"},
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 3
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 5
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		if cfg.Embedder.Gemini.APIKeyEnv == "" {
			cfg.Embedder.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "embedding-001"
		}
		if cfg.Embedder.Gemini.TimeoutSecs == 0 {
			cfg.Embedder.Gemini.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "pgvector"
	}
	if cfg.Store.Type == "pgvector" {
		if cfg.Store.Pgvector == nil {
			cfg.Store.Pgvector = &PgvectorConfig{}
		}
		if cfg.Store.Pgvector.URLEnv == "" {
			cfg.Store.Pgvector.URLEnv = "POSTGRES_URL"
		}
		if cfg.Store.Pgvector.Dimension == 0 {
			cfg.Store.Pgvector.Dimension = 768
		}
	}
	if cfg.Store.Type == "chromem" {
		if cfg.Store.Chromem == nil {
			cfg.Store.Chromem = &ChromemConfig{}
		}
		if cfg.Store.Chromem.Collection == "" {
			cfg.Store.Chromem.Collection = "documents"
		}
		if cfg.Store.Chromem.Dimension == 0 {
			cfg.Store.Chromem.Dimension = 768
		}
	}
}
