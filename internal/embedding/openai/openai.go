// Package openai adapts the OpenAI embeddings API to the Embedder
// interface. The API has no task-type hint, so the intent parameter is
// accepted for interface compatibility and otherwise unused.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"docsearch/internal/domain"
)

type Client struct {
	client *goopenai.Client
	model  string
	dim    int
}

type Config struct {
	APIKey string
	Model  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigError{Setting: "openai api key"}
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	dim := 1536
	if cfg.Model == "text-embedding-3-large" {
		dim = 3072
	}
	return &Client{
		client: goopenai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		dim:    dim,
	}, nil
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Dimension() int { return c.dim }

func (c *Client) Embed(ctx context.Context, text string, _ domain.Intent) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: fmt.Errorf("no embedding data returned")}
	}
	return resp.Data[0].Embedding, nil
}
