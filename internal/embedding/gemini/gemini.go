// Package gemini implements the Embedder interface against the Gemini
// embedContent REST API. The intent maps to the provider task type, which
// changes how the model normalizes vectors for indexed content versus
// retrieval queries.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docsearch/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client is a synchronous embeddings client. It performs no retries, and
// aside from recording the model's vector width on the first call it keeps
// no state between calls; failures are surfaced to the caller.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigError{Setting: "gemini api key"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "embedding-001"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

func (c *Client) Name() string { return "gemini" }

// Dimension returns the width of vectors produced by the configured model,
// recorded from the first successful embedding call. It is zero until then.
func (c *Client) Dimension() int { return c.dimension }

func taskType(intent domain.Intent) string {
	if intent == domain.IntentQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}

// Embed makes one outbound call per invocation and returns the vector for
// text, tuned by intent.
func (c *Client) Embed(ctx context.Context, text string, intent domain.Intent) ([]float32, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	body := struct {
		Model    string  `json:"model"`
		Content  content `json:"content"`
		TaskType string  `json:"taskType"`
	}{
		Model:    "models/" + c.model,
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: taskType(intent),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: apiError(resp.Status, payload)}
	}

	var out struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: err}
	}
	if len(out.Embedding.Values) == 0 {
		return nil, &domain.EmbedError{Provider: c.Name(), Err: fmt.Errorf("no embedding returned")}
	}
	// Record the model's vector width from the first successful call; later
	// calls leave it alone so the client stays stateless afterwards.
	if c.dimension == 0 {
		c.dimension = len(out.Embedding.Values)
	}
	return out.Embedding.Values, nil
}

// apiError extracts the provider's error detail from an error response body.
func apiError(status string, payload []byte) error {
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &out); err == nil && out.Error.Message != "" {
		return fmt.Errorf("%s: %s", status, out.Error.Message)
	}
	return fmt.Errorf("%s", status)
}
