// Package embedding turns query text into fixed-dimension vectors using an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jurisearch/jurisearch/engine/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Config configures the embedding client. Dims is forwarded to the API so
// the returned vector matches the index collection exactly.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Dims    int
	// RPS caps requests per second against the provider. Zero disables
	// the limiter.
	RPS   float64
	Burst int
}

// Client calls the /v1/embeddings endpoint of an OpenAI-compatible API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates an embedding client with an instrumented transport.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		limiter: limiter,
	}
}

type embedRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Embed generates one embedding for the given text. One round-trip, no
// retries; any failure wraps domain.ErrEmbedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding: rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(embedRequest{
		Model:      c.cfg.Model,
		Input:      text,
		Dimensions: c.cfg.Dims,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w: %w", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w: %w", domain.ErrEmbedding, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding: status %d: %s: %w", resp.StatusCode, apiMessage(raw), domain.ErrEmbedding)
	}

	var result embedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w: %w", domain.ErrEmbedding, err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding: api error: %s: %w", result.Error.Message, domain.ErrEmbedding)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embedding: response carries no vector: %w", domain.ErrEmbedding)
	}

	vec := result.Data[0].Embedding
	if c.cfg.Dims > 0 && len(vec) != c.cfg.Dims {
		return nil, fmt.Errorf("embedding: got %d dims, want %d: %w", len(vec), c.cfg.Dims, domain.ErrEmbedding)
	}
	return vec, nil
}

// apiMessage pulls the error message out of an API error body, falling back
// to a bounded body preview.
func apiMessage(raw []byte) string {
	var result embedResponse
	if err := json.Unmarshal(raw, &result); err == nil && result.Error != nil {
		return result.Error.Message
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
