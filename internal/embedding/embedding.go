// Package embedding provides vector-embedding providers for the optional
// semantic relevance upgrade. The core never requires a provider; keyword
// scoring works without one.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Provider generates vector embeddings from text.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Config holds embedding provider configuration.
type Config struct {
	Provider  string `json:"provider"` // "api" or "local"
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

// NewProvider selects a provider from config.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "api":
		return NewAPIProvider(cfg), nil
	case "local":
		return NewLocalProvider(cfg), nil
	}
	return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
}

// dimensionCache remembers the vector dimension of the first result.
type dimensionCache struct {
	fallback int
	once     sync.Once
	observed int
}

func (d *dimensionCache) record(vecs [][]float32) {
	if len(vecs) > 0 && len(vecs[0]) > 0 {
		d.once.Do(func() { d.observed = len(vecs[0]) })
	}
}

func (d *dimensionCache) value() int {
	if d.observed > 0 {
		return d.observed
	}
	return d.fallback
}

// postJSON posts a JSON payload and decodes a JSON response body.
func postJSON(ctx context.Context, url, apiKey string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("embedding: API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("embedding: decode response: %w", err)
	}
	return nil
}
