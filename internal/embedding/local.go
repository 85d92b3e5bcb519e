package embedding

import "context"

// LocalProvider implements Provider using an Ollama-compatible embeddings
// API, one request per text.
type LocalProvider struct {
	endpoint string
	model    string
	dim      dimensionCache
}

// NewLocalProvider creates a new LocalProvider from the given Config.
func NewLocalProvider(cfg Config) *LocalProvider {
	return &LocalProvider{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		dim:      dimensionCache{fallback: cfg.Dimension},
	}
}

type localRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type localResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed sends each text to the Ollama-compatible endpoint.
func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		var result localResponse
		err := postJSON(ctx, p.endpoint+"/api/embeddings", "",
			localRequest{Model: p.model, Prompt: text}, &result)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, result.Embedding)
	}
	p.dim.record(embeddings)
	return embeddings, nil
}

// Dimension returns the embedding vector dimension, preferring the
// dimension observed in the first result over the configured default.
func (p *LocalProvider) Dimension() int {
	return p.dim.value()
}
