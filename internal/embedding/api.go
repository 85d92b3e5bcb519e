package embedding

import "context"

// APIProvider implements Provider using an OpenAI-compatible embeddings API.
type APIProvider struct {
	endpoint string
	model    string
	apiKey   string
	dim      dimensionCache
}

// NewAPIProvider creates a new APIProvider from the given Config.
func NewAPIProvider(cfg Config) *APIProvider {
	return &APIProvider{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		dim:      dimensionCache{fallback: cfg.Dimension},
	}
}

type apiRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type apiEmbeddingData struct {
	Embedding []float32 `json:"embedding"`
}

type apiResponse struct {
	Data []apiEmbeddingData `json:"data"`
}

// Embed sends texts to the OpenAI-compatible endpoint in one batch.
func (p *APIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var result apiResponse
	err := postJSON(ctx, p.endpoint+"/embeddings", p.apiKey,
		apiRequest{Model: p.model, Input: texts}, &result)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		embeddings[i] = d.Embedding
	}
	p.dim.record(embeddings)
	return embeddings, nil
}

// Dimension returns the embedding vector dimension, preferring the
// dimension observed in the first result over the configured default.
func (p *APIProvider) Dimension() int {
	return p.dim.value()
}
