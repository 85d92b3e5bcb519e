package orchestrator

import (
	"context"
	"math"
	"sync"

	"github.com/nidhogg/teamlens/internal/embedding"
	"github.com/nidhogg/teamlens/internal/layer"
	"go.uber.org/zap"
)

// EmbeddingScorer upgrades relevance scoring to vector similarity. Entry
// vectors are cached by entry ID; the keyword scorer is the fallback when
// the provider is unavailable, so assembly never fails on its account.
type EmbeddingScorer struct {
	provider embedding.Provider
	fallback KeywordScorer
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string][]float32 // entry ID -> vector
}

// NewEmbeddingScorer creates a scorer backed by the given provider.
func NewEmbeddingScorer(provider embedding.Provider, logger *zap.Logger) *EmbeddingScorer {
	return &EmbeddingScorer{
		provider: provider,
		logger:   logger,
		cache:    map[string][]float32{},
	}
}

// Score implements Scorer using cosine similarity mapped to [0, 1].
func (s *EmbeddingScorer) Score(query string, entries []layer.Entry) []float64 {
	ctx := context.Background()

	qvecs, err := s.provider.Embed(ctx, []string{query})
	if err != nil || len(qvecs) == 0 {
		s.logger.Warn("query embedding failed, falling back to keyword scoring", zap.Error(err))
		return s.fallback.Score(query, entries)
	}
	qvec := qvecs[0]

	// Embed only entries missing from the cache, in one batch.
	var missing []string
	var missingIdx []int
	s.mu.Lock()
	for i, e := range entries {
		if _, ok := s.cache[e.ID]; !ok {
			missing = append(missing, e.Content)
			missingIdx = append(missingIdx, i)
		}
	}
	s.mu.Unlock()

	if len(missing) > 0 {
		vecs, err := s.provider.Embed(ctx, missing)
		if err != nil || len(vecs) != len(missing) {
			s.logger.Warn("entry embedding failed, falling back to keyword scoring", zap.Error(err))
			return s.fallback.Score(query, entries)
		}
		s.mu.Lock()
		for i, idx := range missingIdx {
			s.cache[entries[idx].ID] = vecs[i]
		}
		s.mu.Unlock()
	}

	out := make([]float64, len(entries))
	s.mu.Lock()
	for i, e := range entries {
		out[i] = (cosine(qvec, s.cache[e.ID]) + 1) / 2
	}
	s.mu.Unlock()
	return out
}

// cosine returns the cosine similarity of two vectors, 0 for mismatched
// or zero-length input.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
