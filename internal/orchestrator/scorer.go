package orchestrator

import (
	"math"
	"strings"

	"github.com/nidhogg/teamlens/internal/layer"
)

// Scorer computes query relevance for a batch of candidate entries.
// Implementations must be stateless with respect to layer contents so that
// assembly stays deterministic for unchanged state.
type Scorer interface {
	Score(query string, entries []layer.Entry) []float64
}

// KeywordScorer is the default heuristic scorer: keyword overlap between
// the query and entry content, blending a Jaccard-style overlap ratio with
// keyword coverage.
type KeywordScorer struct{}

// Score implements Scorer.
func (KeywordScorer) Score(query string, entries []layer.Entry) []float64 {
	keywords := tokenize(query)
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = keywordSimilarity(keywords, e.Content)
	}
	return out
}

// keywordSimilarity computes overlap between keywords and entry text.
// Exact token matches count full weight, substring matches partial.
func keywordSimilarity(keywords []string, content string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	target := strings.ToLower(content)
	targetWords := tokenize(target)
	targetSet := make(map[string]bool, len(targetWords))
	for _, w := range targetWords {
		targetSet[w] = true
	}

	var matched int
	var weightedScore float64
	for _, kw := range keywords {
		if targetSet[kw] {
			matched++
			weightedScore += 1.0
		} else if strings.Contains(target, kw) {
			matched++
			weightedScore += 0.7 // partial substring match
		}
	}

	if matched == 0 {
		return 0
	}

	// Jaccard-inspired: overlap / union
	overlap := float64(matched)
	union := float64(len(keywords) + len(targetSet) - matched)
	jaccard := overlap / math.Max(union, 1)

	// Coverage: what fraction of query keywords matched
	coverage := weightedScore / float64(len(keywords))

	return 0.4*jaccard + 0.6*coverage
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_' || r == '-' ||
			r > 127) // keep unicode chars
	})
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToLower(f)
		if len(w) > 1 { // skip single chars
			result = append(result, w)
		}
	}
	return result
}
