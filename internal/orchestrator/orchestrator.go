package orchestrator

import (
	"sort"
	"time"

	"github.com/nidhogg/teamlens/internal/layer"
	"github.com/nidhogg/teamlens/internal/stats"
	"go.uber.org/zap"
)

// LayerReader is the read surface the orchestrator needs from a layer
// store. A reader that errors on Snapshot is treated as unavailable and
// degrades the bundle instead of failing assembly.
type LayerReader interface {
	Type() layer.Type
	Snapshot() ([]layer.Entry, error)
	Version() uint64
}

// Orchestrator assembles budget-respecting context bundles from the layer
// stores. It is stateless apart from the bundle cache and safe for
// concurrent use across independent queries.
type Orchestrator struct {
	layers []LayerReader
	scorer Scorer
	cache  *bundleCache
	logger *zap.Logger
	now    func() time.Time
}

// New creates an orchestrator over the given layers. A nil scorer selects
// the keyword default.
func New(layers []LayerReader, scorer Scorer, cacheSize int, logger *zap.Logger) *Orchestrator {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	return &Orchestrator{
		layers: layers,
		scorer: scorer,
		cache:  newBundleCache(cacheSize),
		logger: logger,
		now:    time.Now,
	}
}

// candidate is a scored entry awaiting budget selection.
type candidate struct {
	entry    layer.Entry
	score    float64 // raw relevance
	weighted float64 // relevance after layer weighting
	size     int
}

// Assemble merges all layers into one bundle under the budget. Entries are
// ranked by priority, then weighted relevance, then recency, then ID, and
// included greedily until the next entry would exceed the byte cap. The
// result is always usable: unavailable layers and truncation only mark it
// degraded.
func (o *Orchestrator) Assemble(query string, budget Budget) Bundle {
	start := o.now()

	if err := budget.Validate(); err != nil {
		o.logger.Warn("invalid budget, using default", zap.Error(err))
		max := budget.MaxTotalBytes
		budget = DefaultBudget()
		if max > 0 {
			budget.MaxTotalBytes = max
		}
	}

	versions := make([]uint64, len(o.layers))
	for i, l := range o.layers {
		versions[i] = l.Version()
	}
	cacheKey := o.cache.key(query, budget, versions)
	if b, ok := o.cache.get(cacheKey); ok {
		o.logger.Debug("bundle served from cache", zap.String("key", cacheKey))
		return b
	}

	numLayers := float64(len(o.layers))
	coverage := map[layer.Type]float64{}
	candidateCounts := map[layer.Type]int{}
	degraded := false

	var candidates []candidate
	for _, l := range o.layers {
		entries, err := l.Snapshot()
		if err != nil {
			o.logger.Warn("layer unavailable, continuing without it",
				zap.String("layer", string(l.Type())), zap.Error(err))
			coverage[l.Type()] = 0
			degraded = true
			continue
		}
		weight := budget.PerLayerWeight[l.Type()]
		scores := o.scorer.Score(query, entries)
		for i, e := range entries {
			candidates = append(candidates, candidate{
				entry:    e,
				score:    scores[i],
				weighted: scores[i] * weight * numLayers,
				size:     layer.Size(e),
			})
		}
		candidateCounts[l.Type()] = len(entries)
	}

	// Deterministic total order: priority, weighted relevance, recency, ID.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.entry.Priority != b.entry.Priority {
			return a.entry.Priority > b.entry.Priority
		}
		if a.weighted != b.weighted {
			return a.weighted > b.weighted
		}
		if !a.entry.Timestamp.Equal(b.entry.Timestamp) {
			return a.entry.Timestamp.After(b.entry.Timestamp)
		}
		return a.entry.ID < b.entry.ID
	})

	var (
		included   []ScoredEntry
		totalBytes int
		includedBy = map[layer.Type]int{}
		relevances []float64
	)
	for _, c := range candidates {
		if totalBytes+c.size > budget.MaxTotalBytes {
			// Hard stop, no partial entries. Anything left over is truncation.
			degraded = true
			break
		}
		included = append(included, ScoredEntry{Entry: c.entry, Relevance: c.score})
		totalBytes += c.size
		includedBy[c.entry.Layer]++
		relevances = append(relevances, c.score)
	}

	if len(included) == 0 {
		b := fallbackBundle(start)
		o.cache.put(cacheKey, b)
		o.logger.Info("assembled fallback bundle", zap.String("query", query))
		return b
	}

	for t, n := range candidateCounts {
		if n == 0 {
			coverage[t] = 1 // nothing to cover
			continue
		}
		coverage[t] = float64(includedBy[t]) / float64(n)
	}

	bundle := Bundle{
		Entries:        included,
		TotalSizeBytes: totalBytes,
		RelevanceScore: stats.Mean(relevances),
		CoherenceScore: 1 / (1 + stats.StdDev(relevances)),
		LayerCoverage:  coverage,
		Degraded:       degraded,
		AssembledAt:    start,
		Elapsed:        o.now().Sub(start),
	}
	o.cache.put(cacheKey, bundle)

	o.logger.Debug("context assembled",
		zap.String("query", query),
		zap.Int("entries", len(included)),
		zap.Int("bytes", totalBytes),
		zap.Bool("degraded", degraded),
		zap.Duration("elapsed", bundle.Elapsed))
	return bundle
}
