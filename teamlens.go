// Package teamlens is the strategic-memory and predictive-analytics core
// for a leadership-assistant tool: five bounded memory layers merged into
// budget-constrained context bundles, and a feature/prediction pipeline
// scoring team-collaboration health from interaction events.
//
// The package exposes a library boundary, not a wire protocol. It never
// calls a language model; outputs are structured bundles and predictions
// consumed by external chat and reporting layers.
package teamlens

import (
	"context"
	"fmt"
	"time"

	"github.com/nidhogg/teamlens/internal/config"
	"github.com/nidhogg/teamlens/internal/embedding"
	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/feature"
	"github.com/nidhogg/teamlens/internal/layer"
	"github.com/nidhogg/teamlens/internal/orchestrator"
	"github.com/nidhogg/teamlens/internal/persist"
	"github.com/nidhogg/teamlens/internal/predict"
	"github.com/nidhogg/teamlens/internal/vectorindex"
	"go.uber.org/zap"
)

// Re-exported boundary types.
type (
	Config        = config.Config
	LayerType     = layer.Type
	Priority      = layer.Priority
	ContextEntry  = layer.Entry
	TeamEvent     = event.TeamEvent
	Alert         = event.Alert
	TeamContext   = feature.TeamContext
	FeatureVector = feature.Vector
	ContextBudget = orchestrator.Budget
	ContextBundle = orchestrator.Bundle
	Evidence      = predict.Evidence
	Prediction    = predict.Prediction
)

// Layer types and priorities, re-exported for callers.
const (
	LayerConversation   = layer.Conversation
	LayerStrategic      = layer.Strategic
	LayerStakeholder    = layer.Stakeholder
	LayerLearning       = layer.Learning
	LayerOrganizational = layer.Organizational

	PriorityLow      = layer.PriorityLow
	PriorityNormal   = layer.PriorityNormal
	PriorityHigh     = layer.PriorityHigh
	PriorityCritical = layer.PriorityCritical
)

// Boundary errors.
var (
	ErrDuplicateEntry   = layer.ErrDuplicateEntry
	ErrInvalidTimestamp = layer.ErrInvalidTimestamp
	ErrMalformedEvent   = event.ErrMalformedEvent
)

// DefaultBudget returns the ~1 MiB equal-weight context budget.
func DefaultBudget() ContextBudget { return orchestrator.DefaultBudget() }

// Core wires the layer stores, event collector, extractors, orchestrator
// and prediction engine behind one handle. All methods are safe for
// concurrent use.
type Core struct {
	cfg    config.Config
	logger *zap.Logger

	layers       map[layer.Type]*layer.Store
	collector    *event.Collector
	alerts       *event.AlertEngine
	extractor    *feature.Extractor
	orchestrator *orchestrator.Orchestrator
	engine       *predict.Engine

	snapshots persist.SnapshotStore
	graph     *persist.GraphStore
	index     *vectorindex.Index
	embedder  embedding.Provider
}

// Option customizes Core construction.
type Option func(*coreOptions)

type coreOptions struct {
	scorer    orchestrator.Scorer
	sinks     []event.Sink
	snapshots persist.SnapshotStore
	graph     *persist.GraphStore
	index     *vectorindex.Index
	embedder  embedding.Provider
}

// WithScorer overrides the default keyword relevance scorer.
func WithScorer(s orchestrator.Scorer) Option {
	return func(o *coreOptions) { o.scorer = s }
}

// WithAlertSink adds an alert sink alongside the structured-log default.
func WithAlertSink(s event.Sink) Option {
	return func(o *coreOptions) { o.sinks = append(o.sinks, s) }
}

// WithSnapshotStore wires a persistence backend for PersistAll/RestoreAll.
func WithSnapshotStore(s persist.SnapshotStore) Option {
	return func(o *coreOptions) { o.snapshots = s }
}

// WithGraphStore wires the collaboration-graph exporter.
func WithGraphStore(g *persist.GraphStore) Option {
	return func(o *coreOptions) { o.graph = g }
}

// WithVectorIndex wires the optional semantic index. Entries added after
// this point are indexed best-effort; the keyword path is unaffected.
func WithVectorIndex(x *vectorindex.Index, p embedding.Provider) Option {
	return func(o *coreOptions) { o.index = x; o.embedder = p }
}

// New builds a Core from the configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}

	var o coreOptions
	for _, opt := range opts {
		opt(&o)
	}

	layers := map[layer.Type]*layer.Store{}
	readers := make([]orchestrator.LayerReader, 0, len(layer.Types()))
	for _, t := range layer.Types() {
		s := layer.NewStore(t, cfg.Retention[t], logger)
		layers[t] = s
		readers = append(readers, s)
	}

	collector := event.NewCollector(cfg.EventRetentionDays, logger)

	c := &Core{
		cfg:          cfg,
		logger:       logger,
		layers:       layers,
		collector:    collector,
		alerts:       event.NewAlertEngine(collector, cfg.Alerts, logger, o.sinks...),
		extractor:    feature.NewExtractor(cfg.Feature, logger),
		orchestrator: orchestrator.New(readers, o.scorer, cfg.BundleCacheSize, logger),
		engine:       predict.NewEngine(cfg.Prediction, logger),
		snapshots:    o.snapshots,
		graph:        o.graph,
		index:        o.index,
		embedder:     o.embedder,
	}

	logger.Info("teamlens core initialized",
		zap.Int("layers", len(layers)),
		zap.Bool("snapshots", c.snapshots != nil),
		zap.Bool("graph", c.graph != nil),
		zap.Bool("vector_index", c.index != nil))
	return c
}

// IngestEvent validates and stores one team interaction event. A malformed
// event is rejected alone; prior and later events are unaffected.
func (c *Core) IngestEvent(ev TeamEvent) error {
	return c.collector.Ingest(ev)
}

// IngestEvents ingests a batch, skipping malformed events, and returns the
// number accepted.
func (c *Core) IngestEvents(events []TeamEvent) int {
	return c.collector.IngestBatch(events)
}

// AddEntry appends a context entry to the named layer.
func (c *Core) AddEntry(t LayerType, e ContextEntry) error {
	store, ok := c.layers[t]
	if !ok {
		return fmt.Errorf("unknown layer %q", t)
	}
	if err := store.Add(e); err != nil {
		return err
	}
	c.indexEntry(e)
	return nil
}

// indexEntry pushes the entry into the semantic index when one is wired.
// Indexing failures degrade semantic retrieval only, never the write.
func (c *Core) indexEntry(e ContextEntry) {
	if c.index == nil || c.embedder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vecs, err := c.embedder.Embed(ctx, []string{e.Content})
	if err != nil || len(vecs) == 0 {
		c.logger.Warn("entry embedding failed, skipping index", zap.Error(err))
		return
	}
	if err := c.index.IndexEntry(ctx, e, vecs[0]); err != nil {
		c.logger.Warn("vector index update failed", zap.Error(err))
	}
}

// SemanticMatch is one semantic lookup hit.
type SemanticMatch struct {
	Entry ContextEntry `json:"entry"`
	Score float32      `json:"score"`
}

// SearchSimilar queries the vector index for the layer entries closest to
// the query text, best match first. It requires the vector index and
// embedding provider to be wired; the keyword assembly path never needs it.
func (c *Core) SearchSimilar(ctx context.Context, t LayerType, query string, topK int) ([]SemanticMatch, error) {
	if c.index == nil || c.embedder == nil {
		return nil, fmt.Errorf("no vector index configured")
	}
	store, ok := c.layers[t]
	if !ok {
		return nil, fmt.Errorf("unknown layer %q", t)
	}
	if topK <= 0 {
		topK = 10
	}

	vecs, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: empty result")
	}

	candidates, err := c.index.Search(ctx, t, vecs[0], uint64(topK))
	if err != nil {
		return nil, err
	}

	matches := make([]SemanticMatch, 0, len(candidates))
	for _, cand := range candidates {
		e, ok := store.Get(cand.ID)
		if !ok {
			// Indexed but since pruned from the layer.
			continue
		}
		matches = append(matches, SemanticMatch{Entry: e, Score: cand.Score})
	}
	return matches, nil
}

// AssembleContext merges all layers into one budget-respecting bundle.
// The result is always usable; partial availability only marks it degraded.
func (c *Core) AssembleContext(query string, budget ContextBudget) ContextBundle {
	return c.orchestrator.Assemble(query, budget)
}

// ExtractFeatures builds the 20-key feature vector for a team from its
// event window. windowDays <= 0 selects the configured default.
func (c *Core) ExtractFeatures(teamID string, windowDays int, teamCtx TeamContext) FeatureVector {
	if windowDays <= 0 {
		windowDays = c.cfg.Feature.WindowDays
	}
	events := c.collector.Window(teamID, windowDays)
	extractor := c.extractor
	if windowDays != c.cfg.Feature.WindowDays {
		extractor = feature.NewExtractor(feature.Config{
			WindowDays:       windowDays,
			ExpectedTeamSize: c.cfg.Feature.ExpectedTeamSize,
		}, c.logger)
	}
	return extractor.Extract(events, teamCtx)
}

// PredictCollaboration scores the vector into an outcome with confidence
// and risk flags. Small evidence sets yield low-confidence results, never
// errors.
func (c *Core) PredictCollaboration(v FeatureVector, evidence []Evidence) Prediction {
	return c.engine.Predict(v, evidence)
}

// EvaluateAlerts runs the alert rules for one team and emits any alerts to
// the configured sinks.
func (c *Core) EvaluateAlerts(ctx context.Context, teamID string) []Alert {
	return c.alerts.Evaluate(ctx, teamID)
}

// ExportSnapshot returns a serializable copy of one layer's entries.
func (c *Core) ExportSnapshot(t LayerType) ([]ContextEntry, error) {
	store, ok := c.layers[t]
	if !ok {
		return nil, fmt.Errorf("unknown layer %q", t)
	}
	return store.Snapshot()
}

// ImportSnapshot replaces one layer's contents from a persisted snapshot.
func (c *Core) ImportSnapshot(t LayerType, entries []ContextEntry) error {
	store, ok := c.layers[t]
	if !ok {
		return fmt.Errorf("unknown layer %q", t)
	}
	store.Restore(entries)
	return nil
}

// PruneAll applies retention to every layer and returns the total evicted.
func (c *Core) PruneAll(now time.Time) int {
	total := 0
	for _, s := range c.layers {
		total += s.Prune(now)
	}
	return total
}

// MemoryUsage reports the byte-approximate size per layer.
func (c *Core) MemoryUsage() map[LayerType]int {
	out := map[LayerType]int{}
	for t, s := range c.layers {
		out[t] = s.MemoryUsage()
	}
	return out
}

// PersistAll saves every layer snapshot to the wired snapshot store.
func (c *Core) PersistAll(ctx context.Context) error {
	if c.snapshots == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	for t, s := range c.layers {
		entries, err := s.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot layer %s: %w", t, err)
		}
		if err := c.snapshots.SaveEntries(ctx, t, entries); err != nil {
			return err
		}
	}
	c.logger.Info("all layers persisted")
	return nil
}

// RestoreAll loads every layer snapshot from the wired snapshot store.
func (c *Core) RestoreAll(ctx context.Context) error {
	if c.snapshots == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	for t, s := range c.layers {
		entries, err := c.snapshots.LoadEntries(ctx, t)
		if err != nil {
			return err
		}
		s.Restore(entries)
	}
	c.logger.Info("all layers restored")
	return nil
}

// ExportCollaborationGraph pushes a team's recent event window into the
// wired Neo4j graph exporter.
func (c *Core) ExportCollaborationGraph(ctx context.Context, teamID string, days int) error {
	if c.graph == nil {
		return fmt.Errorf("no graph store configured")
	}
	return c.graph.ExportEvents(ctx, c.collector.Window(teamID, days))
}

// Close releases optional backends. The in-memory core needs no teardown.
func (c *Core) Close(ctx context.Context) {
	if c.snapshots != nil {
		if err := c.snapshots.Close(); err != nil {
			c.logger.Warn("snapshot store close failed", zap.Error(err))
		}
	}
	if c.graph != nil {
		if err := c.graph.Close(ctx); err != nil {
			c.logger.Warn("graph store close failed", zap.Error(err))
		}
	}
	if c.index != nil {
		if err := c.index.Close(); err != nil {
			c.logger.Warn("vector index close failed", zap.Error(err))
		}
	}
}
