package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nidhogg/teamlens"
	"github.com/nidhogg/teamlens/internal/config"
	"github.com/nidhogg/teamlens/internal/embedding"
	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/orchestrator"
	"github.com/nidhogg/teamlens/internal/persist"
	"github.com/nidhogg/teamlens/internal/vectorindex"
	"go.uber.org/zap"
)

// maintenanceInterval drives the periodic prune/persist/export loop.
const maintenanceInterval = 5 * time.Minute

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting teamlens...")

	// Load configuration: JSON file when CONFIG_PATH is set, else .env/env.
	var cfg config.Config
	if cfgPath := os.Getenv("CONFIG_PATH"); cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
		}
		cfg = loaded
		logger.Info("Config loaded", zap.String("path", cfgPath))
	} else {
		cfg = config.FromEnv()
	}

	var opts []teamlens.Option

	// Snapshot store: Postgres when a DSN is configured, else SQLite when a
	// path is configured. Both optional; the core runs fully in memory.
	var snapshots persist.SnapshotStore
	if cfg.Backends.PostgresDSN != "" {
		ps, err := persist.NewPostgresStore(context.Background(), cfg.Backends.PostgresDSN, logger)
		if err != nil {
			logger.Warn("PostgreSQL unavailable, running without persistence", zap.Error(err))
		} else {
			snapshots = ps
		}
	} else if cfg.Backends.SQLitePath != "" {
		ss, err := persist.NewSQLiteStore(cfg.Backends.SQLitePath, logger)
		if err != nil {
			logger.Warn("SQLite unavailable, running without persistence", zap.Error(err))
		} else {
			snapshots = ss
		}
	}
	if snapshots != nil {
		opts = append(opts, teamlens.WithSnapshotStore(snapshots))
	}

	// Alert stream sink.
	if cfg.Backends.RedisURL != "" {
		sink, err := event.NewStreamSink(cfg.Backends.RedisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, alerts stay log-only", zap.Error(err))
		} else {
			defer sink.Close()
			opts = append(opts, teamlens.WithAlertSink(sink))
		}
	}

	// Collaboration graph exporter.
	var graph *persist.GraphStore
	if cfg.Backends.Neo4j.URI != "" {
		g, err := persist.NewGraphStore(
			cfg.Backends.Neo4j.URI, cfg.Backends.Neo4j.User, cfg.Backends.Neo4j.Password, logger)
		if err != nil {
			logger.Warn("Neo4j unavailable, running without graph export", zap.Error(err))
		} else {
			graph = g
			opts = append(opts, teamlens.WithGraphStore(g))
		}
	}

	// Semantic scoring: needs both an embedding provider and Qdrant.
	if cfg.Embedding.Provider != "" {
		provider, err := embedding.NewProvider(embedding.Config{
			Provider:  cfg.Embedding.Provider,
			Endpoint:  cfg.Embedding.Endpoint,
			Model:     cfg.Embedding.Model,
			APIKey:    cfg.Embedding.APIKey,
			Dimension: cfg.Embedding.Dimension,
		})
		if err != nil {
			logger.Warn("embedding provider misconfigured, keyword scoring only", zap.Error(err))
		} else {
			opts = append(opts, teamlens.WithScorer(orchestrator.NewEmbeddingScorer(provider, logger)))

			if cfg.Backends.Qdrant.Host != "" {
				index, qErr := vectorindex.New(vectorindex.Config{
					Host: cfg.Backends.Qdrant.Host,
					Port: cfg.Backends.Qdrant.Port,
				})
				if qErr != nil {
					logger.Warn("Qdrant unavailable, running without vector index", zap.Error(qErr))
				} else {
					ensureCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					if eErr := index.EnsureCollections(ensureCtx, uint64(provider.Dimension())); eErr != nil {
						logger.Warn("Qdrant collections not ready", zap.Error(eErr))
					}
					cancel()
					opts = append(opts, teamlens.WithVectorIndex(index, provider))
				}
			}
		}
	}

	core := teamlens.New(cfg, logger, opts...)

	if snapshots != nil {
		if err := core.RestoreAll(context.Background()); err != nil {
			logger.Warn("layer restore failed, starting empty", zap.Error(err))
		}
	}

	// Maintenance loop: retention pruning plus periodic persistence.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case now := <-ticker.C:
				if evicted := core.PruneAll(now); evicted > 0 {
					logger.Info("retention applied", zap.Int("evicted", evicted))
				}
				if snapshots != nil {
					if err := core.PersistAll(loopCtx); err != nil {
						logger.Warn("periodic persistence failed", zap.Error(err))
					}
				}
			}
		}
	}()

	logger.Info("teamlens running",
		zap.Bool("persistence", snapshots != nil),
		zap.Bool("graph_export", graph != nil))

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down teamlens...")
	stopLoop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if snapshots != nil {
		if err := core.PersistAll(shutdownCtx); err != nil {
			logger.Warn("final persistence failed", zap.Error(err))
		}
	}
	core.Close(shutdownCtx)
}
