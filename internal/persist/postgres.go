package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nidhogg/teamlens/internal/layer"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS context_entries (
	layer     TEXT        NOT NULL,
	id        TEXT        NOT NULL,
	ts        TIMESTAMPTZ NOT NULL,
	content   TEXT        NOT NULL,
	priority  INT         NOT NULL,
	ttl_days  INT         NOT NULL DEFAULT 0,
	PRIMARY KEY (layer, id)
);
CREATE INDEX IF NOT EXISTS idx_context_entries_layer_ts
	ON context_entries (layer, ts);
`

// PostgresStore is the shared-server snapshot backend.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects with a pgx pool and ensures the snapshot schema.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}
	logger.Info("postgres snapshot store ready")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SaveEntries replaces the persisted snapshot for one layer.
func (s *PostgresStore) SaveEntries(ctx context.Context, t layer.Type, entries []layer.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM context_entries WHERE layer = $1`, string(t)); err != nil {
		return fmt.Errorf("clear layer %s: %w", t, err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO context_entries (layer, id, ts, content, priority, ttl_days)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			string(t), e.ID, e.Timestamp, e.Content, int(e.Priority), e.TTLDays)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug("layer snapshot saved",
		zap.String("layer", string(t)), zap.Int("entries", len(entries)))
	return nil
}

// LoadEntries reads one layer's persisted snapshot, oldest first.
func (s *PostgresStore) LoadEntries(ctx context.Context, t layer.Type) ([]layer.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, content, priority, ttl_days
		 FROM context_entries WHERE layer = $1 ORDER BY ts`, string(t))
	if err != nil {
		return nil, fmt.Errorf("load layer %s: %w", t, err)
	}
	defer rows.Close()

	var entries []layer.Entry
	for rows.Next() {
		var (
			e        layer.Entry
			ts       time.Time
			priority int
		)
		if err := rows.Scan(&e.ID, &ts, &e.Content, &priority, &e.TTLDays); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Layer = t
		e.Timestamp = ts
		e.Priority = layer.Priority(priority)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
