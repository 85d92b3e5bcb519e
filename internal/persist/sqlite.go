package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nidhogg/teamlens/internal/layer"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS context_entries (
	layer     TEXT    NOT NULL,
	id        TEXT    NOT NULL,
	ts        INTEGER NOT NULL,
	content   TEXT    NOT NULL,
	priority  INTEGER NOT NULL,
	ttl_days  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (layer, id)
);
CREATE INDEX IF NOT EXISTS idx_context_entries_layer_ts
	ON context_entries (layer, ts);
`

// SQLiteStore is the zero-server default snapshot backend.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database file and ensures the
// snapshot schema.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	logger.Info("sqlite snapshot store ready", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveEntries replaces the persisted snapshot for one layer.
func (s *SQLiteStore) SaveEntries(ctx context.Context, t layer.Type, entries []layer.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM context_entries WHERE layer = ?`, string(t)); err != nil {
		return fmt.Errorf("clear layer %s: %w", t, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO context_entries (layer, id, ts, content, priority, ttl_days)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			string(t), e.ID, e.Timestamp.UnixNano(), e.Content, int(e.Priority), e.TTLDays)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug("layer snapshot saved",
		zap.String("layer", string(t)), zap.Int("entries", len(entries)))
	return nil
}

// LoadEntries reads one layer's persisted snapshot, oldest first.
func (s *SQLiteStore) LoadEntries(ctx context.Context, t layer.Type) ([]layer.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, content, priority, ttl_days
		 FROM context_entries WHERE layer = ? ORDER BY ts`, string(t))
	if err != nil {
		return nil, fmt.Errorf("load layer %s: %w", t, err)
	}
	defer rows.Close()

	var entries []layer.Entry
	for rows.Next() {
		var (
			e        layer.Entry
			ts       int64
			priority int
		)
		if err := rows.Scan(&e.ID, &ts, &e.Content, &priority, &e.TTLDays); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Layer = t
		e.Timestamp = time.Unix(0, ts)
		e.Priority = layer.Priority(priority)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close shuts down the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
