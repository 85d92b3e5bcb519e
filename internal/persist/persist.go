// Package persist provides the periodic-persistence handoff for layer
// snapshots, plus a Neo4j exporter for the collaboration graph. Nothing in
// the synchronous assembly/prediction pipeline touches these backends.
package persist

import (
	"context"

	"github.com/nidhogg/teamlens/internal/layer"
)

// SnapshotStore persists and restores per-layer entry snapshots.
type SnapshotStore interface {
	SaveEntries(ctx context.Context, t layer.Type, entries []layer.Entry) error
	LoadEntries(ctx context.Context, t layer.Type) ([]layer.Entry, error)
	Close() error
}
