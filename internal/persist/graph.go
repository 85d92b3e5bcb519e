package persist

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/nidhogg/teamlens/internal/event"
	"go.uber.org/zap"
)

// GraphStore exports the participant co-occurrence graph to Neo4j so
// reporting front-ends can query collaboration structure. It is a
// write-side boundary; nothing in the core reads it back for scoring.
type GraphStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewGraphStore creates a Neo4j-backed graph exporter.
func NewGraphStore(uri, user, password string, logger *zap.Logger) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &GraphStore{driver: driver, logger: logger}, nil
}

// Ping verifies the Neo4j connection.
func (g *GraphStore) Ping(ctx context.Context) error {
	return g.driver.VerifyConnectivity(ctx)
}

// ExportEvents merges each event's participant pairs into the graph,
// incrementing the interaction count on every co-occurrence.
func (g *GraphStore) ExportEvents(ctx context.Context, events []event.TeamEvent) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, ev := range events {
		for i := 0; i < len(ev.Participants); i++ {
			for j := i + 1; j < len(ev.Participants); j++ {
				a, b := ev.Participants[i], ev.Participants[j]
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				_, err := session.Run(ctx,
					`MERGE (x:Member {id: $a, team_id: $team})
					 MERGE (y:Member {id: $b, team_id: $team})
					 MERGE (x)-[r:COLLABORATED_WITH]->(y)
					 ON CREATE SET r.interactions = 1, r.last_seen = $ts
					 ON MATCH SET r.interactions = r.interactions + 1, r.last_seen = $ts`,
					map[string]interface{}{
						"a":    a,
						"b":    b,
						"team": ev.TeamID,
						"ts":   ev.Timestamp.UTC(),
					})
				if err != nil {
					return fmt.Errorf("merge pair %s-%s: %w", a, b, err)
				}
			}
		}
	}

	g.logger.Debug("collaboration graph exported", zap.Int("events", len(events)))
	return nil
}

// PairCount returns the number of distinct collaboration edges for a team.
func (g *GraphStore) PairCount(ctx context.Context, teamID string) (int, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (x:Member {team_id: $team})-[r:COLLABORATED_WITH]->(:Member {team_id: $team})
		 RETURN count(r) AS pairs`,
		map[string]interface{}{"team": teamID})
	if err != nil {
		return 0, fmt.Errorf("count pairs: %w", err)
	}
	if result.Next(ctx) {
		if v, ok := result.Record().Get("pairs"); ok {
			return int(v.(int64)), nil
		}
	}
	return 0, result.Err()
}

// Close shuts down the Neo4j driver.
func (g *GraphStore) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
