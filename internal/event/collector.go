package event

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Collector keeps a rolling window of validated events per team.
type Collector struct {
	retentionDays int
	clockSkew     time.Duration
	logger        *zap.Logger

	mu     sync.RWMutex
	events map[string][]TeamEvent // per team, ascending by timestamp
}

// NewCollector creates a collector retaining events for retentionDays
// (<= 0 means 90 days). A small clock skew is tolerated on ingestion.
func NewCollector(retentionDays int, logger *zap.Logger) *Collector {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Collector{
		retentionDays: retentionDays,
		clockSkew:     2 * time.Minute,
		logger:        logger,
		events:        map[string][]TeamEvent{},
	}
}

// Ingest validates and stores one event. A rejected event returns
// ErrMalformedEvent with the reason attached; other events are unaffected.
func (c *Collector) Ingest(ev TeamEvent) error {
	now := time.Now()
	switch {
	case ev.TeamID == "":
		return fmt.Errorf("%w: missing team id", ErrMalformedEvent)
	case len(ev.Participants) == 0:
		return fmt.Errorf("%w: no participants", ErrMalformedEvent)
	case ev.Timestamp.IsZero():
		return fmt.Errorf("%w: zero timestamp", ErrMalformedEvent)
	case ev.Timestamp.After(now.Add(c.clockSkew)):
		return fmt.Errorf("%w: timestamp in the future", ErrMalformedEvent)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.events[ev.TeamID]
	// Common case: events arrive in order; otherwise insert by timestamp.
	if n := len(list); n == 0 || !ev.Timestamp.Before(list[n-1].Timestamp) {
		list = append(list, ev)
	} else {
		i := sort.Search(n, func(i int) bool {
			return list[i].Timestamp.After(ev.Timestamp)
		})
		list = append(list, TeamEvent{})
		copy(list[i+1:], list[i:])
		list[i] = ev
	}
	c.events[ev.TeamID] = c.evictLocked(list, now)

	c.logger.Debug("event ingested",
		zap.String("team", ev.TeamID),
		zap.String("type", string(ev.Type)),
		zap.Int("participants", len(ev.Participants)))
	return nil
}

// IngestBatch ingests a slice of events, skipping malformed ones. It
// returns the number accepted.
func (c *Collector) IngestBatch(events []TeamEvent) int {
	accepted := 0
	for _, ev := range events {
		if err := c.Ingest(ev); err != nil {
			c.logger.Warn("event rejected", zap.String("team", ev.TeamID), zap.Error(err))
			continue
		}
		accepted++
	}
	return accepted
}

// Window returns events for the team within [now - days, now], ordered by
// timestamp ascending.
func (c *Collector) Window(teamID string, days int) []TeamEvent {
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.events[teamID]
	i := sort.Search(len(list), func(i int) bool {
		return !list[i].Timestamp.Before(cutoff)
	})
	out := make([]TeamEvent, len(list)-i)
	copy(out, list[i:])
	return out
}

// Teams returns all team IDs with at least one retained event.
func (c *Collector) Teams() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.events))
	for id := range c.events {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// evictLocked drops events past the retention window.
func (c *Collector) evictLocked(list []TeamEvent, now time.Time) []TeamEvent {
	cutoff := now.Add(-time.Duration(c.retentionDays) * 24 * time.Hour)
	i := sort.Search(len(list), func(i int) bool {
		return !list[i].Timestamp.Before(cutoff)
	})
	if i == 0 {
		return list
	}
	return append(list[:0:0], list[i:]...)
}
