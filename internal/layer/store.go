package layer

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is a bounded append log of entries for one layer. Writes are
// serialized per store; reads copy a snapshot under a brief read lock and
// operate lock-free afterwards.
type Store struct {
	layerType Type
	retention Retention
	logger    *zap.Logger

	mu      sync.RWMutex
	entries []Entry
	sizes   []int // serialized byte size per entry, parallel to entries
	byID    map[string]struct{}
	total   int    // running sum of sizes
	version uint64 // bumped on every Add/Prune/Restore
}

// NewStore creates a store for the given layer type. A zero retention
// falls back to the layer default.
func NewStore(t Type, retention Retention, logger *zap.Logger) *Store {
	if retention.MaxAgeDays == 0 && retention.MaxEntries == 0 {
		retention = DefaultRetention(t)
	}
	return &Store{
		layerType: t,
		retention: retention,
		logger:    logger,
		byID:      map[string]struct{}{},
	}
}

// Type returns the layer this store holds.
func (s *Store) Type() Type { return s.layerType }

// Add appends an entry. The ID is generated when empty. An entry with a
// duplicate ID returns ErrDuplicateEntry; a zero timestamp or one older
// than the newest stored entry returns ErrInvalidTimestamp. The store is
// unaffected by a rejected write.
func (s *Store) Add(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Layer = s.layerType
	if e.Priority == 0 {
		e.Priority = PriorityNormal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if n := len(s.entries); n > 0 && e.Timestamp.Before(s.entries[n-1].Timestamp) {
		return ErrInvalidTimestamp
	}
	if _, ok := s.byID[e.ID]; ok {
		return ErrDuplicateEntry
	}

	size := Size(e)
	s.entries = append(s.entries, e)
	s.sizes = append(s.sizes, size)
	s.byID[e.ID] = struct{}{}
	s.total += size
	s.version++

	s.logger.Debug("entry added",
		zap.String("layer", string(s.layerType)),
		zap.String("id", e.ID),
		zap.String("priority", e.Priority.String()),
		zap.Int("bytes", size))
	return nil
}

// Recent returns the last n entries in insertion order, newest last.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[id]; !ok {
		return Entry{}, false
	}
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Snapshot returns a copy of all entries in insertion order. It is the
// read surface used by the orchestrator and by persistence handoff.
func (s *Store) Snapshot() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Restore replaces the store contents from a persisted snapshot. Entries
// are re-sorted by timestamp so the insertion invariant holds afterwards.
func (s *Store) Restore(entries []Entry) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	s.sizes = s.sizes[:0]
	s.byID = make(map[string]struct{}, len(sorted))
	s.total = 0
	for _, e := range sorted {
		if _, ok := s.byID[e.ID]; ok {
			continue
		}
		e.Layer = s.layerType
		size := Size(e)
		s.entries = append(s.entries, e)
		s.sizes = append(s.sizes, size)
		s.byID[e.ID] = struct{}{}
		s.total += size
	}
	s.version++

	s.logger.Info("layer restored",
		zap.String("layer", string(s.layerType)),
		zap.Int("entries", len(s.entries)))
}

// Prune evicts entries older than the retention age and then trims
// oldest-first down to the capacity bound. It never fails; the count of
// evicted entries is returned.
func (s *Store) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	if s.retention.MaxAgeDays > 0 {
		for len(s.entries) > 0 {
			e := s.entries[0]
			ttl := s.retention.MaxAgeDays
			if e.TTLDays > 0 {
				ttl = e.TTLDays
			}
			if now.Sub(e.Timestamp) <= time.Duration(ttl)*24*time.Hour {
				break
			}
			s.dropOldestLocked()
			evicted++
		}
	}
	if s.retention.MaxEntries > 0 {
		for len(s.entries) > s.retention.MaxEntries {
			s.dropOldestLocked()
			evicted++
		}
	}
	if evicted > 0 {
		s.version++
		s.logger.Debug("layer pruned",
			zap.String("layer", string(s.layerType)),
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(s.entries)))
	}
	return evicted
}

func (s *Store) dropOldestLocked() {
	e := s.entries[0]
	s.total -= s.sizes[0]
	s.entries = s.entries[1:]
	s.sizes = s.sizes[1:]
	delete(s.byID, e.ID)
}

// MemoryUsage returns the byte-approximate size of the store, the sum of
// serialized entry sizes. The orchestrator uses it for budget accounting.
func (s *Store) MemoryUsage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Version returns the store version counter. It increments on every
// mutation and keys cache invalidation in the orchestrator.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Size approximates the serialized footprint of an entry. The store and
// the orchestrator's budget accounting share this estimate.
func Size(e Entry) int {
	data, err := json.Marshal(e)
	if err != nil {
		return len(e.ID) + len(e.Content)
	}
	return len(data)
}
