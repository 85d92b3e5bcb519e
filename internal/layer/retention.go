package layer

// Retention bounds a store by entry age and count. Zero values disable
// the corresponding bound.
type Retention struct {
	MaxAgeDays int `json:"max_age_days"`
	MaxEntries int `json:"max_entries"`
}

// DefaultRetention returns the per-layer retention defaults. Conversation
// memory is session-scoped and short; organizational memory spans years.
func DefaultRetention(t Type) Retention {
	switch t {
	case Conversation:
		return Retention{MaxAgeDays: 1, MaxEntries: 500}
	case Strategic:
		return Retention{MaxAgeDays: 180, MaxEntries: 2000}
	case Stakeholder:
		return Retention{MaxAgeDays: 365, MaxEntries: 2000}
	case Learning:
		return Retention{MaxAgeDays: 90, MaxEntries: 1000}
	case Organizational:
		return Retention{MaxAgeDays: 730, MaxEntries: 5000}
	}
	return Retention{MaxAgeDays: 90, MaxEntries: 1000}
}
