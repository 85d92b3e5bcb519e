// Package layer implements the bounded, independently-retained memory
// stores that back context assembly. Five layer types share one generic
// store contract; entry content schemas are opaque to it.
package layer

import (
	"errors"
	"time"
)

// Type identifies one of the five memory layers.
type Type string

const (
	Conversation   Type = "conversation"
	Strategic      Type = "strategic"
	Stakeholder    Type = "stakeholder"
	Learning       Type = "learning"
	Organizational Type = "organizational"
)

// Types lists all layers in canonical order.
func Types() []Type {
	return []Type{Conversation, Strategic, Stakeholder, Learning, Organizational}
}

// Priority orders entries during context assembly, highest first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Entry is one immutable memory item. Corrections are new entries
// superseding old ones by timestamp; entries are never mutated in place.
type Entry struct {
	ID        string    `json:"id"`
	Layer     Type      `json:"layer"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Priority  Priority  `json:"priority"`
	// TTLDays overrides the layer retention for this entry when > 0.
	TTLDays int `json:"ttl_days,omitempty"`
}

var (
	// ErrDuplicateEntry signals an Add with an ID already present in the layer.
	ErrDuplicateEntry = errors.New("layer: duplicate entry id")
	// ErrInvalidTimestamp signals a zero timestamp or one that would break
	// the monotonic non-decreasing insertion order of the store.
	ErrInvalidTimestamp = errors.New("layer: invalid entry timestamp")
	// ErrUnavailable marks a layer that cannot serve reads. The orchestrator
	// absorbs it into a degraded bundle instead of propagating.
	ErrUnavailable = errors.New("layer: store unavailable")
)
