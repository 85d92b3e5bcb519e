// Package event collects raw team interaction events into rolling windows
// and evaluates frequency-based alerts over them.
package event

import (
	"errors"
	"time"
)

// Type categorizes a team interaction.
type Type string

const (
	TypeMeeting      Type = "meeting"
	TypeMessage      Type = "message"
	TypeReview       Type = "review"
	TypeDecision     Type = "decision"
	TypeStandup      Type = "standup"
	TypeOneOnOne     Type = "one_on_one"
	TypeRetroSession Type = "retrospective"
)

// TeamEvent is one immutable interaction record. Context carries opaque
// per-event attributes (agenda size, channel, linked artifacts).
type TeamEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	TeamID       string         `json:"team_id"`
	Participants []string       `json:"participants"`
	Type         Type           `json:"type"`
	Context      map[string]any `json:"context,omitempty"`
}

// ErrMalformedEvent rejects a single event during ingestion; the batch it
// arrived in continues.
var ErrMalformedEvent = errors.New("event: malformed event")
