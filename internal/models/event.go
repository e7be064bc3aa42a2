package models

import (
	"encoding/json"
	"time"
)

// Phase identifies which round of the study an event belongs to.
type Phase string

const (
	PhaseTutorial Phase = "tutorial" // practice round
	PhaseMain     Phase = "main"     // compensated main round
)

// EventType enumerates the event taxonomy produced by the game client.
type EventType string

const (
	EventPageLeave          EventType = "page_leave"
	EventPageReturn         EventType = "page_return"
	EventMouseInactiveStart EventType = "mouse_inactive_start"
	EventMouseActive        EventType = "mouse_active"
	EventWordValidation     EventType = "word_validation"
	EventWordSubmission     EventType = "word_submission"
	EventWordRemoval        EventType = "word_removal"
	EventConfession         EventType = "confession"
)

// RawEvent is the wire shape delivered by the ingestion service. Timestamps
// arrive as ISO-8601 strings and the payload is kept opaque until the
// normalizer has decided the event is usable.
type RawEvent struct {
	ParticipantID string          `json:"participantId"`
	SessionPhase  string          `json:"sessionPhase"`
	Type          string          `json:"type"`
	Timestamp     string          `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Event is the canonical, normalized form. Within one phase a participant's
// events are strictly time-ordered once normalization has run.
type Event struct {
	ParticipantID string          `json:"participantId"`
	Phase         Phase           `json:"sessionPhase"`
	Type          EventType       `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// WordPayload is the payload carried by word_validation, word_submission and
// word_removal events.
type WordPayload struct {
	Word   string  `json:"word"`
	Length int     `json:"length,omitempty"`
	Valid  bool    `json:"valid"`
	Reward float64 `json:"reward,omitempty"`
}

// PagePayload is the payload carried by page focus events.
type PagePayload struct {
	TabChangeCount int `json:"tabChangeCount,omitempty"`
}

// ConfessionPayload is the payload carried by a confession event recorded at
// the end of a session.
type ConfessionPayload struct {
	ConfessedWords        []string `json:"confessedWords"`
	UsedExternalResources bool     `json:"usedExternalResources"`
}
