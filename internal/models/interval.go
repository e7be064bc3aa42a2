package models

import "time"

// IntervalKind distinguishes the two sources of suspicious inactivity.
type IntervalKind string

const (
	IntervalPage  IntervalKind = "page"  // page_leave / page_return
	IntervalMouse IntervalKind = "mouse" // mouse_inactive_start / mouse_active
)

// SuspiciousInterval is a closed time range during which the participant was
// away from the page or had an inactive mouse. Intervals are only ever built
// from a matched start/end pair; an unmatched start is closed at the phase
// boundary and marked Truncated.
type SuspiciousInterval struct {
	ParticipantID   string       `json:"participantId"`
	Phase           Phase        `json:"phase"`
	Kind            IntervalKind `json:"kind"`
	Start           time.Time    `json:"start"`
	End             time.Time    `json:"end"`
	DurationSeconds float64      `json:"durationSeconds"`
	Truncated       bool         `json:"truncated,omitempty"`
}
