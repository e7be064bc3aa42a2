package models

import "time"

// WordRecord describes one word a participant validated during a phase,
// together with the timing information the classifier works from. Records are
// immutable once extraction has filled them in.
//
// CreationSeconds is the gap between this word's validation and the previous
// word's validation (or the phase start for the first word). SubmittedAt is
// nil when the participant validated the word but never added it to their
// submission list; Removed marks words taken back out before phase end.
type WordRecord struct {
	ParticipantID         string     `json:"participantId"`
	Phase                 Phase      `json:"phase"`
	Word                  string     `json:"word"`
	Length                int        `json:"length"`
	IsValidDictionaryWord bool       `json:"isValidDictionaryWord"`
	ValidatedAt           time.Time  `json:"validatedAt"`
	SubmittedAt           *time.Time `json:"submittedAt,omitempty"`
	Removed               bool       `json:"removed,omitempty"`
	RewardIfValid         float64    `json:"rewardIfValid"`
	CreationSeconds       float64    `json:"creationSeconds"`
}
