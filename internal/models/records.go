package models

import (
	"time"

	"github.com/lib/pq"
)

// StoredEvent is the row shape of the ingestion service's events table. The
// analysis only ever reads it.
type StoredEvent struct {
	ID            int       `gorm:"primaryKey"`
	ParticipantID string    `gorm:"column:participant_id"`
	SessionPhase  string    `gorm:"column:session_phase"`
	EventType     string    `gorm:"column:event_type"`
	Timestamp     time.Time `gorm:"column:timestamp"`
	Payload       []byte    `gorm:"column:payload;type:jsonb"`
}

func (StoredEvent) TableName() string { return "events" }

// SessionMetricsRecord persists one SessionMetrics row for a run.
type SessionMetricsRecord struct {
	ID                                    int    `gorm:"primaryKey"`
	RunID                                 string `gorm:"index"`
	ParticipantID                         string `gorm:"index"`
	DataQualityIssue                      bool
	CheatingRatePracticeRound             float64
	CheatingRateMainRound                 float64
	CheatingMainRound                     bool
	LyingRate                             float64
	HasConfessed                          bool
	HasPageLeft                           bool
	TotalTimePageLeftSeconds              float64
	HasMouseInactivity                    bool
	TotalTimeMouseInactivitySeconds       float64
	PerformanceScoreIncludingCheatedWords float64
	PerformanceScoreExcludingCheatedWords float64
	ValidWordsShortBand                   int
	ValidWordsMidBand                     int
	ValidWordsTopBand                     int
	CreatedAt                             time.Time
}

// WordVerdictRecord persists one classified word together with the rules
// that fired, so a verdict stays traceable after the run.
type WordVerdictRecord struct {
	ID               int    `gorm:"primaryKey"`
	RunID            string `gorm:"index"`
	ParticipantID    string `gorm:"index"`
	Phase            string
	Word             string
	Length           int
	CreationSeconds  float64
	ThresholdSeconds float64
	TriggeredRules   pq.StringArray `gorm:"type:text[]"`
	Flagged          bool
	Confessed        bool
	CreatedAt        time.Time
}

// SuspiciousIntervalRecord persists one merged away/inactivity interval.
type SuspiciousIntervalRecord struct {
	ID              int    `gorm:"primaryKey"`
	RunID           string `gorm:"index"`
	ParticipantID   string `gorm:"index"`
	Phase           string
	Kind            string
	StartAt         time.Time
	EndAt           time.Time
	DurationSeconds float64
	Truncated       bool
	CreatedAt       time.Time
}
