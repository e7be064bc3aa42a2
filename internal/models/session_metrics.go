package models

// SessionMetrics is the terminal aggregate for one participant, consumed by
// the downstream statistical modeling notebooks. It is produced exactly once
// per analysis run and never mutated afterwards.
//
// A participant whose events failed normalization still gets a row, with
// DataQualityIssue set and every other field left at its zero value.
type SessionMetrics struct {
	ParticipantID                         string  `json:"participantId"`
	DataQualityIssue                      bool    `json:"dataQualityIssue"`
	CheatingRatePracticeRound             float64 `json:"cheatingRatePracticeRound"`
	CheatingRateMainRound                 float64 `json:"cheatingRateMainRound"`
	CheatingMainRound                     bool    `json:"cheatingMainRound"`
	LyingRate                             float64 `json:"lyingRate"`
	HasConfessed                          bool    `json:"hasConfessed"`
	HasPageLeft                           bool    `json:"hasPageLeft"`
	TotalTimePageLeftSeconds              float64 `json:"totalTimePageLeftSeconds"`
	HasMouseInactivity                    bool    `json:"hasMouseInactivity"`
	TotalTimeMouseInactivitySeconds       float64 `json:"totalTimeMouseInactivitySeconds"`
	PerformanceScoreIncludingCheatedWords float64 `json:"performanceScoreIncludingCheatedWords"`
	PerformanceScoreExcludingCheatedWords float64 `json:"performanceScoreExcludingCheatedWords"`
	ValidWordsShortBand                   int     `json:"validWordsShortBand"`
	ValidWordsMidBand                     int     `json:"validWordsMidBand"`
	ValidWordsTopBand                     int     `json:"validWordsTopBand"`
}
