package detection

import (
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// AggregateSession reduces one participant's words, verdicts, intervals and
// reconciliation into the final SessionMetrics row. verdicts must be
// parallel to words (ClassifyWords keeps them that way). The reduction has
// no side effects and reads nothing outside its arguments.
//
// Performance scores and the per-band counts cover the main round only:
// that is the compensated round the downstream models care about. A score
// counts dictionary-valid words still submitted at phase end; the
// "excluding" variant omits flagged ones, so it can never exceed the
// "including" variant.
func AggregateSession(participantID string, words []models.WordRecord, verdicts []WordVerdict, intervals []models.SuspiciousInterval, rec Reconciliation, p Params) models.SessionMetrics {
	m := models.SessionMetrics{
		ParticipantID: participantID,
		LyingRate:     rec.LyingRate,
		HasConfessed:  rec.HasConfessed,
	}

	var practiceTotal, practiceFlagged, mainTotal, mainFlagged int
	for _, v := range verdicts {
		switch v.Phase {
		case models.PhaseTutorial:
			practiceTotal++
			if v.Flagged {
				practiceFlagged++
			}
		case models.PhaseMain:
			mainTotal++
			if v.Flagged {
				mainFlagged++
			}
		}
	}
	if practiceTotal > 0 {
		m.CheatingRatePracticeRound = float64(practiceFlagged) / float64(practiceTotal)
	}
	if mainTotal > 0 {
		m.CheatingRateMainRound = float64(mainFlagged) / float64(mainTotal)
	}
	m.CheatingMainRound = mainFlagged > 0

	for _, iv := range intervals {
		switch iv.Kind {
		case models.IntervalPage:
			m.HasPageLeft = true
		case models.IntervalMouse:
			m.HasMouseInactivity = true
		}
	}
	m.TotalTimePageLeftSeconds = SumDurations(intervals, models.IntervalPage)
	m.TotalTimeMouseInactivitySeconds = SumDurations(intervals, models.IntervalMouse)

	for i, w := range words {
		if w.Phase != models.PhaseMain || !w.IsValidDictionaryWord || w.Removed {
			continue
		}
		m.PerformanceScoreIncludingCheatedWords += w.RewardIfValid
		if i >= len(verdicts) || !verdicts[i].Flagged {
			m.PerformanceScoreExcludingCheatedWords += w.RewardIfValid
		}
		switch {
		case w.Length < p.MidBandMinLength:
			m.ValidWordsShortBand++
		case w.Length < p.TopBandMinLength:
			m.ValidWordsMidBand++
		default:
			m.ValidWordsTopBand++
		}
	}

	return m
}

// DataQualityMetrics is the placeholder row for a participant whose events
// failed normalization: the flag is set and everything else stays zero.
func DataQualityMetrics(participantID string) models.SessionMetrics {
	return models.SessionMetrics{ParticipantID: participantID, DataQualityIssue: true}
}
