package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/svdpmukherjee/wordgame-analysis/internal/database"
	"github.com/svdpmukherjee/wordgame-analysis/internal/detection"
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
	"github.com/svdpmukherjee/wordgame-analysis/internal/pipeline"
)

const insertBatchSize = 200

// SaveRun persists a completed run: session metrics, per-word verdicts and
// merged intervals, all stamped with the run ID. Everything lands in one
// transaction so a crashed save never leaves a half-written run behind.
func SaveRun(ctx context.Context, res *pipeline.Result) error {
	metrics := make([]models.SessionMetricsRecord, 0, len(res.Participants))
	var verdicts []models.WordVerdictRecord
	var intervals []models.SuspiciousIntervalRecord

	for _, pr := range res.Participants {
		m := pr.Metrics
		metrics = append(metrics, models.SessionMetricsRecord{
			RunID:                                 res.RunID,
			ParticipantID:                         m.ParticipantID,
			DataQualityIssue:                      m.DataQualityIssue,
			CheatingRatePracticeRound:             m.CheatingRatePracticeRound,
			CheatingRateMainRound:                 m.CheatingRateMainRound,
			CheatingMainRound:                     m.CheatingMainRound,
			LyingRate:                             m.LyingRate,
			HasConfessed:                          m.HasConfessed,
			HasPageLeft:                           m.HasPageLeft,
			TotalTimePageLeftSeconds:              m.TotalTimePageLeftSeconds,
			HasMouseInactivity:                    m.HasMouseInactivity,
			TotalTimeMouseInactivitySeconds:       m.TotalTimeMouseInactivitySeconds,
			PerformanceScoreIncludingCheatedWords: m.PerformanceScoreIncludingCheatedWords,
			PerformanceScoreExcludingCheatedWords: m.PerformanceScoreExcludingCheatedWords,
			ValidWordsShortBand:                   m.ValidWordsShortBand,
			ValidWordsMidBand:                     m.ValidWordsMidBand,
			ValidWordsTopBand:                     m.ValidWordsTopBand,
		})

		confessed := make(map[string]bool)
		for _, row := range pr.Reconciliation.Rows {
			if row.Confessed {
				confessed[row.Word] = true
			}
		}

		for _, v := range pr.Verdicts {
			rules := make(pq.StringArray, len(v.TriggeredRules))
			for i, r := range v.TriggeredRules {
				rules[i] = string(r)
			}
			verdicts = append(verdicts, models.WordVerdictRecord{
				RunID:            res.RunID,
				ParticipantID:    v.ParticipantID,
				Phase:            string(v.Phase),
				Word:             v.Word,
				Length:           v.Length,
				CreationSeconds:  v.CreationSeconds,
				ThresholdSeconds: v.ThresholdSeconds,
				TriggeredRules:   rules,
				Flagged:          v.Flagged,
				Confessed:        confessed[detection.NormalizeWord(v.Word)],
			})
		}

		for _, iv := range pr.Intervals {
			intervals = append(intervals, models.SuspiciousIntervalRecord{
				RunID:           res.RunID,
				ParticipantID:   iv.ParticipantID,
				Phase:           string(iv.Phase),
				Kind:            string(iv.Kind),
				StartAt:         iv.Start,
				EndAt:           iv.End,
				DurationSeconds: iv.DurationSeconds,
				Truncated:       iv.Truncated,
			})
		}
	}

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(metrics) > 0 {
			if err := tx.CreateInBatches(metrics, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save session metrics: %w", err)
			}
		}
		if len(verdicts) > 0 {
			if err := tx.CreateInBatches(verdicts, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save word verdicts: %w", err)
			}
		}
		if len(intervals) > 0 {
			if err := tx.CreateInBatches(intervals, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save intervals: %w", err)
			}
		}
		return nil
	})
}
