// Package report renders a completed analysis run into its deliverables:
// the flat session metrics table, per-participant audit artifacts, the run
// manifest and summary charts.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

const metricsFileName = "session_metrics.csv"

// metricsHeader fixes the column order of the metrics table. Downstream R
// and Python notebooks key on these names; do not rename without versioning
// the analysis output.
var metricsHeader = []string{
	"participant_id",
	"data_quality_issue",
	"cheating_rate_practice_round",
	"cheating_rate_main_round",
	"cheating_main_round",
	"lying_rate",
	"has_confessed",
	"has_page_left",
	"total_time_page_left_seconds",
	"has_mouse_inactivity",
	"total_time_mouse_inactivity_seconds",
	"performance_score_including_cheated_words",
	"performance_score_excluding_cheated_words",
	"valid_words_short_band",
	"valid_words_mid_band",
	"valid_words_top_band",
}

// WriteSessionMetricsCSV writes one row per participant to
// session_metrics.csv under dir and returns the file path. Rows are written
// in the order given, which the pipeline already fixed by participant ID.
func WriteSessionMetricsCSV(dir string, rows []models.SessionMetrics) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("can't create output directory: %w", err)
	}

	path := filepath.Join(dir, metricsFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("can't create metrics file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metricsHeader); err != nil {
		return "", fmt.Errorf("failed to write metrics header: %w", err)
	}

	for _, m := range rows {
		record := []string{
			m.ParticipantID,
			formatBool(m.DataQualityIssue),
			formatFloat(m.CheatingRatePracticeRound),
			formatFloat(m.CheatingRateMainRound),
			formatBool(m.CheatingMainRound),
			formatFloat(m.LyingRate),
			formatBool(m.HasConfessed),
			formatBool(m.HasPageLeft),
			formatFloat(m.TotalTimePageLeftSeconds),
			formatBool(m.HasMouseInactivity),
			formatFloat(m.TotalTimeMouseInactivitySeconds),
			formatFloat(m.PerformanceScoreIncludingCheatedWords),
			formatFloat(m.PerformanceScoreExcludingCheatedWords),
			strconv.Itoa(m.ValidWordsShortBand),
			strconv.Itoa(m.ValidWordsMidBand),
			strconv.Itoa(m.ValidWordsTopBand),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write metrics row for %s: %w", m.ParticipantID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush metrics file: %w", err)
	}
	return path, nil
}

// formatFloat renders the shortest representation that round-trips, so
// reruns on identical input produce byte-identical files.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}
