package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

func TestWriteSessionMetricsCSV(t *testing.T) {
	dir := t.TempDir()
	rows := []models.SessionMetrics{
		{
			ParticipantID:                         "p1",
			CheatingRateMainRound:                 0.5,
			CheatingMainRound:                     true,
			LyingRate:                             0.25,
			HasConfessed:                          true,
			HasPageLeft:                           true,
			TotalTimePageLeftSeconds:              35,
			PerformanceScoreIncludingCheatedWords: 12,
			PerformanceScoreExcludingCheatedWords: 1,
			ValidWordsShortBand:                   1,
			ValidWordsTopBand:                     1,
		},
		{ParticipantID: "p2", DataQualityIssue: true},
	}

	path, err := WriteSessionMetricsCSV(dir, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session_metrics.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per participant")

	header := records[0]
	assert.Equal(t, metricsHeader, header)
	require.Len(t, records[1], len(header))

	row := records[1]
	assert.Equal(t, "p1", row[0])
	assert.Equal(t, "false", row[1])
	assert.Equal(t, "0.5", row[3])
	assert.Equal(t, "true", row[4])
	assert.Equal(t, "0.25", row[5])
	assert.Equal(t, "35", row[8])
	assert.Equal(t, "12", row[11])
	assert.Equal(t, "1", row[13])

	dq := records[2]
	assert.Equal(t, "p2", dq[0])
	assert.Equal(t, "true", dq[1])
	assert.Equal(t, "0", dq[3])
}

func TestWriteSessionMetricsCSVEmpty(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSessionMetricsCSV(dir, nil)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "just the header")
}

func TestWriteSessionMetricsCSVCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	_, err := WriteSessionMetricsCSV(dir, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "session_metrics.csv"))
	assert.NoError(t, err)
}

func TestFormatFloatIsByteStable(t *testing.T) {
	assert.Equal(t, "0.5", formatFloat(0.5))
	assert.Equal(t, "35", formatFloat(35))
	assert.Equal(t, "0", formatFloat(0))
	assert.Equal(t, formatFloat(1.0/3.0), formatFloat(1.0/3.0))
}
