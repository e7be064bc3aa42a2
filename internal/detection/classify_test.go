package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// tableWith builds a threshold table whose only direct entry is (main, 8)
// at the given seconds; other lengths resolve through the fallback chain.
func tableWith(t *testing.T, seconds float64) *ThresholdTable {
	t.Helper()
	table, err := BuildThresholdTable(
		poolOf(models.PhaseMain, 8, seconds, seconds, seconds, seconds, seconds),
		DefaultParams(),
	)
	require.NoError(t, err)
	return table
}

func pageInterval(start, end float64) models.SuspiciousInterval {
	return models.SuspiciousInterval{
		ParticipantID:   "p1",
		Phase:           models.PhaseMain,
		Kind:            models.IntervalPage,
		Start:           at(start),
		End:             at(end),
		DurationSeconds: end - start,
	}
}

// A long word validated right after a page-away interval triggers the
// position rule and nothing else.
func TestClassifyWordsPositionRule(t *testing.T) {
	words := []models.WordRecord{
		word(models.PhaseMain, "CAT", 3, 5),
		word(models.PhaseMain, "SANDWICH", 8, 47),
		word(models.PhaseMain, "DOG", 3, 50),
	}
	words[1].CreationSeconds = 42
	words[2].CreationSeconds = 3
	intervals := []models.SuspiciousInterval{pageInterval(10, 45)}

	verdicts := ClassifyWords(words, intervals, tableWith(t, 2), DefaultParams())
	require.Len(t, verdicts, 3)

	assert.False(t, verdicts[0].Flagged)
	assert.True(t, verdicts[1].Flagged)
	assert.Equal(t, []Rule{RulePosition}, verdicts[1].TriggeredRules)
	assert.False(t, verdicts[2].Flagged, "short word after the interval must not trigger the position rule")
}

// An implausibly fast word triggers the speed rule without any interval.
func TestClassifyWordsSpeedRule(t *testing.T) {
	words := []models.WordRecord{word(models.PhaseMain, "BRIDGES", 7, 2)}
	table, err := BuildThresholdTable(
		poolOf(models.PhaseMain, 7, 6, 6, 6, 6, 6),
		DefaultParams(),
	)
	require.NoError(t, err)

	verdicts := ClassifyWords(words, nil, table, DefaultParams())
	require.Len(t, verdicts, 1)

	v := verdicts[0]
	assert.True(t, v.Flagged)
	assert.Equal(t, []Rule{RuleSpeed}, v.TriggeredRules)
	assert.True(t, v.Has(RuleSpeed))
	assert.False(t, v.Has(RulePosition))
	assert.InDelta(t, 6, v.ThresholdSeconds, 1e-9)
	assert.Equal(t, ThresholdDirect, v.ThresholdSource)
}

func TestClassifyWordsSpeedRuleAtThresholdDoesNotFire(t *testing.T) {
	words := []models.WordRecord{word(models.PhaseMain, "BRIDGES", 7, 6)}
	table, err := BuildThresholdTable(
		poolOf(models.PhaseMain, 7, 6, 6, 6, 6, 6),
		DefaultParams(),
	)
	require.NoError(t, err)

	verdicts := ClassifyWords(words, nil, table, DefaultParams())
	assert.False(t, verdicts[0].Flagged, "creation time equal to the threshold is not below it")
}

func TestClassifyWordsMajorityRule(t *testing.T) {
	words := []models.WordRecord{
		word(models.PhaseMain, "TAME", 4, 5),
		word(models.PhaseMain, "STRING", 6, 21),
		word(models.PhaseMain, "BOUNCE", 6, 22),
		word(models.PhaseMain, "CRATE", 5, 23),
	}
	words[1].CreationSeconds = 11
	words[2].CreationSeconds = 1e6 // slow on purpose, still flagged by majority
	words[3].CreationSeconds = 1e6
	intervals := []models.SuspiciousInterval{pageInterval(10, 20)}

	verdicts := ClassifyWords(words, intervals, tableWith(t, 0.5), DefaultParams())

	assert.False(t, verdicts[0].Flagged, "words before the interval are untouched by the majority rule")
	for i := 1; i < 4; i++ {
		assert.True(t, verdicts[i].Has(RuleMajorityLength), "word %d", i)
		assert.True(t, verdicts[i].Flagged)
	}
}

func TestClassifyWordsMajorityNeedsStrictMajority(t *testing.T) {
	words := []models.WordRecord{
		word(models.PhaseMain, "STRING", 6, 21),
		word(models.PhaseMain, "TAME", 4, 23),
	}
	words[0].CreationSeconds = 1e6
	words[1].CreationSeconds = 1e6
	intervals := []models.SuspiciousInterval{pageInterval(10, 20)}

	// One long word out of two is exactly half, not a majority.
	verdicts := ClassifyWords(words, intervals, tableWith(t, 0.5), DefaultParams())
	assert.False(t, verdicts[0].Has(RuleMajorityLength))
	assert.False(t, verdicts[1].Has(RuleMajorityLength))
}

func TestClassifyWordsRulesCombine(t *testing.T) {
	words := []models.WordRecord{word(models.PhaseMain, "SANDWICH", 8, 46)}
	words[0].CreationSeconds = 1 // below the 2s threshold
	intervals := []models.SuspiciousInterval{pageInterval(10, 45)}

	verdicts := ClassifyWords(words, intervals, tableWith(t, 2), DefaultParams())
	v := verdicts[0]

	assert.True(t, v.Flagged)
	assert.True(t, v.Has(RulePosition))
	assert.True(t, v.Has(RuleMajorityLength))
	assert.True(t, v.Has(RuleSpeed))
	assert.Len(t, v.TriggeredRules, 3)
}

func TestClassifyWordsIntervalEndBoundaryIsExclusive(t *testing.T) {
	words := []models.WordRecord{word(models.PhaseMain, "SANDWICH", 8, 45)}
	words[0].CreationSeconds = 1e6
	intervals := []models.SuspiciousInterval{pageInterval(10, 45)}

	// Validated exactly at the interval end, not strictly after it.
	verdicts := ClassifyWords(words, intervals, tableWith(t, 0.5), DefaultParams())
	assert.False(t, verdicts[0].Has(RulePosition))
	assert.False(t, verdicts[0].Has(RuleMajorityLength))
}

func TestClassifyWordsMouseIntervalCountsAsAway(t *testing.T) {
	words := []models.WordRecord{word(models.PhaseMain, "SANDWICH", 8, 31)}
	words[0].CreationSeconds = 1e6
	intervals := []models.SuspiciousInterval{{
		ParticipantID: "p1",
		Phase:         models.PhaseMain,
		Kind:          models.IntervalMouse,
		Start:         at(10),
		End:           at(30),
	}}

	verdicts := ClassifyWords(words, intervals, tableWith(t, 0.5), DefaultParams())
	assert.True(t, verdicts[0].Has(RulePosition))
}

func TestClassifyWordsUnknownPhaseGetsBareVerdict(t *testing.T) {
	words := []models.WordRecord{
		word(models.PhaseMain, "CRATE", 5, 30),
		word(models.Phase("bonus"), "WEIRD", 5, 3),
	}

	verdicts := ClassifyWords(words, nil, tableWith(t, 100), DefaultParams())
	require.Len(t, verdicts, 2)

	assert.True(t, verdicts[0].Flagged, "main-phase word below threshold")
	assert.False(t, verdicts[1].Flagged)
	assert.Empty(t, verdicts[1].TriggeredRules)
	assert.Equal(t, "WEIRD", verdicts[1].Word, "verdicts stay parallel to input words")
}

func TestClassifyWordsEmptyInput(t *testing.T) {
	verdicts := ClassifyWords(nil, nil, tableWith(t, 2), DefaultParams())
	assert.Empty(t, verdicts)
}
