package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

func TestDetectIntervalsPairsLeaveAndReturn(t *testing.T) {
	events := []models.Event{
		wordEv(models.PhaseMain, 0, "START", true),
		ev(models.PhaseMain, models.EventPageLeave, 10, ""),
		ev(models.PhaseMain, models.EventPageReturn, 45, ""),
		wordEv(models.PhaseMain, 47, "BRIDGES", true),
	}

	intervals := DetectIntervals(events, DefaultParams())
	require.Len(t, intervals, 1)

	iv := intervals[0]
	assert.Equal(t, models.IntervalPage, iv.Kind)
	assert.Equal(t, models.PhaseMain, iv.Phase)
	assert.True(t, iv.Start.Equal(at(10)))
	assert.True(t, iv.End.Equal(at(45)))
	assert.InDelta(t, 35, iv.DurationSeconds, 1e-9)
	assert.False(t, iv.Truncated)
}

func TestDetectIntervalsDuplicateOpenIsNoOp(t *testing.T) {
	events := []models.Event{
		ev(models.PhaseMain, models.EventPageLeave, 10, ""),
		ev(models.PhaseMain, models.EventPageLeave, 12, ""),
		ev(models.PhaseMain, models.EventPageReturn, 45, ""),
	}

	intervals := DetectIntervals(events, DefaultParams())
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Equal(at(10)))
	assert.True(t, intervals[0].End.Equal(at(45)))
}

func TestDetectIntervalsUnmatchedCloseIsIgnored(t *testing.T) {
	events := []models.Event{
		ev(models.PhaseMain, models.EventPageReturn, 5, ""),
		wordEv(models.PhaseMain, 20, "CRATE", true),
	}

	intervals := DetectIntervals(events, DefaultParams())
	assert.Empty(t, intervals)
}

func TestDetectIntervalsTrailingOpenTruncatedAtPhaseEnd(t *testing.T) {
	events := []models.Event{
		ev(models.PhaseMain, models.EventMouseInactiveStart, 10, ""),
		wordEv(models.PhaseMain, 30, "CRATE", true), // last event of the phase
	}

	intervals := DetectIntervals(events, DefaultParams())
	require.Len(t, intervals, 1)

	iv := intervals[0]
	assert.Equal(t, models.IntervalMouse, iv.Kind)
	assert.True(t, iv.End.Equal(at(30)))
	assert.InDelta(t, 20, iv.DurationSeconds, 1e-9)
	assert.True(t, iv.Truncated)
}

func TestDetectIntervalsKeepsPhasesSeparate(t *testing.T) {
	events := []models.Event{
		ev(models.PhaseTutorial, models.EventPageLeave, 10, ""),
		ev(models.PhaseTutorial, models.EventPageReturn, 20, ""),
		ev(models.PhaseMain, models.EventPageLeave, 100, ""),
		ev(models.PhaseMain, models.EventPageReturn, 130, ""),
	}

	intervals := DetectIntervals(events, DefaultParams())
	require.Len(t, intervals, 2)
	assert.Equal(t, models.PhaseTutorial, intervals[0].Phase)
	assert.Equal(t, models.PhaseMain, intervals[1].Phase)
}

func TestMergeIntervalsMergesCloseGaps(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{ParticipantID: "p1", Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(20)},
		{ParticipantID: "p1", Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(20.5), End: at(30)},
	}

	merged := MergeIntervals(intervals, 1.0)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Start.Equal(at(10)))
	assert.True(t, merged[0].End.Equal(at(30)))
	// union of ranges, not sum of pieces: the half-second gap is counted once
	assert.InDelta(t, 20, merged[0].DurationSeconds, 1e-9)
}

func TestMergeIntervalsMergesOverlap(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(25)},
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(20), End: at(30)},
	}

	merged := MergeIntervals(intervals, 1.0)
	require.Len(t, merged, 1)
	assert.InDelta(t, 20, merged[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 20, SumDurations(merged, models.IntervalPage), 1e-9)
}

func TestMergeIntervalsGapAtThresholdStaysSplit(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(20)},
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(21), End: at(30)},
	}

	merged := MergeIntervals(intervals, 1.0)
	assert.Len(t, merged, 2)
}

func TestMergeIntervalsKeepsKindsApart(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(20)},
		{Phase: models.PhaseMain, Kind: models.IntervalMouse, Start: at(19), End: at(30)},
	}

	merged := MergeIntervals(intervals, 1.0)
	require.Len(t, merged, 2)
	assert.NotEqual(t, merged[0].Kind, merged[1].Kind)
}

func TestMergeIntervalsIsIdempotent(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(30), End: at(40)},
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(20)},
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(20.2), End: at(29)},
		{Phase: models.PhaseTutorial, Kind: models.IntervalMouse, Start: at(5), End: at(8)},
	}

	once := MergeIntervals(intervals, 1.0)
	twice := MergeIntervals(once, 1.0)
	assert.Equal(t, once, twice)
}

func TestMergeIntervalsPropagatesTruncation(t *testing.T) {
	intervals := []models.SuspiciousInterval{
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(10), End: at(20)},
		{Phase: models.PhaseMain, Kind: models.IntervalPage, Start: at(20.5), End: at(30), Truncated: true},
	}

	merged := MergeIntervals(intervals, 1.0)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Truncated)
}

func TestSumDurationsNeverNegative(t *testing.T) {
	events := []models.Event{
		ev(models.PhaseMain, models.EventPageLeave, 10, ""),
		ev(models.PhaseMain, models.EventPageReturn, 45, ""),
		ev(models.PhaseMain, models.EventMouseInactiveStart, 50, ""),
		ev(models.PhaseMain, models.EventMouseActive, 58, ""),
	}

	intervals := DetectIntervals(events, DefaultParams())
	assert.GreaterOrEqual(t, SumDurations(intervals, models.IntervalPage), 0.0)
	assert.GreaterOrEqual(t, SumDurations(intervals, models.IntervalMouse), 0.0)
	assert.InDelta(t, 35, SumDurations(intervals, models.IntervalPage), 1e-9)
	assert.InDelta(t, 8, SumDurations(intervals, models.IntervalMouse), 1e-9)
}
